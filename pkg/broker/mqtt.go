package broker

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const protocolVersion311 = 4

// MQTT is a Broker backed by Eclipse Paho.
type MQTT struct {
	opts   Options
	client mqtt.Client
	logger *slog.Logger
}

var _ Broker = (*MQTT)(nil)

// NewMQTT creates an unconnected MQTT broker client.
func NewMQTT(opts Options) (*MQTT, error) {
	return NewMQTTWithLogger(opts, nil)
}

// NewMQTTWithLogger is NewMQTT with a logger for connection events.
func NewMQTTWithLogger(opts Options, logger *slog.Logger) (*MQTT, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &MQTT{opts: opts, logger: logger}
	m.client = mqtt.NewClient(m.clientOptions())
	return m, nil
}

// MQTTFactory returns a Factory that builds MQTT brokers logging to logger.
func MQTTFactory(logger *slog.Logger) Factory {
	return func(opts Options) (Broker, error) {
		return NewMQTTWithLogger(opts, logger)
	}
}

// BrokerURL returns the Paho server URL for host:port.
func BrokerURL(host string, port uint16) string {
	return "ssl://" + net.JoinHostPort(host, strconv.Itoa(int(port)))
}

func (m *MQTT) clientOptions() *mqtt.ClientOptions {
	o := mqtt.NewClientOptions()
	o.AddBroker(BrokerURL(m.opts.Host, m.opts.Port))
	o.SetClientID(m.opts.ClientID)
	o.SetTLSConfig(m.opts.TLSConfig)
	o.SetProtocolVersion(protocolVersion311)
	o.SetKeepAlive(m.opts.KeepAlive)
	o.SetPingTimeout(m.opts.CommandTimeout)
	o.SetConnectTimeout(m.opts.CommandTimeout)
	o.SetWriteTimeout(m.opts.CommandTimeout)
	o.SetAutoReconnect(m.opts.AutoReconnect)
	o.SetConnectRetry(false)
	o.SetCleanSession(m.opts.CleanSession)
	o.SetOrderMatters(false)

	o.SetOnConnectHandler(func(mqtt.Client) {
		m.logger.Info("broker connected", "broker", BrokerURL(m.opts.Host, m.opts.Port), "client_id", m.opts.ClientID)
	})
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		m.logger.Warn("broker connection lost", "broker", BrokerURL(m.opts.Host, m.opts.Port), "error", err)
		if m.opts.OnConnectionLost != nil {
			m.opts.OnConnectionLost(err)
		}
	})
	o.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		m.logger.Info("broker reconnecting", "broker", BrokerURL(m.opts.Host, m.opts.Port))
	})
	return o
}

// Connect opens the connection.
func (m *MQTT) Connect(ctx context.Context) error {
	if err := m.wait(ctx, m.client.Connect()); err != nil {
		return fmt.Errorf("connect %s: %w", BrokerURL(m.opts.Host, m.opts.Port), err)
	}
	return nil
}

// Disconnect closes the connection.
func (m *MQTT) Disconnect(quiesce time.Duration) {
	if quiesce < 0 {
		quiesce = 0
	}
	m.client.Disconnect(uint(quiesce.Milliseconds()))
}

// IsConnected reports whether the connection is up.
func (m *MQTT) IsConnected() bool {
	return m.client.IsConnectionOpen()
}

// Publish sends payload to topic. QoS 0 returns once the message is queued.
func (m *MQTT) Publish(ctx context.Context, topic string, payload []byte, qos QoS) error {
	if !qos.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidQoS, qos)
	}
	if !m.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	return m.wait(ctx, m.client.Publish(topic, byte(qos), false, payload))
}

// Subscribe registers handler for topic.
func (m *MQTT) Subscribe(ctx context.Context, topic string, qos QoS, handler Handler) error {
	if !qos.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidQoS, qos)
	}
	if !m.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	cb := func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	}
	return m.wait(ctx, m.client.Subscribe(topic, byte(qos), cb))
}

// Unsubscribe removes subscriptions.
func (m *MQTT) Unsubscribe(ctx context.Context, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	if !m.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	return m.wait(ctx, m.client.Unsubscribe(topics...))
}

// wait blocks until tok completes, ctx is done, or the command timeout
// passes.
func (m *MQTT) wait(ctx context.Context, tok mqtt.Token) error {
	timer := time.NewTimer(m.opts.CommandTimeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrTimeout, m.opts.CommandTimeout)
	}
}
