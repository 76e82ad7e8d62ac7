package broker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"
)

// Defaults.
const (
	// DefaultKeepAlive is the MQTT keep-alive interval.
	DefaultKeepAlive = 600 * time.Second

	// DefaultCommandTimeout bounds connect, publish and subscribe.
	DefaultCommandTimeout = 20 * time.Second

	// DefaultQuiesce is how long Disconnect waits for in-flight work.
	DefaultQuiesce = 250 * time.Millisecond
)

// Broker errors.
var (
	ErrInvalidOptions = errors.New("invalid broker options")
	ErrNotConnected   = errors.New("broker not connected")
	ErrTimeout        = errors.New("broker command timed out")
	ErrInvalidQoS     = errors.New("invalid QoS")
)

// QoS is the MQTT delivery guarantee.
type QoS byte

const (
	AtMostOnce  QoS = 0
	AtLeastOnce QoS = 1
	ExactlyOnce QoS = 2
)

// Valid reports whether q is 0, 1 or 2.
func (q QoS) Valid() bool {
	return q <= ExactlyOnce
}

// Handler receives messages of one subscription.
type Handler func(topic string, payload []byte)

// Broker is a connection to an MQTT broker.
type Broker interface {
	// Connect opens the connection.
	Connect(ctx context.Context) error

	// Disconnect closes the connection after waiting up to quiesce for
	// in-flight work.
	Disconnect(quiesce time.Duration)

	// IsConnected reports whether the connection is up.
	IsConnected() bool

	// Publish sends payload to topic.
	Publish(ctx context.Context, topic string, payload []byte, qos QoS) error

	// Subscribe registers handler for topic (MQTT filter syntax).
	Subscribe(ctx context.Context, topic string, qos QoS, handler Handler) error

	// Unsubscribe removes subscriptions.
	Unsubscribe(ctx context.Context, topics ...string) error
}

// Options configures a broker connection.
type Options struct {
	// Host and Port of the broker.
	Host string
	Port uint16

	// ClientID is the MQTT client identifier. Greengrass expects the
	// thing name.
	ClientID string

	// TLSConfig secures the connection. Required.
	TLSConfig *tls.Config

	// KeepAlive is the MQTT keep-alive interval. Default 600s.
	KeepAlive time.Duration

	// CommandTimeout bounds each broker command. Default 20s.
	CommandTimeout time.Duration

	// AutoReconnect lets the MQTT library reconnect to the same broker.
	AutoReconnect bool

	// CleanSession discards session state on connect.
	CleanSession bool

	// OnConnectionLost is called when an established connection drops.
	OnConnectionLost func(err error)
}

// DefaultOptions returns Options with the default timers.
func DefaultOptions() Options {
	return Options{
		KeepAlive:      DefaultKeepAlive,
		CommandTimeout: DefaultCommandTimeout,
		CleanSession:   true,
	}
}

func (o *Options) applyDefaults() {
	if o.KeepAlive <= 0 {
		o.KeepAlive = DefaultKeepAlive
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = DefaultCommandTimeout
	}
}

// Validate checks the required fields.
func (o *Options) Validate() error {
	if o.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidOptions)
	}
	if o.Port == 0 {
		return fmt.Errorf("%w: port is required", ErrInvalidOptions)
	}
	if o.ClientID == "" {
		return fmt.Errorf("%w: client ID is required", ErrInvalidOptions)
	}
	if o.TLSConfig == nil {
		return fmt.Errorf("%w: TLS config is required", ErrInvalidOptions)
	}
	return nil
}

// Factory creates a Broker from options.
type Factory func(opts Options) (Broker, error)
