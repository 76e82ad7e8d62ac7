package greengrass

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ggd-protocol/ggd-go/pkg/broker"
	"github.com/ggd-protocol/ggd-go/pkg/cert"
	"github.com/ggd-protocol/ggd-go/pkg/connection"
	"github.com/ggd-protocol/ggd-go/pkg/discovery"
	"github.com/ggd-protocol/ggd-go/pkg/fetch"
	"github.com/ggd-protocol/ggd-go/pkg/log"
	"github.com/ggd-protocol/ggd-go/pkg/metrics"
	"github.com/ggd-protocol/ggd-go/pkg/persistence"
	"github.com/ggd-protocol/ggd-go/pkg/transport"
)

// Connection targets.
const (
	TargetCore  = metrics.TargetCore
	TargetCloud = metrics.TargetCloud
)

type subscription struct {
	qos     broker.QoS
	handler broker.Handler
}

// Client is a device-side Greengrass client. It is safe for concurrent use.
type Client struct {
	config    Config
	sessionID string
	logger    *slog.Logger
	events    log.Logger
	metrics   *metrics.Collector
	fetcher   *fetch.Fetcher
	manager   *connection.Manager
	cache     *persistence.DiscoveryStore // nil without CacheFile

	// opMu serializes discovery and connects.
	opMu sync.Mutex

	mu       sync.RWMutex
	doc      []byte
	result   *discovery.Result
	broker   broker.Broker
	target   string
	endpoint string
	subs     map[string]subscription
	closed   bool
}

// NewClient creates a Client. Nothing is fetched or connected yet.
func NewClient(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsConfig, err := transport.NewCloudTLSConfig(&transport.TLSConfig{
		Certificate: cfg.Certificate,
		RootCAs:     cfg.CloudRootCAs,
		ServerName:  cfg.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	fetcher, err := fetch.NewFetcher(fetch.Config{
		Endpoint:        cfg.Endpoint,
		ThingName:       cfg.ThingName,
		Port:            cfg.DiscoveryPort,
		TLSConfig:       tlsConfig,
		Timeout:         cfg.FetchTimeout,
		MaxDocumentSize: cfg.MaxDocumentSize,
		Logger:          cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &Client{
		config:    cfg,
		sessionID: uuid.NewString(),
		logger:    cfg.Logger.With("thing", cfg.ThingName),
		events:    log.OrNoop(cfg.EventLogger),
		metrics:   cfg.Metrics,
		fetcher:   fetcher,
		subs:      make(map[string]subscription),
	}
	if cfg.CacheFile != "" {
		c.cache = persistence.NewDiscoveryStore(cfg.CacheFile)
	}
	c.manager = connection.NewManager(c.discoverAndConnectOnce,
		connection.WithBackoff(cfg.Retry),
		connection.WithManagerLogger(c.logger),
		connection.OnStateChange(c.managerStateChanged),
	)
	if cfg.Rediscover {
		c.manager.Start()
	}
	return c, nil
}

// SessionID identifies this client in captured events.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Discover fetches and parses a discovery document. The result aliases a
// buffer owned by the client and stays valid until the next Discover.
func (c *Client) Discover(ctx context.Context) (*discovery.Result, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.discover(ctx)
}

func (c *Client) discover(ctx context.Context) (*discovery.Result, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	started := time.Now()
	var fresh []byte
	doc, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.emitError(log.LayerFetch, err, c.fetcher.URL())
		cached := c.loadCached()
		if cached == nil {
			c.metrics.ObserveDiscovery(err, time.Since(started))
			return nil, err
		}
		c.logger.Warn("discovery fetch failed, using cached document", "error", err, "cache", c.cache.Path())
		doc = cached
	} else {
		c.emit(log.Event{
			Layer:     log.LayerFetch,
			Category:  log.CategoryDiscovery,
			Endpoint:  c.fetcher.URL(),
			Discovery: &log.DiscoveryEvent{DocumentSize: len(doc), Duration: time.Since(started)},
		})
		fresh = c.pristine(doc)
	}

	result, err := discovery.Parse(doc, c.config.Selection,
		discovery.WithMaxTokens(c.config.MaxTokens),
		discovery.WithLogger(c.logger),
		discovery.WithEventLogger(c.eventsWithThing(), c.sessionID),
	)
	c.metrics.ObserveDiscovery(err, time.Since(started))
	if err != nil {
		return nil, err
	}
	c.saveCached(fresh)

	c.mu.Lock()
	c.doc, c.result = doc, result
	c.mu.Unlock()

	c.logger.Info("core discovered",
		"host", result.Host(),
		"port", result.Port,
		"interface", result.Interface,
		"selection", c.config.Selection.String(),
	)
	return result, nil
}

// Result returns the last discovery result, or nil.
func (c *Client) Result() *discovery.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

// ConnectToCore connects to the core found by the last Discover.
func (c *Client) ConnectToCore(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.connectCore(ctx)
}

func (c *Client) connectCore(ctx context.Context) error {
	result := c.Result()
	if result == nil {
		return ErrNotDiscovered
	}

	roots, err := cert.PoolFromPEM(result.CertificatePEM())
	if err != nil {
		return fmt.Errorf("group CA: %w", err)
	}
	tlsConfig, err := transport.NewCoreTLSConfig(&transport.TLSConfig{
		Certificate: c.config.Certificate,
		RootCAs:     roots,
		ServerName:  result.Host(),
	})
	if err != nil {
		return err
	}
	return c.connect(ctx, TargetCore, result.Host(), result.Port, tlsConfig)
}

// ConnectToCloud connects to the cloud broker at Endpoint:CloudPort with
// hostname verification.
func (c *Client) ConnectToCloud(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	tlsConfig, err := transport.NewCloudTLSConfig(&transport.TLSConfig{
		Certificate: c.config.Certificate,
		RootCAs:     c.config.CloudRootCAs,
		ServerName:  c.config.Endpoint,
	})
	if err != nil {
		return err
	}
	return c.connect(ctx, TargetCloud, c.config.Endpoint, c.config.CloudPort, tlsConfig)
}

// DiscoverAndConnect runs Discover and ConnectToCore until both succeed,
// with backoff between attempts. Each attempt fetches a fresh document.
func (c *Client) DiscoverAndConnect(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	c.manager.MarkDisconnected()

	b := connection.NewBackoffWithConfig(c.config.Retry)
	return connection.Retry(ctx, b, c.config.RetryAttempts, func(ctx context.Context) error {
		err := c.manager.Connect(ctx)
		if err != nil {
			c.logger.Warn("discover and connect attempt failed", "error", err)
		}
		if errors.Is(err, connection.ErrManagerClosed) {
			return ErrClosed
		}
		return err
	})
}

func (c *Client) discoverAndConnectOnce(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if _, err := c.discover(ctx); err != nil {
		return err
	}
	return c.connectCore(ctx)
}

func (c *Client) connect(ctx context.Context, target, host string, port uint16, tlsConfig *tls.Config) error {
	if c.isClosed() {
		return ErrClosed
	}
	address := net.JoinHostPort(host, strconv.Itoa(int(port)))

	opts := broker.DefaultOptions()
	opts.Host = host
	opts.Port = port
	opts.ClientID = c.config.ThingName
	opts.TLSConfig = tlsConfig
	opts.KeepAlive = c.config.KeepAlive
	opts.CommandTimeout = c.config.CommandTimeout
	opts.AutoReconnect = c.config.AutoReconnect && !(c.config.Rediscover && target == TargetCore)
	opts.OnConnectionLost = func(err error) { c.connectionLost(target, address, err) }

	b, err := c.config.NewBroker(opts)
	if err == nil {
		if err = b.Connect(ctx); err != nil {
			// Stop a connect that may still finish after ctx is done.
			b.Disconnect(0)
		}
	}
	c.metrics.ObserveConnect(target, err)
	if err != nil {
		c.emitError(log.LayerBroker, err, address)
		return fmt.Errorf("connect to %s %s: %w", target, address, err)
	}

	c.mu.Lock()
	old := c.broker
	c.broker, c.target, c.endpoint = b, target, address
	subs := maps.Clone(c.subs)
	c.mu.Unlock()

	if old != nil {
		old.Disconnect(broker.DefaultQuiesce)
	}
	c.emitState("CONNECTED", target, address)
	c.logger.Info("connected", "target", target, "endpoint", address)

	for topic, s := range subs {
		if err := b.Subscribe(ctx, topic, s.qos, c.deliver(s.handler)); err != nil {
			c.logger.Warn("restoring subscription failed", "topic", topic, "error", err)
		}
	}
	return nil
}

func (c *Client) connectionLost(target, address string, err error) {
	c.logger.Warn("connection lost", "target", target, "endpoint", address, "error", err)
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	c.emitState("CONNECTION_LOST", reason, address)

	if c.config.Rediscover && target == TargetCore {
		c.manager.NotifyConnectionLost()
	}
}

func (c *Client) managerStateChanged(old, next connection.State) {
	c.logger.Debug("connection manager state", "old", old.String(), "new", next.String())
}

// Publish sends a text payload with the configured QoS.
func (c *Client) Publish(ctx context.Context, topic, payload string) error {
	return c.PublishBinary(ctx, topic, []byte(payload))
}

// PublishBinary sends payload with the configured QoS.
func (c *Client) PublishBinary(ctx context.Context, topic string, payload []byte) error {
	b := c.connectedBroker()
	if b == nil {
		return ErrNotConnected
	}
	if err := b.Publish(ctx, topic, payload, c.config.QoS); err != nil {
		c.emitError(log.LayerBroker, err, "publish "+topic)
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	c.metrics.ObserveMessage(metrics.DirectionOut)
	c.emitMessage(log.DirectionOut, topic, len(payload))
	return nil
}

// Subscribe registers handler for topic. The subscription is restored
// after every reconnect until Unsubscribe.
func (c *Client) Subscribe(ctx context.Context, topic string, handler broker.Handler) error {
	if handler == nil {
		return fmt.Errorf("subscribe %s: handler is required", topic)
	}
	b := c.connectedBroker()
	if b == nil {
		return ErrNotConnected
	}
	if err := b.Subscribe(ctx, topic, c.config.QoS, c.deliver(handler)); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	c.mu.Lock()
	c.subs[topic] = subscription{qos: c.config.QoS, handler: handler}
	c.mu.Unlock()
	return nil
}

// Unsubscribe removes subscriptions.
func (c *Client) Unsubscribe(ctx context.Context, topics ...string) error {
	c.mu.Lock()
	for _, t := range topics {
		delete(c.subs, t)
	}
	c.mu.Unlock()

	b := c.connectedBroker()
	if b == nil {
		return ErrNotConnected
	}
	return b.Unsubscribe(ctx, topics...)
}

// Subscriptions returns the subscribed topics.
func (c *Client) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	topics := make([]string, 0, len(c.subs))
	for t := range c.subs {
		topics = append(topics, t)
	}
	return topics
}

func (c *Client) deliver(handler broker.Handler) broker.Handler {
	return func(topic string, payload []byte) {
		c.metrics.ObserveMessage(metrics.DirectionIn)
		c.emitMessage(log.DirectionIn, topic, len(payload))
		handler(topic, payload)
	}
}

// IsConnected reports whether a broker connection is up.
func (c *Client) IsConnected() bool {
	return c.connectedBroker() != nil
}

// Endpoint returns host:port of the current connection, or "".
func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.broker == nil {
		return ""
	}
	return c.endpoint
}

// Target returns TargetCore or TargetCloud for the current connection.
func (c *Client) Target() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.broker == nil {
		return ""
	}
	return c.target
}

// Disconnect closes the broker connection. Subscriptions are kept and
// restored by the next connect.
func (c *Client) Disconnect() {
	c.manager.MarkDisconnected()

	c.mu.Lock()
	b, address := c.broker, c.endpoint
	c.broker = nil
	c.mu.Unlock()

	if b != nil {
		b.Disconnect(broker.DefaultQuiesce)
		c.emitState("DISCONNECTED", "", address)
		c.logger.Info("disconnected", "endpoint", address)
	}
}

// Close disconnects and stops background reconnection. The client cannot
// be used afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.manager.Close()
	c.Disconnect()
	c.fetcher.Close()
	return nil
}

func (c *Client) connectedBroker() broker.Broker {
	c.mu.RLock()
	b := c.broker
	c.mu.RUnlock()
	if b == nil || !b.IsConnected() {
		return nil
	}
	return b
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
