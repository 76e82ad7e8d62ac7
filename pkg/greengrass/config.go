package greengrass

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ggd-protocol/ggd-go/pkg/broker"
	"github.com/ggd-protocol/ggd-go/pkg/connection"
	"github.com/ggd-protocol/ggd-go/pkg/discovery"
	"github.com/ggd-protocol/ggd-go/pkg/fetch"
	"github.com/ggd-protocol/ggd-go/pkg/log"
	"github.com/ggd-protocol/ggd-go/pkg/metrics"
)

// Defaults.
const (
	DefaultCloudPort     = 8883
	DefaultMaxTokens     = 512
	DefaultRetryAttempts = 5
)

// Client errors.
var (
	ErrInvalidConfig = errors.New("invalid greengrass client config")
	ErrNotDiscovered = errors.New("no core discovered")
	ErrNotConnected  = errors.New("not connected")
	ErrClosed        = errors.New("client closed")
)

// Config configures a Client.
type Config struct {
	// Endpoint is the account's IoT data endpoint, used for discovery and
	// for ConnectToCloud.
	Endpoint string

	// ThingName is the device's thing. It is also the MQTT client ID.
	ThingName string

	// CloudRootCAs verifies the discovery service and the cloud broker.
	CloudRootCAs *x509.CertPool

	// Certificate is the device certificate and key.
	Certificate tls.Certificate

	// Selection picks the core interface. Default AutoSelect.
	Selection discovery.Selection

	// DiscoveryPort of the discovery service. Default 8443.
	DiscoveryPort int

	// CloudPort of the cloud broker. Default 8883.
	CloudPort uint16

	// FetchTimeout bounds one discovery request. Default 30s.
	FetchTimeout time.Duration

	// MaxDocumentSize caps the discovery document. Default 64 KiB.
	MaxDocumentSize int

	// MaxTokens is the parser token budget. Default 512.
	MaxTokens int

	// KeepAlive and CommandTimeout are passed to the broker.
	KeepAlive      time.Duration
	CommandTimeout time.Duration

	// QoS for publish and subscribe. Default 0.
	QoS broker.QoS

	// AutoReconnect lets the broker reconnect to the same address.
	// Ignored when Rediscover is set.
	AutoReconnect bool

	// Rediscover runs discovery again after a lost core connection.
	Rediscover bool

	// CacheFile stores the last fetched document. When a fetch fails the
	// cached document is parsed instead. Empty disables the cache.
	CacheFile string

	// CacheMaxAge rejects cached documents older than this. Zero accepts any age.
	CacheMaxAge time.Duration

	// Retry and RetryAttempts control DiscoverAndConnect and rediscovery.
	Retry         connection.BackoffConfig
	RetryAttempts int

	// Logger for operational messages. Default slog.Default().
	Logger *slog.Logger

	// EventLogger captures discovery, state and message events.
	EventLogger log.Logger

	// Metrics records counters. Nil disables metrics.
	Metrics *metrics.Collector

	// NewBroker creates broker connections. Default broker.MQTTFactory.
	NewBroker broker.Factory
}

// DefaultConfig returns a Config with every default set.
func DefaultConfig() Config {
	return Config{
		Selection:       discovery.AutoSelect(),
		DiscoveryPort:   fetch.DefaultPort,
		CloudPort:       DefaultCloudPort,
		FetchTimeout:    fetch.DefaultTimeout,
		MaxDocumentSize: fetch.DefaultMaxDocumentSize,
		MaxTokens:       DefaultMaxTokens,
		KeepAlive:       broker.DefaultKeepAlive,
		CommandTimeout:  broker.DefaultCommandTimeout,
		QoS:             broker.AtMostOnce,
		AutoReconnect:   true,
		Retry:           connection.DefaultBackoffConfig(),
		RetryAttempts:   DefaultRetryAttempts,
	}
}

func (c *Config) applyDefaults() {
	if c.Selection.Mode() == 0 {
		c.Selection = discovery.AutoSelect()
	}
	if c.DiscoveryPort == 0 {
		c.DiscoveryPort = fetch.DefaultPort
	}
	if c.CloudPort == 0 {
		c.CloudPort = DefaultCloudPort
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.NewBroker == nil {
		c.NewBroker = broker.MQTTFactory(c.Logger)
	}
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	if c.ThingName == "" {
		return fmt.Errorf("%w: thing name is required", ErrInvalidConfig)
	}
	if len(c.Certificate.Certificate) == 0 {
		return fmt.Errorf("%w: device certificate is required", ErrInvalidConfig)
	}
	if c.CloudRootCAs == nil {
		return fmt.Errorf("%w: cloud root CA is required", ErrInvalidConfig)
	}
	if err := c.Selection.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !c.QoS.Valid() {
		return fmt.Errorf("%w: QoS %d", ErrInvalidConfig, c.QoS)
	}
	return nil
}
