package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ggd-protocol/ggd-go/pkg/version"
)

// Defaults.
const (
	DefaultPort            = 8443
	DefaultTimeout         = 30 * time.Second
	DefaultMaxDocumentSize = 64 * 1024

	discoverPath = "/greengrass/discover/thing/"
)

// Fetch errors.
var (
	ErrInvalidConfig    = errors.New("invalid fetch config")
	ErrRequestFailed    = errors.New("discovery request failed")
	ErrUnexpectedStatus = errors.New("unexpected discovery response status")
	ErrDocumentTooLarge = errors.New("discovery document too large")
)

// Config configures a Fetcher.
type Config struct {
	// Endpoint is the account's IoT data endpoint host name.
	Endpoint string

	// ThingName is the thing whose groups are discovered.
	ThingName string

	// Port of the discovery service. Default 8443.
	Port int

	// TLSConfig carries the device certificate and the cloud root CA.
	TLSConfig *tls.Config

	// Timeout bounds the whole request. Default 30s.
	Timeout time.Duration

	// MaxDocumentSize is the largest accepted body. Default 64 KiB.
	MaxDocumentSize int

	// Logger for request diagnostics. Default slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	return Config{
		Port:            DefaultPort,
		Timeout:         DefaultTimeout,
		MaxDocumentSize: DefaultMaxDocumentSize,
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxDocumentSize <= 0 {
		c.MaxDocumentSize = DefaultMaxDocumentSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks that the config can be used to build a Fetcher.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	if c.ThingName == "" {
		return fmt.Errorf("%w: thing name is required", ErrInvalidConfig)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.TLSConfig == nil {
		return fmt.Errorf("%w: TLS config is required", ErrInvalidConfig)
	}
	return nil
}

// DiscoveryURL returns the discovery URL for thing at endpoint:port.
func DiscoveryURL(endpoint string, port int, thing string) string {
	u := url.URL{
		Scheme: "https",
		Host:   net.JoinHostPort(endpoint, strconv.Itoa(port)),
		Path:   discoverPath + thing,
	}
	return u.String()
}

// Fetcher downloads discovery documents.
type Fetcher struct {
	config Config
	url    string
	client *http.Client
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg Config) (*Fetcher, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     cfg.TLSConfig.Clone(),
		TLSHandshakeTimeout: cfg.Timeout,
		MaxIdleConns:        1,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Fetcher{
		config: cfg,
		url:    DiscoveryURL(cfg.Endpoint, cfg.Port, cfg.ThingName),
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// URL returns the request URL.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch downloads the discovery document. The returned buffer is owned by
// the caller.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		f.config.Logger.Warn("discovery request rejected",
			"url", f.url,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	limit := f.config.MaxDocumentSize
	if resp.ContentLength > int64(limit) {
		return nil, fmt.Errorf("%w: content length %d exceeds %d", ErrDocumentTooLarge, resp.ContentLength, limit)
	}

	doc, err := io.ReadAll(io.LimitReader(resp.Body, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequestFailed, err)
	}
	if len(doc) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrDocumentTooLarge, limit)
	}

	f.config.Logger.Debug("discovery document fetched",
		"url", f.url,
		"size", len(doc),
		"duration", time.Since(started),
	)
	return doc, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}
