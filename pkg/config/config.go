package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/ggd-protocol/ggd-go/pkg/broker"
	"github.com/ggd-protocol/ggd-go/pkg/cert"
	"github.com/ggd-protocol/ggd-go/pkg/connection"
	"github.com/ggd-protocol/ggd-go/pkg/discovery"
	"github.com/ggd-protocol/ggd-go/pkg/greengrass"
)

// Selection modes accepted in files.
const (
	ModeAuto   = "auto"
	ModeManual = "manual"
)

// Config errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInvalid           = errors.New("invalid config")
)

// Duration is a time.Duration written as "30s" or "1m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", s)
	}
	*d = Duration(v)
	return nil
}

// Selection chooses the core interface.
type Selection struct {
	Mode      string `yaml:"mode" json:"mode"`
	Group     string `yaml:"group" json:"group"`
	Core      string `yaml:"core" json:"core"`
	Interface uint8  `yaml:"interface" json:"interface"`
}

// Retry configures DiscoverAndConnect backoff.
type Retry struct {
	Attempts int      `yaml:"attempts" json:"attempts"`
	Initial  Duration `yaml:"initial" json:"initial"`
	Max      Duration `yaml:"max" json:"max"`
}

// File is the on-disk client configuration.
type File struct {
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	ThingName   string `yaml:"thing_name" json:"thing_name"`
	RootCA      string `yaml:"root_ca" json:"root_ca"`
	Certificate string `yaml:"certificate" json:"certificate"`
	PrivateKey  string `yaml:"private_key" json:"private_key"`

	Selection Selection `yaml:"selection" json:"selection"`

	DiscoveryPort   int      `yaml:"discovery_port" json:"discovery_port"`
	CloudPort       uint16   `yaml:"cloud_port" json:"cloud_port"`
	FetchTimeout    Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	MaxDocumentSize int      `yaml:"max_document_size" json:"max_document_size"`
	MaxTokens       int      `yaml:"max_tokens" json:"max_tokens"`

	KeepAlive      Duration `yaml:"keep_alive" json:"keep_alive"`
	CommandTimeout Duration `yaml:"command_timeout" json:"command_timeout"`
	QoS            uint8    `yaml:"qos" json:"qos"`

	// AutoReconnect defaults to true when omitted.
	AutoReconnect *bool `yaml:"auto_reconnect" json:"auto_reconnect"`
	Rediscover    bool  `yaml:"rediscover" json:"rediscover"`
	Retry         Retry `yaml:"retry" json:"retry"`

	CacheFile   string   `yaml:"cache_file" json:"cache_file"`
	CacheMaxAge Duration `yaml:"cache_max_age" json:"cache_max_age"`

	// dir is the directory of the loaded file; relative paths resolve against it.
	dir string
}

// Load reads path and decodes it by extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Parse decodes data. ext is a file extension such as ".yaml" or ".jsonc".
func Parse(data []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return &f, nil
}

// Validate checks required fields and value ranges. File contents are not read.
func (f *File) Validate() error {
	var problems []string
	if f.Endpoint == "" {
		problems = append(problems, "endpoint is required")
	}
	if f.ThingName == "" {
		problems = append(problems, "thing_name is required")
	}
	if f.RootCA == "" {
		problems = append(problems, "root_ca is required")
	}
	if f.Certificate == "" || f.PrivateKey == "" {
		problems = append(problems, "certificate and private_key are required")
	}
	switch strings.ToLower(f.Selection.Mode) {
	case "", ModeAuto:
	case ModeManual:
		if f.Selection.Group == "" || f.Selection.Core == "" {
			problems = append(problems, "manual selection needs group and core")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown selection mode %q", f.Selection.Mode))
	}
	if f.DiscoveryPort < 0 || f.DiscoveryPort > 65535 {
		problems = append(problems, fmt.Sprintf("discovery_port %d out of range", f.DiscoveryPort))
	}
	if !broker.QoS(f.QoS).Valid() {
		problems = append(problems, fmt.Sprintf("qos %d is not 0, 1 or 2", f.QoS))
	}
	if f.Retry.Attempts < 0 {
		problems = append(problems, "retry.attempts must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// DiscoverySelection returns the host selection strategy.
func (f *File) DiscoverySelection() discovery.Selection {
	if strings.ToLower(f.Selection.Mode) != ModeManual {
		return discovery.AutoSelect()
	}
	return discovery.Manual(discovery.HostSelectionCriteria{
		GroupName:        f.Selection.Group,
		CoreIdentity:     f.Selection.Core,
		InterfaceOrdinal: f.Selection.Interface,
	})
}

// Path resolves p against the directory of the loaded file.
func (f *File) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || f.dir == "" {
		return p
	}
	return filepath.Join(f.dir, p)
}

// ToClientConfig validates f, loads the certificate files and returns a
// client config. Zero values keep the client defaults.
func (f *File) ToClientConfig(logger *slog.Logger) (greengrass.Config, error) {
	if err := f.Validate(); err != nil {
		return greengrass.Config{}, err
	}

	roots, err := cert.ReadPoolFile(f.Path(f.RootCA))
	if err != nil {
		return greengrass.Config{}, fmt.Errorf("root_ca: %w", err)
	}
	pair, err := cert.LoadKeyPair(f.Path(f.Certificate), f.Path(f.PrivateKey))
	if err != nil {
		return greengrass.Config{}, fmt.Errorf("device certificate: %w", err)
	}

	cfg := greengrass.DefaultConfig()
	cfg.Endpoint = f.Endpoint
	cfg.ThingName = f.ThingName
	cfg.CloudRootCAs = roots
	cfg.Certificate = pair
	cfg.Selection = f.DiscoverySelection()
	cfg.QoS = broker.QoS(f.QoS)
	cfg.Rediscover = f.Rediscover
	cfg.CacheFile = f.Path(f.CacheFile)
	cfg.CacheMaxAge = time.Duration(f.CacheMaxAge)
	cfg.Logger = logger

	if f.DiscoveryPort != 0 {
		cfg.DiscoveryPort = f.DiscoveryPort
	}
	if f.CloudPort != 0 {
		cfg.CloudPort = f.CloudPort
	}
	if f.FetchTimeout != 0 {
		cfg.FetchTimeout = time.Duration(f.FetchTimeout)
	}
	if f.MaxDocumentSize != 0 {
		cfg.MaxDocumentSize = f.MaxDocumentSize
	}
	if f.MaxTokens != 0 {
		cfg.MaxTokens = f.MaxTokens
	}
	if f.KeepAlive != 0 {
		cfg.KeepAlive = time.Duration(f.KeepAlive)
	}
	if f.CommandTimeout != 0 {
		cfg.CommandTimeout = time.Duration(f.CommandTimeout)
	}
	if f.AutoReconnect != nil {
		cfg.AutoReconnect = *f.AutoReconnect
	}
	if f.Retry.Attempts != 0 {
		cfg.RetryAttempts = f.Retry.Attempts
	}
	cfg.Retry = connection.DefaultBackoffConfig()
	if f.Retry.Initial != 0 {
		cfg.Retry.Initial = time.Duration(f.Retry.Initial)
	}
	if f.Retry.Max != 0 {
		cfg.Retry.Max = time.Duration(f.Retry.Max)
	}
	return cfg, nil
}
