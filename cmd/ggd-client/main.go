// Command ggd-client discovers a Greengrass core for a thing and connects
// to its broker.
//
// Usage:
//
//	ggd-client --config ggd.yaml [flags]
//
// Settings come from the config file; flags override them. With
// --interactive a shell accepts publish, subscribe, status and rediscover
// commands. Without it the client connects, optionally publishes
// --message to --topic, and runs until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ggd-protocol/ggd-go/cmd/ggd-client/interactive"
	"github.com/ggd-protocol/ggd-go/pkg/config"
	"github.com/ggd-protocol/ggd-go/pkg/greengrass"
	ggdlog "github.com/ggd-protocol/ggd-go/pkg/log"
	"github.com/ggd-protocol/ggd-go/pkg/metrics"
	"github.com/ggd-protocol/ggd-go/pkg/version"
)

// options holds the command line.
type options struct {
	ConfigFile    string
	Endpoint      string
	ThingName     string
	RootCA        string
	Certificate   string
	PrivateKey    string
	Group         string
	Core          string
	Interface     uint8
	Cloud         bool
	Rediscover    bool
	CacheFile     string
	Interactive   bool
	Topic         string
	Message       string
	Subscribe     []string
	MetricsListen string
	LogLevel      string
	EventLog      string
	Version       bool

	flags *pflag.FlagSet
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("ggd-client", pflag.ContinueOnError)
	fs.StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (.yaml, .yml, .json, .jsonc)")
	fs.StringVar(&opts.Endpoint, "endpoint", "", "IoT data endpoint")
	fs.StringVar(&opts.ThingName, "thing", "", "Thing name, also the MQTT client ID")
	fs.StringVar(&opts.RootCA, "root-ca", "", "Cloud root CA PEM file")
	fs.StringVar(&opts.Certificate, "cert", "", "Device certificate PEM file")
	fs.StringVar(&opts.PrivateKey, "key", "", "Device private key PEM file")
	fs.StringVar(&opts.Group, "group", "", "Select the core manually: group ID")
	fs.StringVar(&opts.Core, "core", "", "Select the core manually: core thing ARN")
	fs.Uint8Var(&opts.Interface, "interface", 0, "Select the core manually: connectivity interface (1-based)")
	fs.BoolVar(&opts.Cloud, "cloud", false, "Connect to the cloud broker instead of a core")
	fs.BoolVar(&opts.Rediscover, "rediscover", false, "Run discovery again after losing the core connection")
	fs.StringVar(&opts.CacheFile, "cache-file", "", "Keep the last discovery document here and fall back to it")
	fs.BoolVarP(&opts.Interactive, "interactive", "i", false, "Enable interactive command mode")
	fs.StringVarP(&opts.Topic, "topic", "t", "", "Publish --message to this topic after connecting")
	fs.StringVarP(&opts.Message, "message", "m", "", "Message to publish")
	fs.StringSliceVarP(&opts.Subscribe, "subscribe", "s", nil, "Print messages received on these topics")
	fs.StringVar(&opts.MetricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address (e.g. :9100)")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&opts.EventLog, "event-log", "", "Write CBOR event log to this file")
	fs.BoolVar(&opts.Version, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.flags = fs
	return opts, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(opts *options) (*config.File, error) {
	file := &config.File{}
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		file = loaded
	}

	set := func(name string, dst *string, value string) {
		if opts.flags.Changed(name) {
			*dst = value
		}
	}
	// Flag paths are relative to the working directory, not the file.
	setPath := func(name string, dst *string, value string) error {
		if !opts.flags.Changed(name) || value == "" {
			return nil
		}
		abs, err := filepath.Abs(value)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst = abs
		return nil
	}
	set("endpoint", &file.Endpoint, opts.Endpoint)
	set("thing", &file.ThingName, opts.ThingName)
	for _, p := range []struct {
		name  string
		dst   *string
		value string
	}{
		{"root-ca", &file.RootCA, opts.RootCA},
		{"cert", &file.Certificate, opts.Certificate},
		{"key", &file.PrivateKey, opts.PrivateKey},
		{"cache-file", &file.CacheFile, opts.CacheFile},
	} {
		if err := setPath(p.name, p.dst, p.value); err != nil {
			return nil, err
		}
	}

	if opts.Group != "" || opts.Core != "" {
		file.Selection = config.Selection{
			Mode:      config.ModeManual,
			Group:     opts.Group,
			Core:      opts.Core,
			Interface: opts.Interface,
		}
	}
	if opts.flags.Changed("rediscover") {
		file.Rediscover = opts.Rediscover
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return file, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "info":
		l = slog.LevelInfo
		log.SetFlags(log.Ltime | log.Lmicroseconds)
	case "warn":
		l = slog.LevelWarn
		log.SetFlags(log.Ltime)
	case "error":
		l = slog.LevelError
		log.SetFlags(log.Ltime)
	default:
		return nil, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("Invalid flags: %v", err)
	}
	if opts.Version {
		fmt.Println(version.String("ggd-client"))
		return
	}

	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	file, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("Greengrass Discovery Client")
	log.Println("===========================")
	log.Printf("Endpoint:  %s", file.Endpoint)
	log.Printf("Thing:     %s", file.ThingName)
	log.Printf("Selection: %s", file.DiscoverySelection())

	cfg, err := file.ToClientConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}

	var eventLoggers []ggdlog.Logger
	if opts.EventLog != "" {
		fl, err := ggdlog.NewFileLogger(opts.EventLog)
		if err != nil {
			log.Fatalf("Failed to open event log: %v", err)
		}
		defer fl.Close()
		eventLoggers = append(eventLoggers, fl)
		log.Printf("Event log: %s", opts.EventLog)
	}
	if strings.EqualFold(opts.LogLevel, "debug") {
		eventLoggers = append(eventLoggers, ggdlog.NewSlogAdapter(logger))
	}
	if len(eventLoggers) > 0 {
		cfg.EventLogger = ggdlog.NewMultiLogger(eventLoggers...)
	}

	var metricsServer *http.Server
	if opts.MetricsListen != "" {
		cfg.Metrics = metrics.New()
		mux := http.NewServeMux()
		mux.Handle("/metrics", cfg.Metrics.Handler())
		metricsServer = &http.Server{Addr: opts.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server failed: %v", err)
			}
		}()
		log.Printf("Metrics:   http://%s/metrics", opts.MetricsListen)
	}

	client, err := greengrass.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := connect(ctx, client, opts.Cloud); err != nil {
		log.Fatalf("Connect failed: %v", err)
	}
	log.Printf("Connected to %s %s", client.Target(), client.Endpoint())

	for _, topic := range opts.Subscribe {
		err := client.Subscribe(ctx, topic, func(t string, payload []byte) {
			log.Printf("[MSG] %s: %s", t, payload)
		})
		if err != nil {
			log.Printf("Subscribe %s failed: %v", topic, err)
		}
	}
	if opts.Topic != "" {
		if err := client.Publish(ctx, opts.Topic, opts.Message); err != nil {
			log.Printf("Publish failed: %v", err)
		} else {
			log.Printf("Published %d bytes to %s", len(opts.Message), opts.Topic)
		}
	}

	if opts.Interactive {
		shell, err := interactive.New(client)
		if err != nil {
			log.Fatalf("Failed to create interactive shell: %v", err)
		}
		// Keep log output from overwriting the prompt.
		log.SetOutput(shell.Stdout())
		go shell.Run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	cancel()

	if err := client.Close(); err != nil {
		log.Printf("Error closing client: %v", err)
	}
	if metricsServer != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		done()
	}

	log.Println("Goodbye!")
}

func connect(ctx context.Context, client *greengrass.Client, cloud bool) error {
	if cloud {
		log.Println("Connecting to the cloud broker...")
		return client.ConnectToCloud(ctx)
	}
	log.Println("Discovering core...")
	if err := client.DiscoverAndConnect(ctx); err != nil {
		return err
	}
	if r := client.Result(); r != nil {
		log.Printf("Core %s selected (interface %d)", r.Address(), r.Interface)
	}
	return nil
}
