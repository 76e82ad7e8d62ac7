// Package log provides structured event capture for ggd-go.
//
// This package defines the Logger interface and Event types for recording
// what the discovery client did: documents fetched, documents parsed,
// broker connections opened and lost, messages published and received.
// It is separate from operational logging (slog). Events form a
// machine-readable trace that can be replayed with the ggd-log tool.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field devices: write to a binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/ggd/client.glog")
//
//	// Both
//	cfg.EventLogger = log.NewMultiLogger(console, file)
//
// # Event Types
//
// Events are captured at three layers:
//   - Fetch: the HTTPS request for the discovery document
//   - Parse: the discovery document parser (DiscoveryEvent, StateChangeEvent)
//   - Broker: the MQTT connection (StateChangeEvent, MessageEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Log files are a sequence of CBOR-encoded events with integer map keys.
package log
