// Package commands implements the ggd-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ggd-protocol/ggd-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Category  *log.Category
	SessionID string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{Layer: f.Layer, Category: f.Category, SessionID: f.SessionID}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] LAYER Type endpoint
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	header := fmt.Sprintf("%s [%s] %-6s %s", ts, shortenID(event.SessionID), event.Layer.String(), typeLabel(event))
	if event.Endpoint != "" {
		header += " " + event.Endpoint
	}
	fmt.Fprintln(w, header)

	switch {
	case event.Discovery != nil:
		formatDiscoveryDetails(w, event.Discovery)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func typeLabel(event log.Event) string {
	switch {
	case event.Discovery != nil:
		return "Discovery"
	case event.Message != nil:
		return "Message " + event.Message.Direction.String()
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatDiscoveryDetails(w io.Writer, d *log.DiscoveryEvent) {
	if d.Mode != "" {
		fmt.Fprintf(w, "  Mode: %s\n", d.Mode)
	}
	fmt.Fprintf(w, "  Document: %d bytes", d.DocumentSize)
	if d.TokenCount > 0 {
		fmt.Fprintf(w, ", %d tokens", d.TokenCount)
	}
	fmt.Fprintln(w)
	if d.Host != "" {
		fmt.Fprintf(w, "  Core: %s:%d (interface %d)\n", d.Host, d.Port, d.Interface)
	}
	if d.CertificateSize > 0 {
		fmt.Fprintf(w, "  Certificate: %d bytes\n", d.CertificateSize)
	}
	if d.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(d.Duration))
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	fmt.Fprintf(w, "  Topic: %s\n", msg.Topic)
	fmt.Fprintf(w, "  Payload: %d bytes  QoS: %d\n", msg.PayloadSize, msg.QoS)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "fetch":
		return log.LayerFetch, nil
	case "parse":
		return log.LayerParse, nil
	case "broker":
		return log.LayerBroker, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be fetch, parse, or broker)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "discovery":
		return log.CategoryDiscovery, nil
	case "state":
		return log.CategoryState, nil
	case "message":
		return log.CategoryMessage, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be discovery, state, message, or error)", s)
	}
}

// RunView prints the matching events of the log file at path.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
