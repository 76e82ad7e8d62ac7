package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.ThingName != "" {
		attrs = append(attrs, slog.String("thing", event.ThingName))
	}
	if event.Endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", event.Endpoint))
	}

	switch {
	case event.Discovery != nil:
		d := event.Discovery
		attrs = append(attrs, slog.Int("document_size", d.DocumentSize))
		if d.Mode != "" {
			attrs = append(attrs, slog.String("mode", d.Mode))
		}
		if d.TokenCount > 0 {
			attrs = append(attrs, slog.Int("tokens", d.TokenCount))
		}
		if d.Host != "" {
			attrs = append(attrs,
				slog.String("host", d.Host),
				slog.Int("port", int(d.Port)),
				slog.Int("interface", d.Interface),
			)
		}
		if d.CertificateSize > 0 {
			attrs = append(attrs, slog.Int("certificate_size", d.CertificateSize))
		}
		if d.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", d.Duration))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Message != nil:
		attrs = append(attrs,
			slog.String("direction", event.Message.Direction.String()),
			slog.String("topic", event.Message.Topic),
			slog.Int("payload_size", event.Message.PayloadSize),
			slog.Int("qos", int(event.Message.QoS)),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
