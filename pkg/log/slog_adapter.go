package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.DevicePath != "" {
		attrs = append(attrs, slog.String("device_path", event.DevicePath))
	}
	if event.DeviceKind != "" {
		attrs = append(attrs, slog.String("device_kind", event.DeviceKind))
	}

	// Add type-specific attributes
	switch {
	case event.Report != nil:
		attrs = append(attrs,
			slog.Int("report_size", event.Report.Size),
			slog.Bool("truncated", event.Report.Truncated),
		)
	case event.Command != nil:
		attrs = append(attrs,
			slog.Int("command_id", int(event.Command.ID)),
			slog.Int("payload_len", event.Command.PayloadLen),
		)
		if event.Command.Name != "" {
			attrs = append(attrs, slog.String("command", event.Command.Name))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Retry != nil:
		attrs = append(attrs,
			slog.Int("attempt", event.Retry.Attempt),
			slog.Duration("backoff", event.Retry.Backoff),
			slog.String("reason", event.Retry.Reason),
			slog.Bool("reopened", event.Retry.Reopened),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
