package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents an action taken in the admin console
type AuditEvent struct {
	EventType     string
	UserID        string
	Role          string
	View          string
	RowID         string
	IPAddress     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes console audit events to the structured log
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// Log writes event at info level, or warn level when it failed
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "console"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	optional := []struct{ key, val string }{
		{"user_id", event.UserID},
		{"role", event.Role},
		{"view", event.View},
		{"row_id", event.RowID},
		{"ip_address", event.IPAddress},
		{"failure_reason", event.FailureReason},
	}
	for _, o := range optional {
		if o.val != "" {
			attrs = append(attrs, slog.String(o.key, o.val))
		}
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
