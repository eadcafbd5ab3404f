package http

import (
	"context"
	"log/slog"

	"github.com/example/alarmd/internal/logging"
)

type contextKey string

const alarmIDContextKey contextKey = "alarm_id"

// ContextWithAlarmID injects the alarm identifier resolved from the request path.
func ContextWithAlarmID(ctx context.Context, alarmID string) context.Context {
	return context.WithValue(ctx, alarmIDContextKey, alarmID)
}

// AlarmIDFromContext extracts an alarm identifier previously associated with the context.
func AlarmIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(alarmIDContextKey).(string)
	return id, ok
}

// ContextWithLogger returns a derived context carrying a request-scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request-scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
