package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

func newTraceID() string {
	return uuid.New().String()
}

// ContextWithTraceID returns ctx tagged with a fresh trace id.
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, newTraceID())
}

// EnsureTraceID tags ctx with a trace id unless it already carries one.
// One-shot commands use this so their log lines correlate the same way
// request logs do.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return ContextWithTraceID(ctx)
	}
	return ctx
}

// LoggerWithContext returns the process logger bound to the context's
// trace id when present.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if traceID := GetTraceID(ctx); traceID != "" {
		logger = logger.With("trace_id", traceID)
	}
	return logger
}
