package logger

import (
	"context"
	"log/slog"
	"os"
)

var Log *slog.Logger

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	accountIDKey ctxKey = "account_id"
)

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}

// L returns the global logger, falling back to slog's default before Init runs (tests).
func L() *slog.Logger {
	if Log == nil {
		return slog.Default()
	}
	return Log
}

// WithRequestID stores the request id for FromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithAccountID stores the authenticated account id for FromContext.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// FromContext returns the global logger enriched with request_id and account_id when present.
func FromContext(ctx context.Context) *slog.Logger {
	l := L()
	if ctx == nil {
		return l
	}

	var fields []any
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		fields = append(fields, "request_id", id)
	}
	if id, ok := ctx.Value(accountIDKey).(string); ok && id != "" {
		fields = append(fields, "account_id", id)
	}
	if len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}
