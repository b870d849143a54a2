package obs

import (
	"context"
	"log/slog"
)

type contextKey struct{}

func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(contextKey{}).(*slog.Logger)
	return logger
}

// Operation returns a logger tagged with service and operation, preferring the
// request-scoped logger carried by ctx over base.
func Operation(ctx context.Context, base *slog.Logger, service, operation string, attrs ...any) *slog.Logger {
	logger := FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}
	pairs := append([]any{"service", service, "operation", operation}, attrs...)
	return logger.With(pairs...)
}
