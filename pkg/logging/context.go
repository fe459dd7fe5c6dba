package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	loggerKey contextKey = iota
	runIDKey
)

// WithLogger stores logger in ctx. A nil logger stores the default one.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// with derives a child logger of the one in ctx.
func with(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	logger := fn(FromContext(ctx).With()).Logger()
	return WithLogger(ctx, &logger)
}

// WithRunID tags ctx and its logger with a pipeline run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	ctx = context.WithValue(ctx, runIDKey, runID)
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("run_id", runID) })
}

// RunID returns the run ID stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithCatalog tags the logger with a catalog name.
func WithCatalog(ctx context.Context, catalog string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("catalog", catalog) })
}

// WithCollection tags the logger with a store collection.
func WithCollection(ctx context.Context, collection string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("collection", collection) })
}

// WithIDMatch tags the logger with a product join key.
func WithIDMatch(ctx context.Context, idMatch string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("id_match", idMatch) })
}

// WithWorker tags the logger with a persistence worker number.
func WithWorker(ctx context.Context, worker int) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Int("worker", worker) })
}

// WithOperation tags the logger with a pipeline operation.
func WithOperation(ctx context.Context, operation string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("operation", operation) })
}
