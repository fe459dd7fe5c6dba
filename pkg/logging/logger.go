// Package logging provides structured logging for the foodmap system using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("collection", "off_products").Msg("Reading catalog")
//
//	// Carry the logger and run fields through a pipeline stage
//	ctx := logging.WithRunID(logging.WithLogger(context.Background(), log), runID)
//	logging.FromContext(ctx).Warn().Int("skipped", 3).Msg("Skipped taxonomy blocks")
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu            sync.RWMutex
	defaultLogger = bootstrapLogger()
)

// bootstrapLogger is used until the CLI applies its configuration. It
// honors LOG_LEVEL and LOG_FORMAT.
func bootstrapLogger() *zerolog.Logger {
	cfg := DefaultConfig()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = format
	}
	logger := build(cfg, os.Stderr)
	return &logger
}

// Default returns the process-wide logger. Code without a logger in its
// context logs here.
func Default() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger and zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	mu.Lock()
	defaultLogger = &logger
	mu.Unlock()
	log.Logger = logger
}

// New creates a JSON logger writing to w at the global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.GlobalLevel()).With().Timestamp().Logger()
}
