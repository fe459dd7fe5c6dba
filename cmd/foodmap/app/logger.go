package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/mieux-choisir/foodmap/pkg/logging"
)

// NewLogger creates a logger from the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag or LOG_LEVEL
//  2. -q/--quiet (warn), winning over -v/--verbose
//  3. -v/--verbose (debug)
//  4. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)
	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
}

func determineLogLevel(config *Config) string {
	if config.LogLevel != "" {
		if level, ok := logging.ParseLevel(config.LogLevel); ok {
			return level.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", config.LogLevel, "info")
		return "info"
	}

	switch {
	case config.Verbose && config.Quiet:
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	case config.Quiet:
		return "warn"
	case config.Verbose:
		return "debug"
	}
	return "info"
}
