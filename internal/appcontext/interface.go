// Package appcontext declares what command packages need from the CLI
// application, so they do not import cmd/foodmap/app.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/mieux-choisir/foodmap"
)

// Interface is implemented by app.App and by Mock.
type Interface interface {
	// Client returns the shared client. Safe for concurrent use.
	Client() (foodmap.Client, error)

	// ClientWithOptions builds a separate client with opts applied after
	// the configured options.
	ClientWithOptions(opts ...foodmap.Option) (foodmap.Client, error)

	Logger() *zerolog.Logger

	// OutputFormat is table, json, yaml, text or empty for auto-detection.
	OutputFormat() string

	// Build metadata.
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
