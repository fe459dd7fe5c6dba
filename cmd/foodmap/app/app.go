// Package app provides the application context and dependency management
// for the foodmap CLI: configuration, logging, the lazily created client
// and lifecycle.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mieux-choisir/foodmap"
	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/internal/store/mongo"
	"github.com/mieux-choisir/foodmap/internal/store/sqlite"
	"github.com/mieux-choisir/foodmap/pkg/errors"
)

var _ appcontext.Interface = (*App)(nil)

// App holds what the commands share: build metadata, configuration, the
// logger and one lazily created client.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	opener store.Opener

	// guards client
	mu     sync.RWMutex
	client foodmap.Client
}

// New loads the configuration from the environment and builds the logger.
// opts are applied last.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version is the release version.
func (a *App) Version() string { return a.version }

// Commit is the source revision.
func (a *App) Commit() string { return a.commit }

// Date is the build timestamp.
func (a *App) Date() string { return a.date }

// BuiltBy names the builder.
func (a *App) BuiltBy() string { return a.builtBy }

// Config is the active configuration.
func (a *App) Config() *Config { return a.config }

// Logger is the active logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat is the -o value, possibly empty.
func (a *App) OutputFormat() string { return a.config.Format }

// Client returns the shared client and creates it on first use.
func (a *App) Client() (foodmap.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}

	c, err := foodmap.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.client = c
	return c, nil
}

// ClientWithOptions returns a new client with extra options applied after
// the configured ones. The caller closes it.
func (a *App) ClientWithOptions(opts ...foodmap.Option) (foodmap.Client, error) {
	c, err := foodmap.New(append(a.clientOptions(), opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "with custom options", err)
	}
	return c, nil
}

// Shutdown closes the client if one was created.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	c := a.client
	a.client = nil
	a.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close(ctx)
}

// clientOptions maps the configuration onto client options.
func (a *App) clientOptions() []foodmap.Option {
	opts := []foodmap.Option{
		foodmap.WithStore(a.storeOpener()),
		foodmap.WithBatchSize(a.config.BatchSize),
		foodmap.WithMaxConcurrentWriters(a.config.MaxWriters),
		foodmap.WithTolerance(a.config.Tolerance),
		foodmap.WithThreshold(a.config.Threshold),
	}
	if a.config.TaxonomyFile != "" {
		opts = append(opts, foodmap.WithTaxonomyFile(a.config.TaxonomyFile))
	}
	if a.config.MappingFile != "" {
		opts = append(opts, foodmap.WithMappingFile(a.config.MappingFile))
	}
	if len(a.config.SkipFields) > 0 {
		opts = append(opts, foodmap.WithSkipFields(a.config.SkipFields...))
	}
	return opts
}

func (a *App) storeOpener() store.Opener {
	if a.opener != nil {
		return a.opener
	}
	if a.config.Store == StoreMongo {
		return mongo.Opener(a.config.MongoURI, a.config.Database)
	}
	return sqlite.Opener(a.config.SQLitePath)
}

// Option customizes an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration after validating it.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger replaces the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore overrides the store selected by the configuration.
func WithStore(open store.Opener) Option {
	return func(a *App) error {
		a.opener = open
		return nil
	}
}

// WithClient installs an existing client as the shared one.
func WithClient(c foodmap.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
