// Package foodmap reconciles the food products of two independently
// curated catalogs into one canonical catalog keyed by id_match.
//
// A Client drives the whole pipeline over a document store:
//   - Import attaches canonical categories to raw records and persists them
//   - Match splits both catalogs into matched and unmatched sets
//   - Merge joins the matched sets and merges every pair field by field
//   - Report measures how numeric values moved during the merge
//
// Example usage:
//
//	client, err := foodmap.New(
//	    foodmap.WithStore(sqlite.Opener("foodmap.db")),
//	    foodmap.WithTaxonomyFile("categories.txt"),
//	    foodmap.WithMappingFile("fdc_categories.json"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
//	if _, err := client.ImportFile(ctx, product.CatalogPrimary, "off.jsonl"); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := client.ImportFile(ctx, product.CatalogSecondary, "fdc.jsonl"); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = result.Merge.Summary.WriteText(os.Stdout)
package foodmap

import (
	"context"
	"sync"

	"github.com/mieux-choisir/foodmap/pkg/categories"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/persistence"
	"github.com/mieux-choisir/foodmap/pkg/provenance"
	"github.com/mieux-choisir/foodmap/pkg/reconcile"
	"github.com/mieux-choisir/foodmap/pkg/taxonomy"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Categories gives access to category resolution.
type Categories interface {
	// Resolver returns the category resolver, loading the taxonomy on
	// first use.
	Resolver(ctx context.Context) (*categories.Resolver, error)
}

// Client reconciles two catalogs held in a document store.
type Client interface {

	// Categories resolves raw category labels
	Categories

	// Importer persists raw catalog records
	Importer

	// Reconciler matches and merges the catalogs
	Reconciler

	// Reporter measures the merge
	Reporter

	// Hooks registers pipeline callbacks
	Hooks

	// Run matches, merges and reports in one go
	Run(ctx context.Context) (*RunResult, error)

	// Close releases the client. It is safe to call more than once.
	Close(ctx context.Context) error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	writer  *persistence.Writer
	engine  *reconcile.Engine
	tracker provenance.Tracker
	hooks   *hooks

	mu        sync.Mutex
	resolver  *categories.Resolver
	lastMerge *MergeResult
	closed    bool
}

// New creates a new Client with the given options. A store is required.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.open == nil {
		return nil, errors.NewValidationError("store", nil, "a store is required")
	}

	writer, err := persistence.NewWriter(o.open,
		persistence.WithBatchSize(o.batchSize),
		persistence.WithMaxConcurrentWriters(o.maxWriters),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "writer", "", err)
	}

	mergeOpts := []reconcile.Option{reconcile.WithTolerance(o.tolerance)}
	if o.skipFields != nil {
		mergeOpts = append(mergeOpts, reconcile.WithSkipFields(o.skipFields...))
	}
	merger, err := reconcile.New(mergeOpts...)
	if err != nil {
		return nil, errors.WrapResource("create", "merger", "", err)
	}

	tracker := provenance.NewTracker(o.provenance)
	engine, err := reconcile.NewEngine(merger, reconcile.WithTracker(tracker))
	if err != nil {
		return nil, errors.WrapResource("create", "engine", "", err)
	}

	c := &client{
		options: o,
		writer:  writer,
		engine:  engine,
		tracker: tracker,
		hooks:   newHooks(),
	}
	if o.graph != nil {
		c.resolver = categories.New(o.graph, o.mapping)
	}
	return c, nil
}

// Resolver returns the category resolver.
func (c *client) Resolver(ctx context.Context) (*categories.Resolver, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolver != nil {
		return c.resolver, nil
	}
	if c.options.taxonomyFile == "" {
		return nil, errors.NewConfigError("taxonomy", "no taxonomy graph or file configured", nil)
	}

	logger := logging.FromContext(ctx)
	graph, err := taxonomy.Load(ctx, c.options.taxonomyFile)
	if err != nil {
		return nil, errors.WrapResource("load", "taxonomy", c.options.taxonomyFile, err)
	}
	mapping := c.options.mapping
	if mapping == nil && c.options.mappingFile != "" {
		if mapping, err = taxonomy.LoadCrossCatalogMap(ctx, c.options.mappingFile, graph); err != nil {
			return nil, errors.WrapResource("load", "category mapping", c.options.mappingFile, err)
		}
	}
	logger.Debug().
		Int("terms", graph.Len()).
		Int("skipped_blocks", len(graph.Skipped())).
		Msg("Taxonomy loaded")

	c.resolver = categories.New(graph, mapping)
	return c.resolver, nil
}

// Close releases the client.
func (c *client) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.tracker.Clear()
	return nil
}

func (c *client) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.NewValidationError("client", nil, "client is closed")
	}
	return nil
}
