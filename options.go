package foodmap

import (
	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/taxonomy"
)

// Option is a function that configures a Client.
type Option func(*options) error

// options holds the client configuration.
type options struct {
	open        store.Opener
	collections store.Collections

	graph        *taxonomy.Graph
	taxonomyFile string
	mapping      *taxonomy.CrossCatalogMap
	mappingFile  string

	batchSize  int
	maxWriters int

	tolerance  float64
	threshold  float64
	skipFields []string
	provenance bool
}

// defaults returns the default configuration.
func defaults() *options {
	return &options{
		collections: store.DefaultCollections(),
		batchSize:   constants.DefaultBatchSize,
		maxWriters:  constants.DefaultMaxWriters,
		tolerance:   constants.DefaultTolerance,
		threshold:   constants.DefaultThreshold,
	}
}

// apply applies the given options in order.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithStore sets how the client connects to the document store.
func WithStore(open store.Opener) Option {
	return func(o *options) error {
		if open == nil {
			return errors.NewValidationError("store", nil, "opener cannot be nil")
		}
		o.open = open
		return nil
	}
}

// WithCollections overrides the collection names.
func WithCollections(c store.Collections) Option {
	return func(o *options) error {
		if err := c.Validate(); err != nil {
			return err
		}
		o.collections = c
		return nil
	}
}

// WithTaxonomy uses an already built taxonomy graph.
func WithTaxonomy(g *taxonomy.Graph) Option {
	return func(o *options) error {
		o.graph = g
		return nil
	}
}

// WithTaxonomyFile loads the taxonomy graph from path on first use.
func WithTaxonomyFile(path string) Option {
	return func(o *options) error {
		o.taxonomyFile = path
		return nil
	}
}

// WithMapping uses an already loaded cross-catalog category map.
func WithMapping(m *taxonomy.CrossCatalogMap) Option {
	return func(o *options) error {
		o.mapping = m
		return nil
	}
}

// WithMappingFile loads the cross-catalog category map from path on
// first use.
func WithMappingFile(path string) Option {
	return func(o *options) error {
		o.mappingFile = path
		return nil
	}
}

// WithBatchSize sets the number of records per upsert batch.
func WithBatchSize(n int) Option {
	return func(o *options) error {
		o.batchSize = n
		return nil
	}
}

// WithMaxConcurrentWriters sets the size of the writer pool.
func WithMaxConcurrentWriters(n int) Option {
	return func(o *options) error {
		o.maxWriters = n
		return nil
	}
}

// WithTolerance sets the relative tolerance under which two numbers are
// considered equal during a merge.
func WithTolerance(tolerance float64) Option {
	return func(o *options) error {
		o.tolerance = tolerance
		return nil
	}
}

// WithThreshold sets the delta splitting modified numbers in the
// difference report.
func WithThreshold(threshold float64) Option {
	return func(o *options) error {
		o.threshold = threshold
		return nil
	}
}

// WithSkipFields replaces the fields the merge keeps from the primary
// catalog unconditionally.
func WithSkipFields(fields ...string) Option {
	return func(o *options) error {
		o.skipFields = fields
		return nil
	}
}

// WithProvenance records where every merged field came from.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.provenance = enabled
		return nil
	}
}
