package persistence

import (
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
)

// Options configures a Writer.
type Options struct {
	batchSize  int
	maxWriters int
}

// Option is a function that configures a Writer.
type Option func(*Options) error

// Defaults returns the default writer options.
func Defaults() *Options {
	return &Options{
		batchSize:  constants.DefaultBatchSize,
		maxWriters: constants.DefaultMaxWriters,
	}
}

// BatchSize returns the number of records per upsert batch.
func (o *Options) BatchSize() int { return o.batchSize }

// MaxWriters returns the worker pool size.
func (o *Options) MaxWriters() int { return o.maxWriters }

// WithBatchSize sets the number of records per upsert batch.
func WithBatchSize(n int) Option {
	return func(o *Options) error {
		if n < 1 || n > constants.MaxBatchSize {
			return errors.NewValidationError("batch_size", n, "must be between 1 and 100000")
		}
		o.batchSize = n
		return nil
	}
}

// WithMaxConcurrentWriters sets how many workers write batches at once.
// Each worker opens its own connection.
func WithMaxConcurrentWriters(n int) Option {
	return func(o *Options) error {
		if n < 1 || n > constants.MaxWriters {
			return errors.NewValidationError("max_writers", n, "must be between 1 and 64")
		}
		o.maxWriters = n
		return nil
	}
}
