// Package persistence writes records to the document store idempotently
// with a bounded pool of concurrent writers.
//
// A write first removes records lacking an id_match and collapses
// duplicates to the freshest version, then ensures the unique
// (id_match, modified_date) index and upserts fixed-size batches. Each
// worker owns one connection. A failing batch does not stop the other
// workers and committed batches stay committed.
package persistence

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Writer upserts record batches.
type Writer struct {
	open    store.Opener
	options *Options
}

// Result reports what a Write did.
type Result struct {
	Received       int `json:"received" yaml:"received"`
	Written        int `json:"written" yaml:"written"`
	DroppedEmptyID int `json:"dropped_empty_id" yaml:"dropped_empty_id"`
	Superseded     int `json:"superseded" yaml:"superseded"`
	Batches        int `json:"batches" yaml:"batches"`
	FailedBatches  int `json:"failed_batches" yaml:"failed_batches"`
}

type batch struct {
	index   int
	records []*record.Record
}

// NewWriter creates a writer opening connections with open.
func NewWriter(open store.Opener, opts ...Option) (*Writer, error) {
	if open == nil {
		return nil, errors.NewValidationError("opener", nil, "store opener is required")
	}
	o := Defaults()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return &Writer{open: open, options: o}, nil
}

// Options returns the writer configuration.
func (w *Writer) Options() *Options { return w.options }

// Write upserts records into collection. Any failure is returned as a
// *errors.StoreError wrapping every failed batch; the Result still
// reports what was written.
func (w *Writer) Write(ctx context.Context, collection string, records []*record.Record) (*Result, error) {
	ctx = logging.WithCollection(ctx, collection)
	logger := logging.FromContext(ctx)

	kept, dropped, superseded := Dedupe(records)
	result := &Result{
		Received:       len(records),
		DroppedEmptyID: dropped,
		Superseded:     superseded,
	}
	if dropped > 0 {
		logger.Warn().Int("dropped", dropped).Msg("Dropped records without id_match")
	}
	if superseded > 0 {
		logger.Debug().Int("superseded", superseded).Msg("Collapsed duplicate id_match records")
	}

	if err := w.ensureIndex(ctx, collection); err != nil {
		return result, err
	}
	if len(kept) == 0 {
		return result, nil
	}

	batches := w.split(kept)
	result.Batches = len(batches)
	queue := make(chan batch, len(batches))
	for _, b := range batches {
		queue <- b
	}
	close(queue)

	var (
		mu       sync.Mutex
		failures []error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	}

	workers := min(w.options.maxWriters, len(batches))
	// Workers share no context so one failure never cancels the others.
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			wctx := logging.WithWorker(ctx, i)
			conn, err := w.open(wctx)
			if err != nil {
				fail(err)
				return err
			}
			defer conn.Close(wctx) //nolint:errcheck // best effort

			for b := range queue {
				if err := conn.Upsert(wctx, collection, b.records); err != nil {
					logging.FromContext(wctx).Error().Err(err).Int("batch", b.index).Msg("Batch write failed")
					fail(errors.NewStoreError("upsert", collection, b.index, err))
					mu.Lock()
					result.FailedBatches++
					mu.Unlock()
					continue
				}
				mu.Lock()
				result.Written += len(b.records)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		return result, errors.NewStoreError("write", collection, -1, errors.Join(failures...))
	}
	logger.Info().
		Int("written", result.Written).
		Int("batches", result.Batches).
		Int("workers", workers).
		Msg("Wrote records")
	return result, nil
}

func (w *Writer) ensureIndex(ctx context.Context, collection string) error {
	conn, err := w.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx) //nolint:errcheck // best effort
	return conn.EnsureUniqueIndex(ctx, collection, constants.FieldIDMatch, constants.FieldModifiedDate)
}

func (w *Writer) split(records []*record.Record) []batch {
	size := w.options.batchSize
	out := make([]batch, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, batch{index: len(out), records: records[start:end]})
	}
	return out
}
