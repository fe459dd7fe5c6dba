package foodmap

import (
	"context"
	"time"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/match"
	"github.com/mieux-choisir/foodmap/pkg/persistence"
	"github.com/mieux-choisir/foodmap/pkg/provenance"
	"github.com/mieux-choisir/foodmap/pkg/reconcile"
	"github.com/mieux-choisir/foodmap/pkg/record"
	"github.com/mieux-choisir/foodmap/pkg/stats"
)

// Reconciler matches and merges the stored catalogs.
type Reconciler interface {
	// Match replaces the matched and unmatched collections.
	Match(ctx context.Context) (*match.Summary, error)

	// Merge replaces the joined, final and unmergeable collections with
	// the merge of the matched collections.
	Merge(ctx context.Context) (*MergeResult, error)
}

// Reporter measures a merge.
type Reporter interface {
	// Report compares the matched primary records with the final records.
	// It carries the summary of the latest merge run by this client.
	Report(ctx context.Context) (*Report, error)
}

// MergeResult reports one merge.
type MergeResult struct {
	RunID      string                         `json:"run_id" yaml:"run_id"`
	Engine     *reconcile.Summary             `json:"engine" yaml:"engine"`
	Summary    *stats.Summary                 `json:"summary" yaml:"summary"`
	Written    map[string]*persistence.Result `json:"written" yaml:"written"`
	Provenance provenance.Map                 `json:"-" yaml:"-"`
}

// Report combines the merge summary and the numeric differences.
type Report struct {
	Summary     *stats.Summary          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Differences *stats.DifferenceReport `json:"differences" yaml:"differences"`
}

// RunResult reports an end-to-end run.
type RunResult struct {
	RunID  string         `json:"run_id" yaml:"run_id"`
	Match  *match.Summary `json:"match" yaml:"match"`
	Merge  *MergeResult   `json:"merge" yaml:"merge"`
	Report *Report        `json:"report" yaml:"report"`
}

// Match implements Reconciler.
func (c *client) Match(ctx context.Context) (*match.Summary, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	started := time.Now()
	ctx, _ = withRunID(ctx)

	m, err := match.NewMatcher(c.options.open, match.WithCollections(c.options.collections))
	if err != nil {
		return nil, err
	}
	sum, err := m.Run(ctx)
	if err != nil {
		return nil, err
	}
	c.hooks.stageCompleted(StageMatch, started)
	return sum, nil
}

// Merge implements Reconciler.
func (c *client) Merge(ctx context.Context) (*MergeResult, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	started := time.Now()
	ctx, runID := withRunID(ctx)
	ctx = logging.WithOperation(ctx, string(StageMerge))
	cols := c.options.collections

	conn, err := c.options.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx) //nolint:errcheck // best effort

	for _, name := range []string{cols.Joined, cols.Final, cols.Unmergeable} {
		if err := conn.Drop(ctx, name); err != nil {
			return nil, err
		}
	}

	primary, err := conn.Find(ctx, cols.MatchedA)
	if err != nil {
		return nil, err
	}
	defer primary.Close(ctx) //nolint:errcheck
	secondary, err := conn.Find(ctx, cols.MatchedB)
	if err != nil {
		return nil, err
	}
	defer secondary.Close(ctx) //nolint:errcheck

	c.tracker.Clear()
	sink := newFlushSink(c.writer, cols, c.hooks)
	sum, err := c.engine.Run(ctx, primary, secondary, sink)
	if err != nil {
		return nil, err
	}
	if err := sink.Close(ctx); err != nil {
		return nil, err
	}

	result := &MergeResult{
		RunID:      runID,
		Engine:     sum,
		Summary:    stats.Summarize(ctx, sum.Overwritten, sum.Completed, sum.Unmergeable, sum.TotalA, sum.TotalB),
		Written:    sink.written,
		Provenance: c.tracker.Map(),
	}

	c.mu.Lock()
	c.lastMerge = result
	c.mu.Unlock()
	c.hooks.stageCompleted(StageMerge, started)
	return result, nil
}

// Report implements Reporter.
func (c *client) Report(ctx context.Context) (*Report, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	started := time.Now()
	ctx, _ = withRunID(ctx)
	ctx = logging.WithOperation(ctx, string(StageReport))
	cols := c.options.collections

	conn, err := c.options.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx) //nolint:errcheck // best effort

	before, err := conn.Find(ctx, cols.MatchedA)
	if err != nil {
		return nil, err
	}
	defer before.Close(ctx) //nolint:errcheck
	after, err := conn.Find(ctx, cols.Final)
	if err != nil {
		return nil, err
	}
	defer after.Close(ctx) //nolint:errcheck

	diff, err := stats.CompareNumberDifferences(ctx, before, after, stats.WithThreshold(c.options.threshold))
	if err != nil {
		return nil, err
	}

	report := &Report{Differences: diff}
	c.mu.Lock()
	if c.lastMerge != nil {
		report.Summary = c.lastMerge.Summary
	}
	c.mu.Unlock()
	c.hooks.stageCompleted(StageReport, started)
	return report, nil
}

// Run implements Client.
func (c *client) Run(ctx context.Context) (*RunResult, error) {
	ctx, runID := withRunID(ctx)
	logger := logging.FromContext(ctx)
	result := &RunResult{RunID: runID}

	var err error
	if result.Match, err = c.Match(ctx); err != nil {
		return result, errors.WrapResource("run", "match", runID, err)
	}
	if result.Match.Empty {
		logger.Warn().Msg("A catalog is empty, merging an empty matched set")
	}
	if result.Merge, err = c.Merge(ctx); err != nil {
		return result, errors.WrapResource("run", "merge", runID, err)
	}
	if result.Report, err = c.Report(ctx); err != nil {
		return result, errors.WrapResource("run", "report", runID, err)
	}

	logger.Info().
		Int("matched", result.Match.Matched).
		Int("merged", result.Merge.Engine.Merged).
		Int("unmergeable", result.Merge.Engine.Unmergeable).
		Msg("Pipeline completed")
	return result, nil
}

// flushSink buffers engine output per collection and hands full buffers
// to the persistence writer.
type flushSink struct {
	writer  *persistence.Writer
	cols    store.Collections
	hooks   *hooks
	limit   int
	buffers map[string][]*record.Record
	written map[string]*persistence.Result
}

var _ reconcile.Sink = (*flushSink)(nil)

func newFlushSink(w *persistence.Writer, cols store.Collections, h *hooks) *flushSink {
	opts := w.Options()
	return &flushSink{
		writer:  w,
		cols:    cols,
		hooks:   h,
		limit:   opts.BatchSize() * opts.MaxWriters(),
		buffers: make(map[string][]*record.Record),
		written: make(map[string]*persistence.Result),
	}
}

func (s *flushSink) WriteJoined(ctx context.Context, rec *record.Record) error {
	return s.add(ctx, s.cols.Joined, rec)
}

func (s *flushSink) WriteMerged(ctx context.Context, rec *record.Record) error {
	s.hooks.merged(rec)
	return s.add(ctx, s.cols.Final, rec)
}

func (s *flushSink) WriteUnmergeable(ctx context.Context, rec *record.Record) error {
	s.hooks.unmergeable(rec)
	return s.add(ctx, s.cols.Unmergeable, rec)
}

func (s *flushSink) add(ctx context.Context, collection string, rec *record.Record) error {
	s.buffers[collection] = append(s.buffers[collection], rec)
	if len(s.buffers[collection]) < s.limit {
		return nil
	}
	return s.flush(ctx, collection)
}

func (s *flushSink) flush(ctx context.Context, collection string) error {
	records := s.buffers[collection]
	if len(records) == 0 {
		return nil
	}
	s.buffers[collection] = nil

	res, err := s.writer.Write(ctx, collection, records)
	if res != nil {
		total, ok := s.written[collection]
		if !ok {
			total = &persistence.Result{}
			s.written[collection] = total
		}
		total.Received += res.Received
		total.Written += res.Written
		total.DroppedEmptyID += res.DroppedEmptyID
		total.Superseded += res.Superseded
		total.Batches += res.Batches
		total.FailedBatches += res.FailedBatches
	}
	return err
}

// Close flushes every buffer.
func (s *flushSink) Close(ctx context.Context) error {
	var errs []error
	for _, collection := range []string{s.cols.Joined, s.cols.Final, s.cols.Unmergeable} {
		if err := s.flush(ctx, collection); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
