package reconcile

import (
	"context"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/provenance"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Sink receives the records an Engine produces, in id_match order.
type Sink interface {
	// WriteJoined receives the union-merge of a matched pair.
	WriteJoined(ctx context.Context, rec *record.Record) error
	// WriteMerged receives the field-aware merge of a mergeable pair.
	WriteMerged(ctx context.Context, rec *record.Record) error
	// WriteUnmergeable receives a pair with conflicting strings, as built by
	// UnmergeableRecord.
	WriteUnmergeable(ctx context.Context, rec *record.Record) error
}

// Summary describes one engine run. Field counters only cover mergeable
// pairs.
type Summary struct {
	TotalA      int          `json:"total_a" yaml:"total_a"`
	TotalB      int          `json:"total_b" yaml:"total_b"`
	Pairs       int          `json:"pairs" yaml:"pairs"`
	Merged      int          `json:"merged" yaml:"merged"`
	Unmergeable int          `json:"unmergeable" yaml:"unmergeable"`
	Unchanged   int          `json:"unchanged" yaml:"unchanged"`
	OrphansA    int          `json:"orphans_a" yaml:"orphans_a"`
	OrphansB    int          `json:"orphans_b" yaml:"orphans_b"`
	Completed   FieldCounter `json:"-" yaml:"-"`
	Overwritten FieldCounter `json:"-" yaml:"-"`
}

// Engine joins two id_match-sorted streams of matched records and merges
// each pair.
type Engine struct {
	merger  *Merger
	tracker provenance.Tracker
}

// NewEngine creates an engine around merger.
func NewEngine(merger *Merger, opts ...EngineOption) (*Engine, error) {
	if merger == nil {
		return nil, errors.NewValidationError("merger", nil, "cannot be nil")
	}
	e := &Engine{merger: merger}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Merger returns the engine's merger.
func (e *Engine) Merger() *Merger { return e.merger }

// Run reads both cursors in ascending id_match order. Records sharing an
// id_match are paired; the rest are counted as orphans. The caller closes
// the cursors. Out-of-order input fails with a validation error and a
// sink error stops the run.
func (e *Engine) Run(ctx context.Context, primary, secondary store.Cursor, sink Sink) (*Summary, error) {
	logger := logging.FromContext(ctx)
	a := &stream{cur: primary, name: "primary"}
	b := &stream{cur: secondary, name: "secondary"}
	sum := &Summary{}

	ra, rb := a.next(ctx), b.next(ctx)
	for ra != nil && rb != nil {
		if err := ctx.Err(); err != nil {
			return sum, errors.Join(errors.ErrCanceled, err)
		}
		switch ida, idb := ra.IDMatch(), rb.IDMatch(); {
		case ida < idb:
			sum.OrphansA++
			ra = a.next(ctx)
		case ida > idb:
			sum.OrphansB++
			rb = b.next(ctx)
		default:
			if err := e.mergePair(ctx, ra, rb, sink, sum); err != nil {
				return sum, err
			}
			ra, rb = a.next(ctx), b.next(ctx)
		}
	}
	for ; ra != nil; ra = a.next(ctx) {
		sum.OrphansA++
	}
	for ; rb != nil; rb = b.next(ctx) {
		sum.OrphansB++
	}
	sum.TotalA, sum.TotalB = a.count, b.count
	if err := ctx.Err(); err != nil {
		return sum, errors.Join(errors.ErrCanceled, err)
	}
	if err := errors.Join(a.err, b.err); err != nil {
		return sum, err
	}

	logger.Info().
		Int("pairs", sum.Pairs).
		Int("merged", sum.Merged).
		Int("unmergeable", sum.Unmergeable).
		Int("unchanged", sum.Unchanged).
		Int("orphans_a", sum.OrphansA).
		Int("orphans_b", sum.OrphansB).
		Msg("Product merge completed")
	return sum, nil
}

func (e *Engine) mergePair(ctx context.Context, primary, secondary *record.Record, sink Sink, sum *Summary) error {
	sum.Pairs++
	if err := sink.WriteJoined(ctx, UnionMerge(primary, secondary)); err != nil {
		return err
	}

	res := e.merger.Merge(primary, secondary)
	if e.tracker != nil {
		for _, p := range res.Provenance {
			e.tracker.Track(res.IDMatch, p)
		}
	}

	if !res.Mergeable {
		sum.Unmergeable++
		logging.FromContext(logging.WithIDMatch(ctx, res.IDMatch)).Debug().
			Err(res.Err()).
			Msg("Pair routed to review")
		return sink.WriteUnmergeable(ctx, UnmergeableRecord(primary, secondary, res.Conflicts))
	}

	sum.Merged++
	if !res.Changed() {
		sum.Unchanged++
	}
	sum.Completed.AddAll(res.Completed)
	sum.Overwritten.AddAll(res.Overwritten)
	return sink.WriteMerged(ctx, res.Record)
}

// UnmergeableRecord packs a conflicting pair for manual review: the
// shared id_match, both records and the conflicting paths with both
// values.
func UnmergeableRecord(primary, secondary *record.Record, conflicts []Conflict) *record.Record {
	out := record.New()
	id := primary.IDMatch()
	if id == "" {
		id = secondary.IDMatch()
	}
	out.Set(constants.FieldIDMatch, record.StringValue(id))
	out.Set("primary", record.NestedValue(primary.Clone()))
	out.Set("secondary", record.NestedValue(secondary.Clone()))

	items := make([]record.Value, len(conflicts))
	for i, c := range conflicts {
		entry := record.New()
		entry.Set("path", record.StringValue(c.Path))
		entry.Set("primary", c.Primary.Clone())
		entry.Set("secondary", c.Secondary.Clone())
		items[i] = record.NestedValue(entry)
	}
	out.Set("conflicts", record.ListValue(items...))
	return out
}

// stream reads one sorted cursor and rejects descending ids.
type stream struct {
	cur   store.Cursor
	name  string
	last  string
	count int
	err   error
}

func (s *stream) next(ctx context.Context) *record.Record {
	if s.err != nil || !s.cur.Next(ctx) {
		if s.err == nil {
			s.err = s.cur.Err()
		}
		return nil
	}
	rec := s.cur.Record()
	id := rec.IDMatch()
	if id < s.last {
		s.err = errors.NewValidationError(s.name, id, "cursor is not sorted by id_match (after "+s.last+")")
		return nil
	}
	s.last = id
	s.count++
	return rec
}

// Collector is a Sink keeping every record in memory.
type Collector struct {
	Joined      []*record.Record
	Merged      []*record.Record
	Unmergeable []*record.Record
}

var _ Sink = (*Collector)(nil)

// WriteJoined implements Sink.
func (c *Collector) WriteJoined(_ context.Context, rec *record.Record) error {
	c.Joined = append(c.Joined, rec)
	return nil
}

// WriteMerged implements Sink.
func (c *Collector) WriteMerged(_ context.Context, rec *record.Record) error {
	c.Merged = append(c.Merged, rec)
	return nil
}

// WriteUnmergeable implements Sink.
func (c *Collector) WriteUnmergeable(_ context.Context, rec *record.Record) error {
	c.Unmergeable = append(c.Unmergeable, rec)
	return nil
}

// MergeAll runs the engine over in-memory matched sets.
func (e *Engine) MergeAll(ctx context.Context, primary, secondary []*record.Record) (*Summary, *Collector, error) {
	c := &Collector{}
	sum, err := e.Run(ctx, store.NewSliceCursor(primary), store.NewSliceCursor(secondary), c)
	return sum, c, err
}
