package match

import (
	"context"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Summary reports a stored matching run.
type Summary struct {
	Matched     int  `json:"matched" yaml:"matched"`
	MatchedA    int  `json:"matched_a" yaml:"matched_a"`
	MatchedB    int  `json:"matched_b" yaml:"matched_b"`
	UnmatchedA  int  `json:"unmatched_a" yaml:"unmatched_a"`
	UnmatchedB  int  `json:"unmatched_b" yaml:"unmatched_b"`
	MissingID   int  `json:"missing_id" yaml:"missing_id"`
	DuplicatesA int  `json:"duplicates_a" yaml:"duplicates_a"`
	DuplicatesB int  `json:"duplicates_b" yaml:"duplicates_b"`
	Empty       bool `json:"empty" yaml:"empty"`
}

// Matcher matches the catalogs held in a store and materializes the
// matched and unmatched sets as collections.
type Matcher struct {
	open        store.Opener
	collections store.Collections
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher) error

// WithCollections overrides the collection names.
func WithCollections(c store.Collections) MatcherOption {
	return func(m *Matcher) error {
		if err := c.Validate(); err != nil {
			return err
		}
		m.collections = c
		return nil
	}
}

// NewMatcher creates a store-backed matcher.
func NewMatcher(open store.Opener, opts ...MatcherOption) (*Matcher, error) {
	if open == nil {
		return nil, errors.NewValidationError("opener", nil, "store opener is required")
	}
	m := &Matcher{open: open, collections: store.DefaultCollections()}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Run matches the two catalog collections and replaces the matched-A,
// matched-B and unmatched-A collections with the result. Re-running over
// unchanged catalogs stores the same sets.
func (m *Matcher) Run(ctx context.Context) (*Summary, error) {
	ctx = logging.WithOperation(ctx, "match")
	conn, err := m.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx) //nolint:errcheck // best effort

	curA, err := conn.Find(ctx, m.collections.CatalogA)
	if err != nil {
		return nil, err
	}
	defer curA.Close(ctx) //nolint:errcheck
	curB, err := conn.Find(ctx, m.collections.CatalogB)
	if err != nil {
		return nil, err
	}
	defer curB.Close(ctx) //nolint:errcheck

	res, err := MatchCursors(ctx, curA, curB)
	if err != nil {
		return nil, err
	}

	for _, out := range []struct {
		collection string
		records    []*record.Record
	}{
		{m.collections.MatchedA, res.MatchedA},
		{m.collections.MatchedB, res.MatchedB},
		{m.collections.UnmatchedA, res.UnmatchedA},
	} {
		if err := conn.Replace(ctx, out.collection, out.records); err != nil {
			return nil, err
		}
	}

	return &Summary{
		Matched:     len(res.IDs),
		MatchedA:    len(res.MatchedA),
		MatchedB:    len(res.MatchedB),
		UnmatchedA:  len(res.UnmatchedA),
		UnmatchedB:  res.UnmatchedB,
		MissingID:   res.MissingID,
		DuplicatesA: res.DuplicatesA,
		DuplicatesB: res.DuplicatesB,
		Empty:       res.Empty,
	}, nil
}
