// Package match pairs the records of two catalogs that share an
// id_match.
//
// Matching is exact on id_match. Both inputs are read in ascending
// id_match order and joined like a sorted merge, so only the output sets
// are held in memory.
package match

import (
	"context"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Result partitions two catalogs by their shared identifiers.
type Result struct {
	// IDs are the id_match values present in both catalogs, ascending.
	IDs        []string
	MatchedA   []*record.Record
	MatchedB   []*record.Record
	UnmatchedA []*record.Record
	// UnmatchedB counts catalog B records without a partner.
	UnmatchedB int
	// MissingID counts records of either catalog without an id_match.
	// They appear in no set.
	MissingID int
	// DuplicatesA and DuplicatesB count records repeating an id_match
	// already seen in the same catalog. They are kept.
	DuplicatesA int
	DuplicatesB int
	// Empty is set when either catalog had no records.
	Empty bool
}

// Match partitions in-memory catalogs. It never fails; an empty catalog
// yields an empty result.
func Match(ctx context.Context, a, b []*record.Record) *Result {
	res, err := MatchCursors(ctx, store.NewSliceCursor(a), store.NewSliceCursor(b))
	if err != nil {
		// Slice cursors are sorted and never fail; only cancellation lands here.
		logging.FromContext(ctx).Warn().Err(err).Msg("Matching interrupted")
		return &Result{}
	}
	return res
}

// MatchCursors partitions two catalogs read from cursors sorted by
// id_match. Out-of-order input fails with a validation error.
func MatchCursors(ctx context.Context, a, b store.Cursor) (*Result, error) {
	logger := logging.FromContext(ctx)
	ga, gb := newGroups(a, "catalog_a"), newGroups(b, "catalog_b")
	res := &Result{}

	_, okA := ga.peek(ctx)
	_, okB := gb.peek(ctx)
	if err := errors.Join(ga.err, gb.err); err != nil {
		return nil, err
	}
	if !okA || !okB {
		logger.Warn().Bool("catalog_a_empty", !okA).Bool("catalog_b_empty", !okB).Msg("Catalog is empty, nothing to match")
		res.Empty = true
		res.MissingID = ga.missing + gb.missing
		return res, nil
	}

	for {
		idA, okA := ga.peek(ctx)
		idB, okB := gb.peek(ctx)
		if !okA && !okB {
			break
		}
		switch {
		case okA && (!okB || idA < idB):
			group := ga.next(ctx)
			res.DuplicatesA += len(group) - 1
			res.UnmatchedA = append(res.UnmatchedA, group...)
		case okB && (!okA || idB < idA):
			group := gb.next(ctx)
			res.DuplicatesB += len(group) - 1
			res.UnmatchedB += len(group)
		default:
			groupA, groupB := ga.next(ctx), gb.next(ctx)
			res.DuplicatesA += len(groupA) - 1
			res.DuplicatesB += len(groupB) - 1
			res.IDs = append(res.IDs, idA)
			res.MatchedA = append(res.MatchedA, groupA...)
			res.MatchedB = append(res.MatchedB, groupB...)
		}
	}
	if err := errors.Join(ga.err, gb.err, ctx.Err()); err != nil {
		return nil, err
	}
	res.MissingID = ga.missing + gb.missing

	if res.DuplicatesA > 0 || res.DuplicatesB > 0 {
		logger.Warn().
			Int("duplicates_a", res.DuplicatesA).
			Int("duplicates_b", res.DuplicatesB).
			Msg("Catalogs contain repeated id_match values")
	}
	if res.MissingID > 0 {
		logger.Warn().Int("missing", res.MissingID).Msg("Records without id_match were not matched")
	}
	logger.Info().
		Int("matched", len(res.IDs)).
		Int("unmatched_a", len(res.UnmatchedA)).
		Int("unmatched_b", res.UnmatchedB).
		Msg("Matched catalogs")
	return res, nil
}
