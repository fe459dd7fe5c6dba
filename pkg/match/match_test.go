package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/internal/store/memory"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/match"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

func rec(id, source string) *record.Record {
	return record.FromMap(map[string]any{"id_match": id, "data_source": source})
}

func ids(records []*record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.IDMatch()
	}
	return out
}

func TestMatchScenario(t *testing.T) {
	logging.DisableLoggingForTest(t)

	a := []*record.Record{rec("1", "off"), rec("2", "off")}
	b := []*record.Record{rec("2", "fdc"), rec("3", "fdc")}

	res := match.Match(context.Background(), a, b)
	assert.Equal(t, []string{"2"}, res.IDs)
	assert.Equal(t, []string{"2"}, ids(res.MatchedA))
	assert.Equal(t, []string{"2"}, ids(res.MatchedB))
	assert.Equal(t, []string{"1"}, ids(res.UnmatchedA))
	assert.Equal(t, 1, res.UnmatchedB)
	assert.Equal(t, "off", res.MatchedA[0].Text("data_source"))
	assert.Equal(t, "fdc", res.MatchedB[0].Text("data_source"))
}

func TestMatchPartitionsCatalogA(t *testing.T) {
	logging.DisableLoggingForTest(t)

	a := []*record.Record{rec("9", "off"), rec("4", "off"), rec("7", "off"), rec("1", "off"), rec("5", "off")}
	b := []*record.Record{rec("5", "fdc"), rec("1", "fdc"), rec("8", "fdc"), rec("9", "fdc")}

	res := match.Match(context.Background(), a, b)
	assert.Equal(t, []string{"1", "5", "9"}, res.IDs)
	assert.ElementsMatch(t, ids(res.MatchedA), ids(res.MatchedB))

	union := append(ids(res.MatchedA), ids(res.UnmatchedA)...)
	assert.ElementsMatch(t, ids(a), union)
	for _, id := range ids(res.UnmatchedA) {
		assert.NotContains(t, res.IDs, id)
	}
}

func TestMatchDuplicatesAndMissingIDs(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)

	a := []*record.Record{rec("2", "off"), rec("2", "off"), rec("", "off"), rec("3", "off")}
	b := []*record.Record{rec("2", "fdc"), record.New()}

	res := match.Match(context.Background(), a, b)
	assert.Equal(t, []string{"2"}, res.IDs)
	assert.Len(t, res.MatchedA, 2)
	assert.Equal(t, 1, res.DuplicatesA)
	assert.Equal(t, 2, res.MissingID)
	assert.Equal(t, []string{"3"}, ids(res.UnmatchedA))

	tl.AssertContains(t, "Catalogs contain repeated id_match values")
}

func TestMatchEmptyCatalog(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)

	res := match.Match(context.Background(), []*record.Record{rec("1", "off")}, nil)
	assert.True(t, res.Empty)
	assert.Empty(t, res.IDs)
	assert.Empty(t, res.MatchedA)
	assert.Empty(t, res.UnmatchedA)
	tl.AssertContains(t, "Catalog is empty")
}

// unsorted yields records in the given order.
type unsorted struct {
	records []*record.Record
	pos     int
}

func (u *unsorted) Next(context.Context) bool   { u.pos++; return u.pos <= len(u.records) }
func (u *unsorted) Record() *record.Record      { return u.records[u.pos-1] }
func (u *unsorted) Err() error                  { return nil }
func (u *unsorted) Close(context.Context) error { return nil }

func TestMatchCursorsRejectsUnsortedInput(t *testing.T) {
	logging.DisableLoggingForTest(t)

	a := &unsorted{records: []*record.Record{rec("2", "off"), rec("1", "off")}}
	_, err := match.MatchCursors(context.Background(), a, store.NewSliceCursor([]*record.Record{rec("1", "fdc")}))
	assert.True(t, errors.IsValidationError(err), "got %v", err)
}

func TestMatcherRun(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	m := memory.New()
	collections := store.DefaultCollections()
	m.Seed(collections.CatalogA, rec("1", "off"), rec("2", "off"))
	m.Seed(collections.CatalogB, rec("2", "fdc"), rec("3", "fdc"))
	m.Seed(collections.UnmatchedA, rec("stale", "off"))

	matcher, err := match.NewMatcher(m.Opener())
	require.NoError(t, err)

	for run := 0; run < 2; run++ {
		summary, err := matcher.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, &match.Summary{Matched: 1, MatchedA: 1, MatchedB: 1, UnmatchedA: 1, UnmatchedB: 1}, summary)

		s, err := m.Opener()(ctx)
		require.NoError(t, err)
		for name, want := range map[string][]string{
			collections.MatchedA:   {"2"},
			collections.MatchedB:   {"2"},
			collections.UnmatchedA: {"1"},
		} {
			got, err := store.FindAll(ctx, s, name)
			require.NoError(t, err)
			assert.Equal(t, want, ids(got), name)
		}
	}
}

func TestNewMatcherValidation(t *testing.T) {
	_, err := match.NewMatcher(nil)
	assert.True(t, errors.IsValidationError(err))

	bad := store.DefaultCollections()
	bad.MatchedB = bad.MatchedA
	_, err = match.NewMatcher(memory.New().Opener(), match.WithCollections(bad))
	assert.True(t, errors.IsValidationError(err))
}
