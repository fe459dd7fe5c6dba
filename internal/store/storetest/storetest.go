// Package storetest holds behaviour tests every store backend must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Product builds a minimal record.
func Product(id, name string, modified time.Time) *record.Record {
	r := record.New()
	r.Set("id_match", record.StringValue(id))
	r.Set("product_name", record.StringValue(name))
	r.Set("modified_date", record.TimeValue(modified))
	return r
}

// Run exercises a backend. Each subtest opens connections through open
// and uses its own collection names.
func Run(t *testing.T, open store.Opener) {
	t.Helper()
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	connect := func(t *testing.T) store.Store {
		t.Helper()
		s, err := open(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close(ctx) })
		return s
	}

	t.Run("missing collection is empty", func(t *testing.T) {
		s := connect(t)
		n, err := s.Count(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, n)

		got, err := store.FindAll(ctx, s, "missing")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("find sorts by id_match", func(t *testing.T) {
		s := connect(t)
		require.NoError(t, s.Upsert(ctx, "sorted", []*record.Record{
			Product("3", "c", day), Product("1", "a", day), Product("2", "b", day),
		}))

		got, err := store.FindAll(ctx, s, "sorted")
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i, want := range []string{"1", "2", "3"} {
			assert.Equal(t, want, got[i].IDMatch())
		}
	})

	t.Run("upsert sets fields of the existing record", func(t *testing.T) {
		s := connect(t)
		first := Product("1", "Oat cookies", day)
		first.Set("brand_owner", record.StringValue("Acme"))
		require.NoError(t, s.Upsert(ctx, "upserts", []*record.Record{first}))
		require.NoError(t, s.Upsert(ctx, "upserts", []*record.Record{Product("1", "Oat biscuits", day.Add(time.Hour))}))

		got, err := store.FindAll(ctx, s, "upserts")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Oat biscuits", got[0].Text("product_name"))
		assert.Equal(t, "Acme", got[0].Text("brand_owner"))
		assert.True(t, got[0].Timestamp("modified_date").Equal(day.Add(time.Hour)))
	})

	t.Run("upsert is idempotent", func(t *testing.T) {
		s := connect(t)
		batch := []*record.Record{Product("1", "a", day), Product("2", "b", day)}
		require.NoError(t, s.EnsureUniqueIndex(ctx, "idempotent", "id_match", "modified_date"))
		require.NoError(t, s.Upsert(ctx, "idempotent", batch))
		require.NoError(t, s.Upsert(ctx, "idempotent", batch))

		n, err := s.Count(ctx, "idempotent")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("unique index is created once", func(t *testing.T) {
		s := connect(t)
		require.NoError(t, s.EnsureUniqueIndex(ctx, "indexed", "id_match", "modified_date"))
		require.NoError(t, s.EnsureUniqueIndex(ctx, "indexed", "id_match", "modified_date"))
	})

	t.Run("upsert requires id_match", func(t *testing.T) {
		s := connect(t)
		err := s.Upsert(ctx, "no_id", []*record.Record{Product("", "a", day)})
		require.Error(t, err)
		var se *errors.StoreError
		assert.True(t, errors.As(err, &se))
	})

	t.Run("replace swaps contents", func(t *testing.T) {
		s := connect(t)
		require.NoError(t, s.Replace(ctx, "replaced", []*record.Record{Product("1", "a", day), Product("2", "b", day)}))
		require.NoError(t, s.Replace(ctx, "replaced", []*record.Record{Product("2", "b", day), Product("2", "b2", day)}))

		got, err := store.FindAll(ctx, s, "replaced")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[0].Text("product_name"))
		assert.Equal(t, "b2", got[1].Text("product_name"))

		require.NoError(t, s.Replace(ctx, "replaced", nil))
		n, err := s.Count(ctx, "replaced")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("drop removes the collection", func(t *testing.T) {
		s := connect(t)
		require.NoError(t, s.Upsert(ctx, "dropped", []*record.Record{Product("1", "a", day)}))
		require.NoError(t, s.Drop(ctx, "dropped"))
		n, err := s.Count(ctx, "dropped")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("connections share data", func(t *testing.T) {
		writer := connect(t)
		reader := connect(t)
		require.NoError(t, writer.Upsert(ctx, "shared", []*record.Record{Product("9", "z", day)}))

		got, err := store.FindAll(ctx, reader, "shared")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "9", got[0].IDMatch())
	})

	t.Run("nested documents round trip", func(t *testing.T) {
		s := connect(t)
		rec := Product("5", "Soup", day)
		rec.SetPath("nutrition_facts.nutrition_facts_per_hundred_grams.fat_100g", record.NumberValue(2.5))
		rec.Set("categories_en", record.ListValue(record.StringValue("en:soups")))
		require.NoError(t, s.Upsert(ctx, "nested", []*record.Record{rec}))

		got, err := store.FindAll(ctx, s, "nested")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, rec.Equal(got[0]), "got %v", got[0].ToMap())
	})
}
