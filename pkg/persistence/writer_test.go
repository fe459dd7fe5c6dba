package persistence_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/internal/store/memory"
	"github.com/mieux-choisir/foodmap/internal/store/sqlite"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/persistence"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

var day = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

func product(id, name string, published time.Time) *record.Record {
	r := record.New()
	r.Set("id_match", record.StringValue(id))
	r.Set("product_name", record.StringValue(name))
	r.Set("modified_date", record.TimeValue(day))
	r.Set("publication_date", record.TimeValue(published))
	return r
}

func products(n int) []*record.Record {
	out := make([]*record.Record, n)
	for i := range out {
		out[i] = product(fmt.Sprintf("%06d", i), fmt.Sprintf("product %d", i), day)
	}
	return out
}

func TestDedupe(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	input := []*record.Record{
		product("1", "first", jan),
		product("2", "only", jan),
		product("1", "freshest", feb),
		product("", "no key", feb),
		product("1", "stale", jan),
		product("3", "tie a", jan),
		product("3", "tie b", jan),
	}

	kept, dropped, superseded := persistence.Dedupe(input)
	require.Len(t, kept, 3)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 3, superseded)
	assert.Equal(t, "freshest", kept[0].Text("product_name"))
	assert.Equal(t, "only", kept[1].Text("product_name"))
	assert.Equal(t, "tie b", kept[2].Text("product_name"), "ties keep the later arrival")
}

func TestWrite(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)
	ctx := context.Background()
	m := memory.New()

	w, err := persistence.NewWriter(m.Opener(), persistence.WithBatchSize(1000))
	require.NoError(t, err)

	input := append(products(2500), product("", "no key", day), product("000001", "renamed", day.Add(time.Hour)))
	res, err := w.Write(ctx, "products", input)
	require.NoError(t, err)

	assert.Equal(t, &persistence.Result{
		Received:       2502,
		Written:        2500,
		DroppedEmptyID: 1,
		Superseded:     1,
		Batches:        3,
	}, res)
	assert.Equal(t, 4, m.Opened(), "one index connection plus one per worker")

	s, err := m.Opener()(ctx)
	require.NoError(t, err)
	got, err := store.FindAll(ctx, s, "products")
	require.NoError(t, err)
	require.Len(t, got, 2500)
	assert.Equal(t, "renamed", got[1].Text("product_name"))

	tl.AssertContains(t, "Dropped records without id_match")
}

func TestWriteIsIdempotent(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	m := memory.New()
	w, err := persistence.NewWriter(m.Opener(), persistence.WithBatchSize(7), persistence.WithMaxConcurrentWriters(3))
	require.NoError(t, err)

	input := products(50)
	_, err = w.Write(ctx, "products", input)
	require.NoError(t, err)
	s, err := m.Opener()(ctx)
	require.NoError(t, err)
	first, err := store.FindAll(ctx, s, "products")
	require.NoError(t, err)

	_, err = w.Write(ctx, "products", input)
	require.NoError(t, err)
	second, err := store.FindAll(ctx, s, "products")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), first[i].IDMatch())
	}
}

func TestWriteEmptyInput(t *testing.T) {
	logging.DisableLoggingForTest(t)
	m := memory.New()
	w, err := persistence.NewWriter(m.Opener())
	require.NoError(t, err)

	res, err := w.Write(context.Background(), "products", []*record.Record{product("", "x", day)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Batches)
	assert.Equal(t, 1, res.DroppedEmptyID)
}

// failingStore rejects any batch containing the poisoned id.
type failingStore struct {
	store.Store
	poisoned string
}

func (f *failingStore) Upsert(ctx context.Context, name string, records []*record.Record) error {
	for _, r := range records {
		if r.IDMatch() == f.poisoned {
			return errors.New("disk full")
		}
	}
	return f.Store.Upsert(ctx, name, records)
}

func TestWriteBatchFailureKeepsOtherBatches(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	m := memory.New()
	open := func(ctx context.Context) (store.Store, error) {
		s, err := m.Opener()(ctx)
		if err != nil {
			return nil, err
		}
		return &failingStore{Store: s, poisoned: "000015"}, nil
	}

	w, err := persistence.NewWriter(open, persistence.WithBatchSize(10), persistence.WithMaxConcurrentWriters(2))
	require.NoError(t, err)
	res, err := w.Write(ctx, "products", products(40))
	require.Error(t, err)

	var se *errors.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "write", se.Operation)
	assert.Contains(t, err.Error(), "batch 1")
	assert.Equal(t, 1, res.FailedBatches)
	assert.Equal(t, 30, res.Written)

	n, err := (&failingStore{Store: mustOpen(t, m)}).Count(ctx, "products")
	require.NoError(t, err)
	assert.EqualValues(t, 30, n)
}

func TestWriteStoreUnavailable(t *testing.T) {
	logging.DisableLoggingForTest(t)
	open := func(ctx context.Context) (store.Store, error) {
		return nil, errors.NewStoreError("connect", "", -1, errors.New("connection refused"))
	}
	w, err := persistence.NewWriter(open)
	require.NoError(t, err)

	_, err = w.Write(context.Background(), "products", products(3))
	assert.True(t, errors.IsStoreUnavailable(err))
}

func TestWriteSQLiteConcurrentWorkers(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	w, err := persistence.NewWriter(sqlite.Opener(path), persistence.WithBatchSize(50), persistence.WithMaxConcurrentWriters(5))
	require.NoError(t, err)
	res, err := w.Write(ctx, "products", products(1000))
	require.NoError(t, err)
	assert.Equal(t, 20, res.Batches)
	assert.Equal(t, 1000, res.Written)

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer s.Close(ctx) //nolint:errcheck
	n, err := s.Count(ctx, "products")
	require.NoError(t, err)
	assert.EqualValues(t, 1000, n)
}

func TestWriterOptions(t *testing.T) {
	open := memory.New().Opener()

	w, err := persistence.NewWriter(open)
	require.NoError(t, err)
	assert.Equal(t, 1000, w.Options().BatchSize())
	assert.Equal(t, 5, w.Options().MaxWriters())

	for _, opt := range []persistence.Option{
		persistence.WithBatchSize(0),
		persistence.WithBatchSize(100001),
		persistence.WithMaxConcurrentWriters(0),
		persistence.WithMaxConcurrentWriters(65),
	} {
		_, err := persistence.NewWriter(open, opt)
		assert.True(t, errors.IsValidationError(err))
	}

	_, err = persistence.NewWriter(nil)
	assert.True(t, errors.IsValidationError(err))
}

func mustOpen(t *testing.T, m *memory.Memory) store.Store {
	t.Helper()
	s, err := m.Opener()(context.Background())
	require.NoError(t, err)
	return s
}
