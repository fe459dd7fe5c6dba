package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mieux-choisir/foodmap/internal/store/storetest"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

func TestSQLiteStore(t *testing.T) {
	logging.DisableLoggingForTest(t)
	storetest.Run(t, Opener(filepath.Join(t.TempDir(), "foodmap.db")))
}

func TestSQLiteRejectsBadNames(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "names.db"))
	require.NoError(t, err)
	defer s.Close(ctx) //nolint:errcheck

	_, err = s.Find(ctx, `products"; DROP TABLE x; --`)
	assert.True(t, errors.IsValidationError(err), "got %v", err)

	err = s.EnsureUniqueIndex(ctx, "products", "product_name")
	assert.True(t, errors.IsValidationError(err), "got %v", err)
}

func TestSQLiteUniqueIndexViolation(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "unique.db"))
	require.NoError(t, err)
	defer s.Close(ctx) //nolint:errcheck

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Replace(ctx, "dups", []*record.Record{
		storetest.Product("1", "a", day),
		storetest.Product("1", "b", day),
	}))
	err = s.EnsureUniqueIndex(ctx, "dups", "id_match", "modified_date")
	assert.True(t, errors.Is(err, errors.ErrDuplicateKey), "got %v", err)
}

func TestSQLiteOpenFailure(t *testing.T) {
	logging.DisableLoggingForTest(t)
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.True(t, errors.IsStoreUnavailable(err), "got %v", err)
}
