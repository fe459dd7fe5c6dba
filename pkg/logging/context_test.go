package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mieux-choisir/foodmap/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("domain helpers add fields", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithCatalog(ctx, "off")
		ctx = logging.WithCollection(ctx, "matched_off_products")
		ctx = logging.WithIDMatch(ctx, "0061234567890")
		ctx = logging.WithWorker(ctx, 2)
		ctx = logging.WithOperation(ctx, "upsert")

		logging.FromContext(ctx).Info().Msg("batch written")

		tl.AssertContains(t, `"catalog":"off"`)
		tl.AssertContains(t, `"collection":"matched_off_products"`)
		tl.AssertContains(t, `"id_match":"0061234567890"`)
		tl.AssertContains(t, `"worker":2`)
		tl.AssertContains(t, `"operation":"upsert"`)
	})

	t.Run("WithRunID stores the id and tags the logger", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRunID(ctx, "run-42")

		assert.Equal(t, "run-42", logging.RunID(ctx))
		logging.FromContext(ctx).Info().Msg("started")
		tl.AssertContains(t, `"run_id":"run-42"`)
	})

	t.Run("RunID is empty without a run", func(t *testing.T) {
		assert.Empty(t, logging.RunID(context.Background()))
	})

	t.Run("FromContext falls back to default", func(t *testing.T) {
		//nolint:staticcheck // nil context is handled explicitly
		assert.Equal(t, logging.Default(), logging.FromContext(nil))
		assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	})
}
