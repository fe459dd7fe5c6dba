package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mieux-choisir/foodmap/internal/store/storetest"
	"github.com/mieux-choisir/foodmap/pkg/logging"
)

// TestMongoStore runs against a live server named by FOODMAP_MONGO_URI.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FOODMAP_MONGO_URI")
	if uri == "" {
		t.Skip("FOODMAP_MONGO_URI not set")
	}
	logging.DisableLoggingForTest(t)

	database := fmt.Sprintf("foodmap_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx := context.Background()
		s, err := Open(ctx, uri, database)
		if err == nil {
			_ = s.db.Drop(ctx)
			_ = s.Close(ctx)
		}
	})
	storetest.Run(t, Opener(uri, database))
}
