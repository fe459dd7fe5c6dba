// Package store abstracts the document store holding catalog records.
//
// Every collection is read through a Cursor yielding records in ascending
// id_match order, which the matching and merge stages rely on. Writes are
// upserts keyed by id_match or whole-collection replacements.
package store

import (
	"context"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/product"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Reader provides read access to collections. Missing collections read
// as empty.
type Reader interface {
	// Find returns every record of a collection sorted by id_match.
	Find(ctx context.Context, collection string) (Cursor, error)
	// Count returns the number of records in a collection.
	Count(ctx context.Context, collection string) (int64, error)
}

// Writer provides write access to collections.
type Writer interface {
	// EnsureUniqueIndex creates a unique index over fields if missing.
	EnsureUniqueIndex(ctx context.Context, collection string, fields ...string) error
	// Upsert sets the fields of the record sharing each record's id_match,
	// inserting it when none exists.
	Upsert(ctx context.Context, collection string, records []*record.Record) error
	// Replace drops a collection and inserts records in its place.
	Replace(ctx context.Context, collection string, records []*record.Record) error
	// Drop removes a collection and its indexes.
	Drop(ctx context.Context, collection string) error
}

// Store is one connection to a document store.
type Store interface {
	Reader
	Writer
	Close(ctx context.Context) error
}

// Opener opens an independent connection. Persistence workers call it
// once each.
type Opener func(ctx context.Context) (Store, error)

// Collections names the collections used by one reconciliation.
type Collections struct {
	CatalogA    string `json:"catalog_a" yaml:"catalog_a"`
	CatalogB    string `json:"catalog_b" yaml:"catalog_b"`
	MatchedA    string `json:"matched_a" yaml:"matched_a"`
	MatchedB    string `json:"matched_b" yaml:"matched_b"`
	UnmatchedA  string `json:"unmatched_a" yaml:"unmatched_a"`
	Joined      string `json:"joined" yaml:"joined"`
	Final       string `json:"final" yaml:"final"`
	Unmergeable string `json:"unmergeable" yaml:"unmergeable"`
}

// DefaultCollections returns the standard collection names.
func DefaultCollections() Collections {
	return Collections{
		CatalogA:    constants.CollectionCatalogA,
		CatalogB:    constants.CollectionCatalogB,
		MatchedA:    constants.CollectionMatchedA,
		MatchedB:    constants.CollectionMatchedB,
		UnmatchedA:  constants.CollectionUnmatchedA,
		Joined:      constants.CollectionJoined,
		Final:       constants.CollectionFinal,
		Unmergeable: constants.CollectionUnmergeable,
	}
}

// Catalog returns the import collection for a catalog.
func (c Collections) Catalog(catalog product.Catalog) (string, error) {
	switch catalog {
	case product.CatalogPrimary:
		return c.CatalogA, nil
	case product.CatalogSecondary:
		return c.CatalogB, nil
	}
	return "", errors.NewValidationError("catalog", string(catalog), "unknown catalog")
}

// Validate checks that every collection is named and names are distinct.
func (c Collections) Validate() error {
	names := map[string]string{
		"catalog_a":   c.CatalogA,
		"catalog_b":   c.CatalogB,
		"matched_a":   c.MatchedA,
		"matched_b":   c.MatchedB,
		"unmatched_a": c.UnmatchedA,
		"joined":      c.Joined,
		"final":       c.Final,
		"unmergeable": c.Unmergeable,
	}
	seen := make(map[string]string, len(names))
	for field, name := range names {
		if name == "" {
			return errors.NewValidationError(field, name, "collection name is required")
		}
		if other, dup := seen[name]; dup {
			return errors.NewValidationError(field, name, "collection name already used by "+other)
		}
		seen[name] = field
	}
	return nil
}
