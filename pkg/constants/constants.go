// Package constants provides shared constants used throughout the foodmap codebase.
// This includes collection names, merge tolerances, persistence limits and
// timeouts that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// ConnectTimeout bounds establishing a document store connection
	ConnectTimeout = 10 * time.Second

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 2 * time.Hour
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Persistence limits
const (
	// DefaultBatchSize is the number of records sent per upsert batch
	DefaultBatchSize = 1000

	// DefaultMaxWriters is the size of the persistence worker pool
	DefaultMaxWriters = 5

	// MaxBatchSize caps a single upsert batch
	MaxBatchSize = 100000

	// MaxWriters caps the persistence worker pool
	MaxWriters = 64

	// ScannerBufferSize is the largest JSON line accepted on import (16 MiB)
	ScannerBufferSize = 16 * 1024 * 1024
)

// Merge and reporting defaults
const (
	// DefaultTolerance is the relative tolerance for numeric field equality
	DefaultTolerance = 0.1

	// DefaultThreshold splits numeric modifications into above/below buckets
	DefaultThreshold = 0.1

	// PerHundredGrams is the reference portion numbers are normalized to
	PerHundredGrams = 100.0
)

// Taxonomy constants
const (
	// CanonicalLanguage is the only taxonomy language used for matching
	CanonicalLanguage = "en"

	// CanonicalPrefix prefixes every canonical category term
	CanonicalPrefix = CanonicalLanguage + ":"

	// UncategorizedTerm is returned when no category label resolves
	UncategorizedTerm = "en:other"
)

// Record field names shared by every stage
const (
	FieldIDMatch         = "id_match"
	FieldModifiedDate    = "modified_date"
	FieldPublicationDate = "publication_date"
	FieldCategories      = "categories_en"
	FieldDataSource      = "data_source"
	FieldIsRaw           = "is_raw"
	FieldServingSize     = "serving_size"

	// Import-only fields consumed by category resolution
	FieldRawCategories   = "categories_raw"
	FieldForeignCategory = "fdc_category"
	FieldFoodGroup       = "pnns_groups_1"
	FieldAdditivesCount  = "additives_n"
	FieldNovaScore       = "nova_data.score"
	FieldIngredientsText = "ingredients.ingredients_text"
	FieldIngredientsList = "ingredients.ingredients_list"
)

// Store defaults
const (
	// DefaultDatabase is the document store database name
	DefaultDatabase = "openfoodfacts"

	// DefaultMongoURI is used when no URI is configured
	DefaultMongoURI = "mongodb://localhost:27017"

	// DefaultSQLitePath is the embedded store file
	DefaultSQLitePath = "foodmap.db"
)

// Collection names
const (
	CollectionCatalogA    = "off_products"
	CollectionCatalogB    = "fdc_products"
	CollectionMatchedA    = "matched_off_products"
	CollectionMatchedB    = "matched_fdc_products"
	CollectionUnmatchedA  = "unmatched_off_products"
	CollectionJoined      = "joined_products"
	CollectionFinal       = "final_products"
	CollectionUnmergeable = "unmergeable_products"
)
