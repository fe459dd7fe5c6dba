package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mieux-choisir/foodmap/pkg/errors"
)

func TestNotFoundError(t *testing.T) {
	err := pkgerrors.NewNotFoundError("term", "en:cookies")
	assert.Equal(t, `term "en:cookies" not found`, err.Error())
	assert.True(t, pkgerrors.IsNotFound(errors.Join(errors.New("lookup"), err)))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("batch_size", 0, "must be positive")
		assert.Equal(t, "invalid batch_size: must be positive", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "cursor out of order"}
		assert.Equal(t, "invalid input: cursor out of order", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestMalformedTaxonomyError(t *testing.T) {
	err := pkgerrors.NewMalformedTaxonomyError("categories.txt", 12, "it: Grappa", "first language line is not en:")
	assert.Equal(t, `malformed taxonomy block at categories.txt line 12 ("it: Grappa"): first language line is not en:`, err.Error())
	assert.True(t, pkgerrors.IsMalformedTaxonomy(err))
	assert.False(t, pkgerrors.IsNotFound(err))

	anonymous := pkgerrors.NewMalformedTaxonomyError("", 3, "de: Lebkuchen", "first language line is not en:")
	assert.Contains(t, anonymous.Error(), "at line 3 ")
}

func TestMergeError(t *testing.T) {
	err := pkgerrors.NewMergeError("123", []string{"brand_owner", "product_name"}, nil)
	assert.Equal(t, "cannot merge products with id_match 123: conflicting fields brand_owner, product_name", err.Error())
	assert.True(t, pkgerrors.IsUnmergeable(err))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("connect maps to store unavailable", func(t *testing.T) {
		err := pkgerrors.NewStoreError("connect", "", -1, cause)
		assert.True(t, pkgerrors.IsStoreUnavailable(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "store connect failed: connection refused", err.Error())
	})

	t.Run("batch failure", func(t *testing.T) {
		err := pkgerrors.NewStoreError("upsert", "final_products", 3, cause)
		assert.False(t, pkgerrors.IsStoreUnavailable(err))
		assert.Equal(t, "store upsert failed on final_products (batch 3): connection refused", err.Error())
	})

	t.Run("collection without batch", func(t *testing.T) {
		err := pkgerrors.NewStoreError("find", "off_products", -1, cause)
		var storeErr *pkgerrors.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, "store find failed on off_products: connection refused", err.Error())
	})
}

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")

	err := pkgerrors.NewParseError("extjson", "off.jsonl", "line 4", cause)
	assert.Equal(t, "parse extjson off.jsonl: line 4: unexpected end of JSON input", err.Error())
	assert.ErrorIs(t, err, cause)

	located := &pkgerrors.ParseError{Format: "taxonomy", File: "categories.txt", Line: 9, Message: "bad prefix"}
	assert.Equal(t, "parse taxonomy categories.txt:9: bad prefix", located.Error())
}

func TestWrapHelpers(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		wrap    func(error) error
		message string
	}{
		{
			name:    "validation",
			wrap:    func(err error) error { return pkgerrors.WrapValidation("threshold", err) },
			message: "invalid threshold: boom",
		},
		{
			name:    "io",
			wrap:    func(err error) error { return pkgerrors.WrapIO("read", "taxonomy.txt", err) },
			message: "read taxonomy.txt: boom",
		},
		{
			name:    "resource",
			wrap:    func(err error) error { return pkgerrors.WrapResource("load", "mapping", "", err) },
			message: "load mapping: boom",
		},
		{
			name:    "resource with id",
			wrap:    func(err error) error { return pkgerrors.WrapResource("run", "match", "run-1", err) },
			message: "run match run-1: boom",
		},
		{
			name:    "parse",
			wrap:    func(err error) error { return pkgerrors.WrapParse("json", "mapping.json", err) },
			message: "parse json mapping.json: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.wrap(nil))
			err := tt.wrap(cause)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("unknown backend")
	err := pkgerrors.NewConfigError("store", "invalid store kind", cause)
	assert.Equal(t, "config store: invalid store kind", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsCanceled(t *testing.T) {
	assert.True(t, pkgerrors.IsCanceled(errors.Join(pkgerrors.ErrCanceled, errors.New("context canceled"))))
	assert.False(t, pkgerrors.IsCanceled(errors.New("other")))
}
