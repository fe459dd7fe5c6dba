package product_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mieux-choisir/foodmap/internal/utils/ptr"
	"github.com/mieux-choisir/foodmap/pkg/product"
)

func TestIsRawFood(t *testing.T) {
	tests := []struct {
		name    string
		signals product.RawFoodSignals
		want    bool
	}{
		{"nova unprocessed", product.RawFoodSignals{NovaGroup: 1, Categories: []string{"en:snacks"}}, true},
		{"nova ultra processed", product.RawFoodSignals{NovaGroup: 4, Categories: []string{"en:fruits"}}, false},
		{"raw food group", product.RawFoodSignals{FoodGroup: "legumes"}, true},
		{"raw category", product.RawFoodSignals{Categories: []string{"en:plant-based-foods", "en:fruits"}}, true},
		{"raw and transformed category", product.RawFoodSignals{Categories: []string{"en:fruits", "en:desserts"}}, false},
		{"additive free minimally processed", product.RawFoodSignals{NovaGroup: 2, Additives: ptr.To(0)}, true},
		{"additive free processed", product.RawFoodSignals{NovaGroup: 3, Additives: ptr.To(0)}, false},
		{"additives unknown", product.RawFoodSignals{NovaGroup: 2}, false},
		{"nothing known", product.RawFoodSignals{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, product.IsRawFood(tt.signals))
		})
	}
}

func TestIsRawForeignCategory(t *testing.T) {
	assert.True(t, product.IsRawForeignCategory("Vegetables  Unprepared/Unprocessed (Frozen)"))
	assert.True(t, product.IsRawForeignCategory("Vegetables - Unprepared/Unprocessed (Frozen)"))
	assert.True(t, product.IsRawForeignCategory("Fruits, Vegetables & Produce"))
	assert.False(t, product.IsRawForeignCategory("Pre-Packaged Fruit & Vegetables"))
	assert.False(t, product.IsRawForeignCategory(""))
}

func TestParseCatalog(t *testing.T) {
	for in, want := range map[string]product.Catalog{
		"off": product.CatalogPrimary, " OFF ": product.CatalogPrimary, "a": product.CatalogPrimary,
		"fdc": product.CatalogSecondary, "secondary": product.CatalogSecondary,
	} {
		got, err := product.ParseCatalog(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := product.ParseCatalog("usda-legacy")
	assert.Error(t, err)
}
