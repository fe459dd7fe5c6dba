package product

import "slices"

// NOVA processing groups.
const (
	NovaUnknown        = 0
	NovaUnprocessed    = 1
	NovaCulinary       = 2
	NovaProcessed      = 3
	NovaUltraProcessed = 4
)

var (
	rawCategories = []string{
		"en:flours", "en:rices", "en:pastas", "en:breads", "en:legumes",
		"en:eggs", "en:milks", "en:plain-yogurts", "en:vegetables",
		"en:fruits", "en:nuts", "en:seeds",
	}
	transformedCategories = []string{
		"en:snacks", "en:beverages", "en:desserts", "en:candies",
		"en:chocolates", "en:breakfast-cereals", "en:processed-meats",
	}
	rawFoodGroups = []string{"cereals", "legumes"}

	rawForeignCategories = []string{
		"Vegetables  Unprepared/Unprocessed (Frozen)",
		"Vegetables - Unprepared/Unprocessed (Frozen)",
		"Fruits, Vegetables & Produce",
	}
)

// RawFoodSignals are the product attributes raw-food classification
// looks at. Zero values mean unknown.
type RawFoodSignals struct {
	NovaGroup  int
	FoodGroup  string
	Categories []string
	Additives  *int
}

// IsRawFood classifies a product as raw (unprocessed) food. The first
// matching rule wins: NOVA group 1 is raw, NOVA group 4 is not, a raw food
// group is raw, raw categories without any transformed category are raw,
// and additive-free products in NOVA group 1 or 2 are raw.
func IsRawFood(s RawFoodSignals) bool {
	switch s.NovaGroup {
	case NovaUnprocessed:
		return true
	case NovaUltraProcessed:
		return false
	}
	if slices.Contains(rawFoodGroups, s.FoodGroup) {
		return true
	}
	if containsAny(s.Categories, rawCategories) && !containsAny(s.Categories, transformedCategories) {
		return true
	}
	if s.Additives != nil && *s.Additives == 0 && s.NovaGroup >= NovaUnprocessed && s.NovaGroup <= NovaCulinary {
		return true
	}
	return false
}

// IsRawForeignCategory reports whether a foreign catalog category label
// designates unprocessed produce.
func IsRawForeignCategory(label string) bool {
	return slices.Contains(rawForeignCategories, label)
}

func containsAny(haystack, needles []string) bool {
	for _, h := range haystack {
		if slices.Contains(needles, h) {
			return true
		}
	}
	return false
}
