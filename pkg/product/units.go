package product

import "strings"

// Divisors converting a nutrient amount in the given unit to grams.
// International units use the vitamin A retinol equivalent.
var gramDivisors = map[string]float64{
	"g":   1,
	"mcg": 1_000_000,
	"µg":  1_000_000,
	"mg":  1_000,
	"cg":  100,
	"dg":  10,
	"iu":  3.33,
}

// ToGrams converts value expressed in unit to grams. The unit is matched
// case-insensitively; unknown units report false.
func ToGrams(value float64, unit string) (float64, bool) {
	d, ok := gramDivisors[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, false
	}
	return value / d, true
}
