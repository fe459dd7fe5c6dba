package reconcile

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/record"
	"github.com/mieux-choisir/foodmap/pkg/taxonomy"
)

var fold = cases.Fold()

// NormalizeText folds case, strips diacritics and removes whitespace.
// It is the form StringsEqual compares.
func NormalizeText(s string) string {
	s = taxonomy.StripDiacritics(fold.String(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// StringsEqual reports whether a and b are the same text ignoring case,
// accents and whitespace. "Crème Brûlée" equals "creme brulee".
func StringsEqual(a, b string) bool {
	return NormalizeText(a) == NormalizeText(b)
}

// NumbersEqual reports whether a and b differ by at most tolerance times
// the larger magnitude. Two zeros are equal.
func NumbersEqual(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	magnitude := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= tolerance*magnitude
}

// ListsEqual reports whether two lists have the same length and pairwise
// equal items. Scalars compare by their text under StringsEqual; nested
// lists and sub-records compare field by field.
func ListsEqual(a, b []record.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !itemsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func itemsEqual(a, b record.Value) bool {
	switch {
	case a.Kind() == record.KindList || b.Kind() == record.KindList:
		return a.Kind() == b.Kind() && ListsEqual(a.Items(), b.Items())
	case a.Kind() == record.KindNested || b.Kind() == record.KindNested:
		return a.Kind() == b.Kind() && recordsEqual(a.Nested(), b.Nested())
	}
	return StringsEqual(a.String(), b.String())
}

func recordsEqual(a, b *record.Record) bool {
	fields := a.Fields()
	if len(fields) != b.Len() {
		return false
	}
	for _, name := range fields {
		if !b.Has(name) || !itemsEqual(a.Get(name), b.Get(name)) {
			return false
		}
	}
	return true
}

// PerHundred scales a per-serving amount to an amount per 100 g or 100 ml.
// A missing or non-positive serving size leaves the value unchanged, so
// callers scale a pair only when both sides have a serving size.
func PerHundred(value float64, servingSize *float64) float64 {
	if servingSize == nil || *servingSize <= 0 {
		return value
	}
	return value * constants.PerHundredGrams / *servingSize
}
