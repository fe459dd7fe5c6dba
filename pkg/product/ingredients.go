package product

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	title = cases.Title(language.English)

	containsOf = regexp.MustCompile(`(?i)contains.*?of`)
	// An ingredient runs up to the next comma, keeping one trailing
	// parenthesised or bracketed sub-list attached to it.
	ingredientItem = regexp.MustCompile(`[^,()\[\]]+(?:\([^()]*\))?(?:\[[^\[\]]*\])?`)
	labelPrefix    = regexp.MustCompile(`^.*:(.*)$`)
)

// SegmentIngredients splits a free-text ingredient statement into an
// ordered, de-duplicated list of title-cased ingredient names. Leading
// "Contains:" style labels are removed and sub-lists in parentheses or
// brackets stay attached to their ingredient.
func SegmentIngredients(text string) []string {
	text = title.String(text)
	text = containsOf.ReplaceAllString(text, "contains of")
	text = strings.ReplaceAll(text, ".", ",")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ",")

	var out []string
	seen := make(map[string]struct{})
	for _, item := range ingredientItem.FindAllString(text, -1) {
		item = strings.TrimSpace(item)
		if m := labelPrefix.FindStringSubmatch(item); m != nil {
			item = strings.TrimSpace(m[1])
		}
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
