package categories

import (
	"strings"
	"unicode"

	"github.com/mieux-choisir/foodmap/pkg/constants"
)

// ForeignLabelToTerm shapes a foreign category label like a canonical
// term: "Cookies & Biscuits" becomes "en:cookies-biscuits". Commas are
// removed, and runs of whitespace or any of -&/()' collapse to one hyphen.
// The taxonomy is not consulted.
func ForeignLabelToTerm(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")

	var b strings.Builder
	b.Grow(len(s) + len(constants.CanonicalPrefix))
	b.WriteString(constants.CanonicalPrefix)
	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune("-&/()'", r) {
			if !inRun {
				b.WriteByte('-')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), "-")
}
