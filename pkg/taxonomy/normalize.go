package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mieux-choisir/foodmap/pkg/constants"
)

var lower = cases.Lower(language.Und)

// StripDiacritics removes combining marks: "Sablés" becomes "Sables".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeTerm converts an English taxonomy label to canonical form:
// lower-case, diacritics stripped, whitespace, apostrophes and periods
// replaced by single hyphens, prefixed with "en:". An existing "en:"
// prefix is kept, not doubled.
func NormalizeTerm(text string) string {
	s := strings.TrimSpace(text)
	if len(s) >= len(constants.CanonicalPrefix) && strings.EqualFold(s[:len(constants.CanonicalPrefix)], constants.CanonicalPrefix) {
		s = strings.TrimSpace(s[len(constants.CanonicalPrefix):])
	}
	s = StripDiacritics(lower.String(s))

	var b strings.Builder
	b.Grow(len(s) + len(constants.CanonicalPrefix))
	b.WriteString(constants.CanonicalPrefix)
	pendingHyphen := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' || r == '’' || r == '.' || r == '-' {
			pendingHyphen = true
			continue
		}
		if pendingHyphen && b.Len() > len(constants.CanonicalPrefix) {
			b.WriteByte('-')
		}
		pendingHyphen = false
		b.WriteRune(r)
	}
	return b.String()
}

// splitLabels splits a comma-separated language line value.
func splitLabels(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
