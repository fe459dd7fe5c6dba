// Package matcher matches record field paths against glob and regex
// patterns. A pattern that matches a path also covers every sub-path
// below it, so "nutriscore_data" skips "nutriscore_data.grade".
package matcher

import (
	"path"
	"regexp"
	"strings"

	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Syntax is the pattern language of a Pattern.
type Syntax int

// Pattern syntaxes.
const (
	Glob  Syntax = iota // path.Match syntax, segments separated by dots
	Regex               // anchored regular expression
	Auto                // Regex when the pattern uses regex-only syntax
)

func (s Syntax) String() string {
	switch s {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	}
	return "unknown"
}

// regexOnly holds tokens that never appear in field names or globs.
var regexOnly = []string{`^`, `$`, `\d`, `\w`, `\s`, `(`, `)`, `{`, `}`, `+`, `|`}

func detect(expr string) Syntax {
	for _, tok := range regexOnly {
		if strings.Contains(expr, tok) {
			return Regex
		}
	}
	return Glob
}

// Pattern is one compiled field-path pattern.
type Pattern struct {
	expr   string
	syntax Syntax
	re     *regexp.Regexp
}

// Compile parses expr. Regex patterns are anchored at both ends.
func Compile(syntax Syntax, expr string) (*Pattern, error) {
	if syntax == Auto {
		syntax = detect(expr)
	}
	p := &Pattern{expr: expr, syntax: syntax}

	switch syntax {
	case Glob:
		if _, err := path.Match(expr, ""); err != nil {
			return nil, errors.WrapValidation("glob pattern", err)
		}
	case Regex:
		re, err := regexp.Compile("^(?:" + strings.TrimSuffix(strings.TrimPrefix(expr, "^"), "$") + ")$")
		if err != nil {
			return nil, errors.WrapValidation("regex pattern", err)
		}
		p.re = re
	default:
		return nil, errors.NewValidationError("pattern syntax", syntax.String(), "must be glob, regex or auto")
	}
	return p, nil
}

// MustCompile is Compile for patterns known to be valid.
func MustCompile(syntax Syntax, expr string) *Pattern {
	p, err := Compile(syntax, expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Pattern) String() string { return p.expr }

// Syntax returns the resolved syntax, never Auto.
func (p *Pattern) Syntax() Syntax { return p.syntax }

// Match reports whether fieldPath or one of its ancestors matches.
func (p *Pattern) Match(fieldPath string) bool {
	for cur := fieldPath; cur != ""; cur = parent(cur) {
		if p.matchExact(cur) {
			return true
		}
	}
	return false
}

func (p *Pattern) matchExact(fieldPath string) bool {
	if p.re != nil {
		return p.re.MatchString(fieldPath)
	}
	ok, _ := path.Match(p.expr, fieldPath)
	return ok
}

func parent(fieldPath string) string {
	i := strings.LastIndex(fieldPath, record.PathSeparator)
	if i < 0 {
		return ""
	}
	return fieldPath[:i]
}

// Set is a list of patterns compiled with Auto. A nil Set matches nothing.
type Set struct {
	patterns []*Pattern
}

// NewSet compiles exprs.
func NewSet(exprs ...string) (*Set, error) {
	s := &Set{patterns: make([]*Pattern, 0, len(exprs))}
	for _, expr := range exprs {
		p, err := Compile(Auto, expr)
		if err != nil {
			return nil, err
		}
		s.patterns = append(s.patterns, p)
	}
	return s, nil
}

// Match reports whether any pattern matches fieldPath.
func (s *Set) Match(fieldPath string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.patterns {
		if p.Match(fieldPath) {
			return true
		}
	}
	return false
}

// Patterns returns the source expressions in order.
func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.expr
	}
	return out
}
