// Package stats reports what a merge run changed: which fields were
// completed or overwritten and how numeric values moved.
package stats

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/reconcile"
)

// Round2 rounds to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// FieldStat is one field path of a merge summary. Percent is nil when
// percentages are not available.
type FieldStat struct {
	Path    string   `json:"path" yaml:"path"`
	Count   int      `json:"count" yaml:"count"`
	Percent *float64 `json:"percent,omitempty" yaml:"percent,omitempty"`
}

// Summary reports overwritten and completed fields of a merge run.
type Summary struct {
	TotalA               int         `json:"total_a" yaml:"total_a"`
	TotalB               int         `json:"total_b" yaml:"total_b"`
	PercentagesAvailable bool        `json:"percentages_available" yaml:"percentages_available"`
	Overwritten          []FieldStat `json:"overwritten" yaml:"overwritten"`
	Completed            []FieldStat `json:"completed" yaml:"completed"`
	Skipped              int         `json:"skipped" yaml:"skipped"`
	SkippedPercent       *float64    `json:"skipped_percent,omitempty" yaml:"skipped_percent,omitempty"`
	Warnings             []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Summarize builds the merge summary. Percentages are relative to totalA
// and are only computed when both matched sets have the same size.
// skipped counts the unmergeable pairs.
func Summarize(ctx context.Context, overwritten, completed reconcile.FieldCounter, skipped, totalA, totalB int) *Summary {
	s := &Summary{
		TotalA:               totalA,
		TotalB:               totalB,
		PercentagesAvailable: totalA == totalB && totalA > 0,
		Skipped:              skipped,
	}

	switch {
	case totalA != totalB:
		msg := fmt.Sprintf("Number of products in matched collections does not match (%d and %d), percentages are omitted", totalA, totalB)
		s.Warnings = append(s.Warnings, msg)
		logging.FromContext(ctx).Warn().Int("total_a", totalA).Int("total_b", totalB).Msg("Matched collection sizes differ, percentages are omitted")
	case totalA == 0:
		s.Warnings = append(s.Warnings, "No matched products, percentages are omitted")
	}

	s.Overwritten = s.fieldStats(overwritten)
	s.Completed = s.fieldStats(completed)
	s.SkippedPercent = s.percent(skipped)
	return s
}

func (s *Summary) fieldStats(c reconcile.FieldCounter) []FieldStat {
	common := c.MostCommon()
	out := make([]FieldStat, len(common))
	for i, fc := range common {
		out[i] = FieldStat{Path: fc.Path, Count: fc.Count, Percent: s.percent(fc.Count)}
	}
	return out
}

func (s *Summary) percent(count int) *float64 {
	if !s.PercentagesAvailable {
		return nil
	}
	p := Round2(float64(count) * 100 / float64(s.TotalA))
	return &p
}

// WriteText renders the summary as plain text.
func (s *Summary) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("=== Merge Summary ===\n")
	for _, warning := range s.Warnings {
		ew.printf("WARNING: %s\n", warning)
	}
	ew.printf("Most overwritten fields:\n")
	for _, f := range s.Overwritten {
		ew.printf("  %s: %d times%s\n", f.Path, f.Count, bracket(f.Percent))
	}
	ew.printf("Most completed fields:\n")
	for _, f := range s.Completed {
		ew.printf("  %s: %d times%s\n", f.Path, f.Count, bracket(f.Percent))
	}
	ew.printf("Total skipped products: %d%s\n", s.Skipped, bracket(s.SkippedPercent))
	return ew.err
}

// Rows returns the summary as table rows.
func (s *Summary) Rows() (headers []string, rows [][]string) {
	headers = []string{"Change", "Field", "Count", "Percent"}
	for _, f := range s.Overwritten {
		rows = append(rows, []string{"overwritten", f.Path, strconv.Itoa(f.Count), formatPercent(f.Percent)})
	}
	for _, f := range s.Completed {
		rows = append(rows, []string{"completed", f.Path, strconv.Itoa(f.Count), formatPercent(f.Percent)})
	}
	rows = append(rows, []string{"skipped", "", strconv.Itoa(s.Skipped), formatPercent(s.SkippedPercent)})
	return headers, rows
}

func formatPercent(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64) + "%"
}

func bracket(p *float64) string {
	if p == nil {
		return ""
	}
	return " [" + formatPercent(p) + "]"
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
