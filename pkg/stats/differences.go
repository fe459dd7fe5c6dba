package stats

import (
	"context"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Bucket classifies how one numeric field moved between two versions of
// a record.
type Bucket string

// Buckets are exhaustive and mutually exclusive.
const (
	BucketCompleted      Bucket = "completed"
	BucketAboveThreshold Bucket = "modified_above_threshold"
	BucketBelowThreshold Bucket = "modified_below_threshold"
	BucketSame           Bucket = "same_value"
)

// Buckets lists every bucket in report order.
var Buckets = []Bucket{BucketCompleted, BucketAboveThreshold, BucketBelowThreshold, BucketSame}

// Classify places a before/after pair in its bucket. A value that
// disappears counts as the same value.
func Classify(before, after *float64, threshold float64) Bucket {
	switch {
	case before == nil && after != nil:
		return BucketCompleted
	case before == nil || after == nil:
		return BucketSame
	}
	delta := math.Abs(*before - *after)
	switch {
	case delta >= threshold && delta > 0:
		return BucketAboveThreshold
	case delta > 0:
		return BucketBelowThreshold
	default:
		return BucketSame
	}
}

// FieldDifference counts the buckets of one field path.
type FieldDifference struct {
	Path   string         `json:"path" yaml:"path"`
	Counts map[Bucket]int `json:"counts" yaml:"counts"`
}

// Total returns the number of compared values.
func (f FieldDifference) Total() int {
	total := 0
	for _, n := range f.Counts {
		total += n
	}
	return total
}

// Percent returns the share of bucket b, rounded to two decimals.
func (f FieldDifference) Percent(b Bucket) float64 {
	total := f.Total()
	if total == 0 {
		return 0
	}
	return Round2(float64(f.Counts[b]) * 100 / float64(total))
}

// DifferenceReport buckets numeric changes between records before and
// after a merge.
type DifferenceReport struct {
	Threshold float64           `json:"threshold" yaml:"threshold"`
	Compared  int               `json:"compared" yaml:"compared"`
	Fields    []FieldDifference `json:"fields" yaml:"fields"`
	// NotUpdated counts nested field groups absent from both versions.
	NotUpdated int `json:"not_updated" yaml:"not_updated"`
}

// Field returns the difference entry for path.
func (r *DifferenceReport) Field(path string) (FieldDifference, bool) {
	for _, f := range r.Fields {
		if f.Path == path {
			return f, true
		}
	}
	return FieldDifference{}, false
}

// DefaultScalarFields are compared as single numbers.
var DefaultScalarFields = []string{constants.FieldServingSize}

// DefaultNestedFields are compared sub-field by sub-field.
var DefaultNestedFields = []string{
	"nutriscore_data",
	"nutrition_facts.nutrition_facts_per_hundred_grams",
	"nutrition_facts.nutrition_facts_per_serving",
}

// excludedSubfield is a boolean flag stored among nutrient amounts.
const excludedSubfield = "is_beverage"

type diffOptions struct {
	threshold float64
	scalar    []string
	nested    []string
}

// Option configures CompareNumberDifferences.
type Option func(*diffOptions) error

// WithThreshold sets the delta splitting the two modified buckets.
func WithThreshold(threshold float64) Option {
	return func(o *diffOptions) error {
		if threshold < 0 || math.IsNaN(threshold) {
			return errors.NewValidationError("threshold", threshold, "must not be negative")
		}
		o.threshold = threshold
		return nil
	}
}

// WithFields replaces the compared fields.
func WithFields(scalar, nested []string) Option {
	return func(o *diffOptions) error {
		o.scalar, o.nested = scalar, nested
		return nil
	}
}

// CompareNumberDifferences reads the records before and after the merge,
// both sorted by id_match, and buckets every compared numeric field of
// each pair sharing an id_match. Records without a counterpart are
// ignored. Sub-field values that are not numbers are ignored.
func CompareNumberDifferences(ctx context.Context, before, after store.Cursor, opts ...Option) (*DifferenceReport, error) {
	o := &diffOptions{
		threshold: constants.DefaultThreshold,
		scalar:    DefaultScalarFields,
		nested:    DefaultNestedFields,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	report := &DifferenceReport{Threshold: o.threshold}
	counts := make(map[string]map[Bucket]int)
	add := func(path string, b Bucket) {
		if counts[path] == nil {
			counts[path] = make(map[Bucket]int, len(Buckets))
			for _, bucket := range Buckets {
				counts[path][bucket] = 0
			}
		}
		counts[path][b]++
	}

	next := func(c store.Cursor) *record.Record {
		if c.Next(ctx) {
			return c.Record()
		}
		return nil
	}
	rb, ra := next(before), next(after)
	for rb != nil && ra != nil {
		switch idb, ida := rb.IDMatch(), ra.IDMatch(); {
		case idb < ida:
			rb = next(before)
			continue
		case idb > ida:
			ra = next(after)
			continue
		}

		report.Compared++
		for _, field := range o.scalar {
			add(field, Classify(number(rb.Lookup(field)), number(ra.Lookup(field)), o.threshold))
		}
		for _, field := range o.nested {
			sb, sa := rb.Lookup(field).Nested(), ra.Lookup(field).Nested()
			if sb == nil && sa == nil {
				report.NotUpdated++
				continue
			}
			for _, sub := range unionFields(sb, sa) {
				if sub == excludedSubfield {
					continue
				}
				vb, va := sb.Get(sub), sa.Get(sub)
				if !numeric(vb) || !numeric(va) {
					continue
				}
				add(record.Join(field, sub), Classify(number(vb), number(va), o.threshold))
			}
		}
		rb, ra = next(before), next(after)
	}
	if err := errors.Join(before.Err(), after.Err(), ctx.Err()); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(counts))
	for path := range counts {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		report.Fields = append(report.Fields, FieldDifference{Path: path, Counts: counts[path]})
	}

	logging.FromContext(ctx).Info().
		Int("compared", report.Compared).
		Int("fields", len(report.Fields)).
		Int("not_updated", report.NotUpdated).
		Msg("Numeric differences computed")
	return report, nil
}

func number(v record.Value) *float64 {
	if n, ok := v.Num(); ok {
		return &n
	}
	return nil
}

// numeric accepts absent values and numbers.
func numeric(v record.Value) bool {
	return v.IsNull() || v.Kind() == record.KindNumber
}

func unionFields(a, b *record.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range []*record.Record{a, b} {
		for _, name := range r.Fields() {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// WriteText renders the report as plain text.
func (r *DifferenceReport) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("=== Numeric Differences (threshold %s) ===\n", strconv.FormatFloat(r.Threshold, 'f', -1, 64))
	ew.printf("Compared products: %d\n", r.Compared)
	ew.printf("Not updated: %d\n", r.NotUpdated)
	for _, f := range r.Fields {
		ew.printf("%s\n", f.Path)
		ew.printf("\tCompleted: %d [%s%%]\n", f.Counts[BucketCompleted], formatFloat(f.Percent(BucketCompleted)))
		ew.printf("\tAbove threshold: %d [%s%%]\n", f.Counts[BucketAboveThreshold], formatFloat(f.Percent(BucketAboveThreshold)))
		ew.printf("\tBelow threshold: %d [%s%%]\n", f.Counts[BucketBelowThreshold], formatFloat(f.Percent(BucketBelowThreshold)))
		ew.printf("\tSame value: %d [%s%%]\n", f.Counts[BucketSame], formatFloat(f.Percent(BucketSame)))
	}
	return ew.err
}

// Rows returns the report as table rows.
func (r *DifferenceReport) Rows() (headers []string, rows [][]string) {
	headers = []string{"Field", "Completed", "Above", "Below", "Same", "Total"}
	for _, f := range r.Fields {
		row := []string{f.Path}
		for _, b := range Buckets {
			row = append(row, strconv.Itoa(f.Counts[b])+" ("+formatFloat(f.Percent(b))+"%)")
		}
		row = append(row, strconv.Itoa(f.Total()))
		rows = append(rows, row)
	}
	return headers, rows
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
