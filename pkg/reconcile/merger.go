package reconcile

import (
	"github.com/mieux-choisir/foodmap/internal/matcher"
	"github.com/mieux-choisir/foodmap/internal/utils/ptr"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/product"
	"github.com/mieux-choisir/foodmap/pkg/provenance"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Merger completes a primary record with the fields of its secondary
// match. It holds no mutable state and is safe for concurrent use.
type Merger struct {
	skip        *matcher.Set
	perServing  *matcher.Set
	tolerance   float64
	deriveLists bool
}

// New creates a Merger.
func New(opts ...Option) (*Merger, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	skip, err := matcher.NewSet(o.skipFields...)
	if err != nil {
		return nil, errors.WrapValidation("skip_fields", err)
	}
	perServing, err := matcher.NewSet(o.perServingFields...)
	if err != nil {
		return nil, errors.WrapValidation("per_serving_fields", err)
	}
	return &Merger{
		skip:        skip,
		perServing:  perServing,
		tolerance:   o.tolerance,
		deriveLists: o.deriveLists,
	}, nil
}

// SkipFields returns the skip-list patterns.
func (m *Merger) SkipFields() []string { return m.skip.Patterns() }

// Tolerance returns the relative numeric tolerance.
func (m *Merger) Tolerance() float64 { return m.tolerance }

// Conflict is a string field on which the two catalogs disagree.
type Conflict struct {
	Path      string       `json:"path" yaml:"path"`
	Primary   record.Value `json:"-" yaml:"-"`
	Secondary record.Value `json:"-" yaml:"-"`
}

// Result is the outcome of merging one matched pair.
type Result struct {
	IDMatch     string
	Record      *record.Record
	Completed   FieldCounter
	Overwritten FieldCounter
	Conflicts   []Conflict
	Mergeable   bool
	Provenance  []provenance.Provenance
}

// Changed reports whether the merge completed or overwrote any field.
func (r *Result) Changed() bool {
	return r.Completed.Total()+r.Overwritten.Total() > 0
}

// Err returns a MergeError naming the conflicting paths, or nil when the
// pair is mergeable.
func (r *Result) Err() error {
	if r.Mergeable {
		return nil
	}
	paths := make([]string, len(r.Conflicts))
	for i, c := range r.Conflicts {
		paths[i] = c.Path
	}
	return errors.NewMergeError(r.IDMatch, paths, errors.ErrUnmergeable)
}

// servings carries each side's serving size for per-serving scaling.
type servings struct {
	primary, secondary *float64
}

// scalable reports whether both sides have a positive serving size.
// Otherwise per-serving amounts are compared as they are.
func (s servings) scalable() bool {
	return s.primary != nil && *s.primary > 0 && s.secondary != nil && *s.secondary > 0
}

func servingOf(r *record.Record) *float64 {
	if v, ok := r.Float(constants.FieldServingSize); ok {
		return ptr.Float64(v)
	}
	return nil
}

// Merge walks the union of both records' fields. Every compared leaf is
// same, completed or overwritten:
//   - completed: only the secondary has a value, which is adopted
//   - overwritten: both differ; numbers, lists and other scalars adopt the
//     secondary, strings keep the primary and make the pair unmergeable
//
// Skip-listed paths keep the primary value and are not counted. Inputs
// are not modified.
func (m *Merger) Merge(primary, secondary *record.Record) *Result {
	res := &Result{
		IDMatch:   primary.IDMatch(),
		Mergeable: true,
	}
	if res.IDMatch == "" {
		res.IDMatch = secondary.IDMatch()
	}
	s := servings{primary: servingOf(primary), secondary: servingOf(secondary)}
	res.Record = m.mergeRecords("", primary, secondary, s, res)
	if m.deriveLists {
		m.deriveIngredients(primary, secondary, res)
	}
	return res
}

func (m *Merger) mergeRecords(prefix string, a, b *record.Record, s servings, res *Result) *record.Record {
	out := record.New()
	for _, name := range unionFields(a, b) {
		path := record.Join(prefix, name)
		out.Set(name, m.mergeField(path, a.Get(name), b.Get(name), s, res))
	}
	return out
}

func (m *Merger) mergeField(path string, a, b record.Value, s servings, res *Result) record.Value {
	if m.skip.Match(path) {
		if !a.IsNull() {
			res.track(path, provenance.SourcePrimary, provenance.OutcomeSkipped, a, record.Value{})
		}
		return a.Clone()
	}

	switch {
	case a.IsNull() && b.IsNull():
		return record.Value{}
	case b.IsNull():
		res.track(path, provenance.SourcePrimary, provenance.OutcomeSame, a, record.Value{})
		return a.Clone()
	case a.IsNull():
		res.Completed.Add(path)
		res.track(path, provenance.SourceSecondary, provenance.OutcomeCompleted, b, record.Value{})
		return b.Clone()
	case a.Kind() == record.KindNested && b.Kind() == record.KindNested:
		return record.NestedValue(m.mergeRecords(path, a.Nested(), b.Nested(), s, res))
	case a.Kind() != b.Kind():
		return res.overwrite(path, a, b, "type mismatch")
	}

	switch a.Kind() {
	case record.KindString:
		x, _ := a.Str()
		y, _ := b.Str()
		if StringsEqual(x, y) {
			break
		}
		res.Overwritten.Add(path)
		res.Conflicts = append(res.Conflicts, Conflict{Path: path, Primary: a, Secondary: b})
		res.Mergeable = false
		res.track(path, provenance.SourcePrimary, provenance.OutcomeConflict, a, b)
		return a.Clone()
	case record.KindNumber:
		x, _ := a.Num()
		y, _ := b.Num()
		if m.perServing.Match(path) && s.scalable() {
			x, y = PerHundred(x, s.primary), PerHundred(y, s.secondary)
		}
		if !NumbersEqual(x, y, m.tolerance) {
			return res.overwrite(path, a, b, "")
		}
	case record.KindList:
		if !ListsEqual(a.Items(), b.Items()) {
			return res.overwrite(path, a, b, "")
		}
	default:
		if !a.Equal(b) {
			return res.overwrite(path, a, b, "")
		}
	}

	res.track(path, provenance.SourceBoth, provenance.OutcomeSame, a, record.Value{})
	return a.Clone()
}

// deriveIngredients segments a completed ingredients text into the list
// when neither side carried one.
func (m *Merger) deriveIngredients(primary, secondary *record.Record, res *Result) {
	if m.skip.Match(constants.FieldIngredientsList) {
		return
	}
	text := res.Record.Text(constants.FieldIngredientsText)
	if text == "" || !primary.Lookup(constants.FieldIngredientsText).IsNull() {
		return
	}
	if !primary.Lookup(constants.FieldIngredientsList).IsNull() ||
		!secondary.Lookup(constants.FieldIngredientsList).IsNull() {
		return
	}
	segments := product.SegmentIngredients(text)
	if len(segments) == 0 {
		return
	}
	items := make([]record.Value, len(segments))
	for i, seg := range segments {
		items[i] = record.StringValue(seg)
	}
	list := record.ListValue(items...)
	res.Record.SetPath(constants.FieldIngredientsList, list)
	res.Completed.Add(constants.FieldIngredientsList)
	res.track(constants.FieldIngredientsList, provenance.SourceSecondary, provenance.OutcomeDerived, list, record.Value{})
}

func (r *Result) overwrite(path string, a, b record.Value, reason string) record.Value {
	r.Overwritten.Add(path)
	r.Provenance = append(r.Provenance, provenance.Provenance{
		Field:    path,
		Source:   provenance.SourceSecondary,
		Outcome:  provenance.OutcomeOverwritten,
		Value:    b.Interface(),
		Previous: a.Interface(),
		Reason:   reason,
	})
	return b.Clone()
}

func (r *Result) track(path string, source provenance.Source, outcome provenance.Outcome, v, previous record.Value) {
	r.Provenance = append(r.Provenance, provenance.Provenance{
		Field:    path,
		Source:   source,
		Outcome:  outcome,
		Value:    v.Interface(),
		Previous: previous.Interface(),
	})
}

// unionFields returns the field names present on either side, ascending.
func unionFields(a, b *record.Record) []string {
	fa, fb := a.Fields(), b.Fields()
	out := make([]string, 0, len(fa)+len(fb))
	i, j := 0, 0
	for i < len(fa) || j < len(fb) {
		switch {
		case j == len(fb) || (i < len(fa) && fa[i] < fb[j]):
			out = append(out, fa[i])
			i++
		case i == len(fa) || fb[j] < fa[i]:
			out = append(out, fb[j])
			j++
		default:
			out = append(out, fa[i])
			i++
			j++
		}
	}
	return out
}
