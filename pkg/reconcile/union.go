package reconcile

import "github.com/mieux-choisir/foodmap/pkg/record"

// UnionMerge builds the best-effort joined record of a matched pair. For
// every field present on either side, sub-records are merged recursively;
// otherwise the primary's value wins unless it is absent. Inputs are not
// modified.
func UnionMerge(primary, secondary *record.Record) *record.Record {
	out := primary.Clone()
	for _, name := range secondary.Fields() {
		a, b := primary.Get(name), secondary.Get(name)
		switch {
		case a.IsNull():
			out.Set(name, b.Clone())
		case a.Kind() == record.KindNested && b.Kind() == record.KindNested:
			out.Set(name, record.NestedValue(UnionMerge(a.Nested(), b.Nested())))
		}
	}
	return out
}
