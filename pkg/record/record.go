// Package record provides the schema-less document model shared by the
// matching, merge and reporting stages.
//
// A Record maps field names to tagged Values. Nested sub-records are
// addressed with dot paths such as
// "nutrition_facts.nutrition_facts_per_serving.fat_serving". Empty
// strings, empty lists and empty sub-records are stored as absent, so a
// field is either meaningfully present or missing.
package record

import (
	"sort"
	"strings"
	"time"

	"github.com/mieux-choisir/foodmap/pkg/constants"
)

// PathSeparator separates the segments of a field path.
const PathSeparator = "."

// Join appends field to a dot path prefix.
func Join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + PathSeparator + field
}

// Record is one product document. The zero value is not usable; call New.
// A nil *Record behaves as an empty, read-only record.
type Record struct {
	fields map[string]Value
}

// New returns an empty record.
func New() *Record {
	return &Record{fields: make(map[string]Value)}
}

// FromMap builds a record from plain or BSON-decoded Go data.
// The store-assigned "_id" key is not carried over.
func FromMap(m map[string]any) *Record {
	r := New()
	for k, v := range m {
		if k == "_id" {
			continue
		}
		r.Set(k, ValueOf(v))
	}
	return r
}

// Len returns the number of present fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Get returns the named top-level field or null.
func (r *Record) Get(name string) Value {
	if r == nil {
		return Value{}
	}
	return r.fields[name]
}

// Has reports whether the named top-level field is present.
func (r *Record) Has(name string) bool {
	return !r.Get(name).IsNull()
}

// Set stores a top-level field. Setting null deletes the field.
func (r *Record) Set(name string, v Value) {
	if v.IsNull() {
		delete(r.fields, name)
		return
	}
	r.fields[name] = v
}

// Delete removes a top-level field.
func (r *Record) Delete(name string) {
	delete(r.fields, name)
}

// Fields returns the present field names in ascending order.
func (r *Record) Fields() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	out := New()
	if r == nil {
		return out
	}
	for name, v := range r.fields {
		out.fields[name] = v.clone()
	}
	return out
}

// Lookup resolves a dot path. Missing segments yield null.
func (r *Record) Lookup(path string) Value {
	cur := r
	segments := strings.Split(path, PathSeparator)
	for i, seg := range segments {
		v := cur.Get(seg)
		if i == len(segments)-1 {
			return v
		}
		cur = v.Nested()
		if cur == nil {
			return Value{}
		}
	}
	return Value{}
}

// SetPath stores a value at a dot path, creating sub-records as needed.
// Setting null removes the leaf and prunes sub-records left empty.
func (r *Record) SetPath(path string, v Value) {
	head, rest, nested := strings.Cut(path, PathSeparator)
	if !nested {
		r.Set(head, v)
		return
	}
	child := r.Get(head).Nested()
	if child == nil {
		if v.IsNull() {
			return
		}
		child = New()
	}
	child.SetPath(rest, v)
	r.Set(head, NestedValue(child))
}

// Paths returns the dot paths of every non-nested leaf, ascending.
func (r *Record) Paths() []string {
	var out []string
	r.walk("", func(path string, _ Value) {
		out = append(out, path)
	})
	return out
}

func (r *Record) walk(prefix string, fn func(path string, v Value)) {
	for _, name := range r.Fields() {
		v := r.fields[name]
		path := Join(prefix, name)
		if sub := v.Nested(); sub != nil {
			sub.walk(path, fn)
			continue
		}
		fn(path, v)
	}
}

// Equal reports deep equality of two records.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	for _, name := range r.Fields() {
		if !r.fields[name].Equal(o.Get(name)) {
			return false
		}
	}
	return true
}

// IDMatch returns the cross-catalog join key, or "" when absent.
func (r *Record) IDMatch() string {
	return r.Text(constants.FieldIDMatch)
}

// Text returns the string at path, or "" when absent or not a string.
func (r *Record) Text(path string) string {
	s, _ := r.Lookup(path).Str()
	return s
}

// Float returns the number at path.
func (r *Record) Float(path string) (float64, bool) {
	return r.Lookup(path).Num()
}

// Timestamp returns the time at path, or the zero time when absent.
func (r *Record) Timestamp(path string) time.Time {
	t, _ := r.Lookup(path).Time()
	return t
}

// ToMap converts the record to plain Go data.
func (r *Record) ToMap() map[string]any {
	out := make(map[string]any, r.Len())
	for _, name := range r.Fields() {
		out[name] = r.fields[name].Interface()
	}
	return out
}

// SortByIDMatch orders records by ascending id_match, keeping the input
// order of records sharing a key.
func SortByIDMatch(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].IDMatch() < records[j].IDMatch()
	})
}
