package record

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindList
	KindNested
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	case KindNested:
		return "nested"
	default:
		return "unknown"
	}
}

// IsScalar reports whether the kind holds a single non-null value.
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindNumber || k == KindBool || k == KindTime
}

// Value is a tagged variant holding one field of a Record.
// The zero Value is null.
type Value struct {
	kind  Kind
	str   string
	num   float64
	flag  bool
	ts    time.Time
	items []Value
	rec   *Record
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// StringValue returns a string value. The empty string is null.
func StringValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindString, str: s}
}

// NumberValue returns a numeric value.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// TimeValue returns a timestamp value in UTC. The zero time is null.
func TimeValue(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{kind: KindTime, ts: t.UTC()}
}

// ListValue returns a list value. An empty list is null.
func ListValue(items ...Value) Value {
	if len(items) == 0 {
		return Value{}
	}
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, items: cp}
}

// NestedValue wraps a sub-record. A nil or empty record is null.
func NestedValue(r *Record) Value {
	if r == nil || r.Len() == 0 {
		return Value{}
	}
	return Value{kind: KindNested, rec: r}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Time returns the timestamp payload.
func (v Value) Time() (time.Time, bool) { return v.ts, v.kind == KindTime }

// Items returns the list elements, or nil for non-list values.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.items
}

// Nested returns the sub-record, or nil for non-nested values.
func (v Value) Nested() *Record {
	if v.kind != KindNested {
		return nil
	}
	return v.rec
}

// String renders the value as text. Lists are comma separated.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindTime:
		return v.ts.Format(time.RFC3339)
	case KindList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	case KindNested:
		return "{" + strings.Join(v.rec.Fields(), ", ") + "}"
	default:
		return ""
	}
}

// Equal reports exact equality, recursing into lists and sub-records.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	case KindTime:
		return v.ts.Equal(o.ts)
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindNested:
		return v.rec.Equal(o.rec)
	}
	return false
}

// Clone returns a deep copy of lists and sub-records.
func (v Value) Clone() Value { return v.clone() }

func (v Value) clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.clone()
		}
		return Value{kind: KindList, items: items}
	case KindNested:
		return Value{kind: KindNested, rec: v.rec.Clone()}
	default:
		return v
	}
}

// Interface converts the value to plain Go data: nil, string, float64,
// bool, time.Time, []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindTime:
		return v.ts
	case KindList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindNested:
		return v.rec.ToMap()
	default:
		return nil
	}
}
