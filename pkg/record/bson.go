package record

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time interface checks.
var (
	_ bson.Marshaler   = (*Record)(nil)
	_ bson.Unmarshaler = (*Record)(nil)
)

// ValueOf converts plain Go or BSON-decoded data to a Value.
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Value{}
	case Value:
		return v
	case *Record:
		return NestedValue(v)
	case string:
		return StringValue(v)
	case bool:
		return BoolValue(v)
	case int:
		return NumberValue(float64(v))
	case int32:
		return NumberValue(float64(v))
	case int64:
		return NumberValue(float64(v))
	case float32:
		return NumberValue(float64(v))
	case float64:
		return NumberValue(v)
	case *string:
		if v == nil {
			return Value{}
		}
		return StringValue(*v)
	case *float64:
		if v == nil {
			return Value{}
		}
		return NumberValue(*v)
	case *bool:
		if v == nil {
			return Value{}
		}
		return BoolValue(*v)
	case time.Time:
		return TimeValue(v)
	case primitive.DateTime:
		return TimeValue(v.Time())
	case primitive.Decimal128:
		n, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return Value{}
		}
		return NumberValue(n)
	case primitive.ObjectID:
		return StringValue(v.Hex())
	case primitive.Null, primitive.Undefined:
		return Value{}
	case primitive.A:
		return listOf([]any(v))
	case []any:
		return listOf(v)
	case []string:
		items := make([]Value, 0, len(v))
		for _, s := range v {
			items = append(items, StringValue(s))
		}
		return ListValue(items...)
	case []float64:
		items := make([]Value, 0, len(v))
		for _, n := range v {
			items = append(items, NumberValue(n))
		}
		return ListValue(items...)
	case primitive.D:
		return NestedValue(fromD(v))
	case primitive.M:
		return NestedValue(FromMap(v))
	case map[string]any:
		return NestedValue(FromMap(v))
	default:
		return StringValue(fmt.Sprint(v))
	}
}

func listOf(xs []any) Value {
	items := make([]Value, 0, len(xs))
	for _, x := range xs {
		items = append(items, ValueOf(x))
	}
	return ListValue(items...)
}

func fromD(d primitive.D) *Record {
	r := New()
	for _, e := range d {
		if e.Key == "_id" {
			continue
		}
		r.Set(e.Key, ValueOf(e.Value))
	}
	return r
}

// D converts the record to an ordered BSON document with keys ascending.
func (r *Record) D() bson.D {
	names := r.Fields()
	d := make(bson.D, 0, len(names))
	for _, name := range names {
		d = append(d, bson.E{Key: name, Value: toBSON(r.fields[name])})
	}
	return d
}

func toBSON(v Value) any {
	switch v.kind {
	case KindList:
		out := make(bson.A, len(v.items))
		for i, item := range v.items {
			out[i] = toBSON(item)
		}
		return out
	case KindNested:
		return v.rec.D()
	case KindTime:
		return primitive.NewDateTimeFromTime(v.ts)
	default:
		return v.Interface()
	}
}

// MarshalBSON implements bson.Marshaler.
func (r *Record) MarshalBSON() ([]byte, error) {
	return bson.Marshal(r.D())
}

// UnmarshalBSON implements bson.Unmarshaler.
func (r *Record) UnmarshalBSON(data []byte) error {
	var d bson.D
	if err := bson.Unmarshal(data, &d); err != nil {
		return err
	}
	r.fields = fromD(d).fields
	return nil
}

// FromBSON decodes a raw BSON document.
func FromBSON(data []byte) (*Record, error) {
	r := New()
	if err := r.UnmarshalBSON(data); err != nil {
		return nil, err
	}
	return r, nil
}

// FromExtJSON decodes one relaxed or canonical extended JSON document.
func FromExtJSON(data []byte) (*Record, error) {
	var d bson.D
	if err := bson.UnmarshalExtJSON(data, false, &d); err != nil {
		return nil, err
	}
	return fromD(d), nil
}
