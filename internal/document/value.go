// Package document provides the immutable settings tree that drives a
// resolution pass, together with typed, path-addressed accessors.
//
// A document is a tagged union of null, boolean, number, string, list and
// map values. It is loaded from JSON, TOML or YAML files (optionally split
// across several files through $(file) includes) and is never mutated after
// loading; every helper returns a new Value.
package document

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull   Kind = iota // absent or explicit null
	KindBool               // true/false
	KindNumber             // float64
	KindString             // UTF-8 text
	KindList               // ordered sequence
	KindMap                // string-keyed mapping
)

// String returns the lower-case kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a settings document. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	list []Value
	m    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// List builds a list value from its elements.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Map builds a map value. The input map is copied.
func Map(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// Items returns a copy of the elements of a list value, or nil.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	cp := make([]Value, len(v.list))
	copy(cp, v.list)
	return cp
}

// Field returns the value stored under key in a map value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.m[key]
	return f, ok
}

// Keys returns the keys of a map value in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of list elements or map entries.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// With returns a copy of the map value v with key set to f. A non-map v is
// treated as an empty map.
func (v Value) With(key string, f Value) Value {
	out := make(map[string]Value, len(v.m)+1)
	if v.kind == KindMap {
		for k, existing := range v.m {
			out[k] = existing
		}
	}
	out[key] = f
	return Value{kind: KindMap, m: out}
}

// Equal reports deep equality. NaN numbers compare equal to each other so
// that undefined kernel offsets round-trip.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case KindString:
		return v.str == o.str
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, fv := range v.m {
			ov, ok := o.m[k]
			if !ok || !fv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// From converts decoded Go data (as produced by encoding/json, go-toml or
// yaml) into a Value.
func From(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %q: %v", ErrUnsupportedValue, t.String(), err)
		}
		return Number(f), nil
	case time.Time:
		return String(t.UTC().Format(time.RFC3339Nano)), nil
	case fmt.Stringer:
		// go-toml local dates and times.
		return String(t.String()), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			iv, err := From(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = iv
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			fv, err := From(e)
			if err != nil {
				return Value{}, err
			}
			fields[k] = fv
		}
		return Value{kind: KindMap, m: fields}, nil
	case map[any]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			fv, err := From(e)
			if err != nil {
				return Value{}, err
			}
			fields[fmt.Sprint(k)] = fv
		}
		return Value{kind: KindMap, m: fields}, nil
	}
	return fromReflect(x)
}

// fromReflect handles typed slices and maps such as []string or
// map[string]float64 built by callers re-emitting settings.
func fromReflect(x any) (Value, error) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			iv, err := From(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			items[i] = iv
		}
		return Value{kind: KindList, list: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			fv, err := From(iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}
			fields[iter.Key().String()] = fv
		}
		return Value{kind: KindMap, m: fields}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Number(float64(rv.Convert(reflect.TypeOf(int64(0))).Int())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
}

// Interface converts v back into plain Go data. Integral numbers become
// int64 so that TOML and YAML emit them without a fractional part.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
			return int64(v.num)
		}
		return v.num
	case KindString:
		return v.str
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON emits v as JSON with map keys sorted.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
