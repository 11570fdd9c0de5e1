package document

import (
	"fmt"
	"math"
)

// Lookup resolves path against doc. It reports false when any segment is
// missing, indexes out of range, or crosses a value of the wrong kind.
func Lookup(doc Value, path Path) (Value, bool) {
	cur := doc
	for _, seg := range path {
		if seg.isIndex {
			if cur.kind != KindList || seg.Index < 0 || seg.Index >= len(cur.list) {
				return Value{}, false
			}
			cur = cur.list[seg.Index]
			continue
		}
		next, ok := cur.Field(seg.Key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Has reports whether path resolves to a non-null value.
func Has(doc Value, path Path) bool {
	v, ok := Lookup(doc, path)
	return ok && !v.IsNull()
}

// Get returns the value at path converted to T. An absent or null value
// yields def[0] when a default is given and a missing-setting error
// otherwise. A present value that cannot be converted yields a type-mismatch
// error. Both errors carry the full path.
//
// Supported types: string, bool, float64, int, []string, []float64,
// [][]float64, Value and map[string]Value.
func Get[T any](doc Value, path Path, def ...T) (T, error) {
	var zero T
	v, ok := Lookup(doc, path)
	if !ok || v.IsNull() {
		if len(def) > 0 {
			return def[0], nil
		}
		return zero, Missing(path)
	}
	out, ok := convert[T](v)
	if !ok {
		return zero, &SettingError{
			Path: path.String(),
			Want: fmt.Sprintf("%T", zero),
			Got:  v.Kind().String(),
			Err:  ErrTypeMismatch,
		}
	}
	return out, nil
}

func convert[T any](v Value) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		s, ok := v.AsString()
		*p = s
		return out, ok
	case *bool:
		b, ok := v.AsBool()
		*p = b
		return out, ok
	case *float64:
		f, ok := v.AsNumber()
		*p = f
		return out, ok
	case *int:
		f, ok := v.AsNumber()
		if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return out, false
		}
		*p = int(f)
		return out, true
	case *[]string:
		s, ok := listOf(v, Value.AsString)
		*p = s
		return out, ok
	case *[]float64:
		f, ok := listOf(v, Value.AsNumber)
		*p = f
		return out, ok
	case *[][]float64:
		rows, ok := listOf(v, func(row Value) ([]float64, bool) {
			return listOf(row, Value.AsNumber)
		})
		*p = rows
		return out, ok
	case *Value:
		*p = v
		return out, true
	case *map[string]Value:
		if v.kind != KindMap {
			return out, false
		}
		m := make(map[string]Value, len(v.m))
		for k, f := range v.m {
			m[k] = f
		}
		*p = m
		return out, true
	}
	return out, false
}

func listOf[E any](v Value, as func(Value) (E, bool)) ([]E, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]E, len(v.list))
	for i, item := range v.list {
		e, ok := as(item)
		if !ok {
			return nil, false
		}
		out[i] = e
	}
	return out, true
}
