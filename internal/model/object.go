package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rpattn/fishql/internal/dates"
)

// Object is the plain JSON-serializable shape exchanged with the backend and
// written to local storage.
//
// Absent values are never written: a key is either present with a value or
// missing. Readers treat a missing key, a null and a wrongly typed value the
// same way.
type Object map[string]any

// AsObjectOptions controls serialization.
type AsObjectOptions struct {
	// Minify collapses nested references to flat ids.
	Minify bool
	// KeepTypename writes the __typename discriminator.
	KeepTypename bool
	// KeepEntityName keeps referential entityName in minified output.
	KeepEntityName bool
	// DropLocalID omits negative (local only) ids.
	DropLocalID bool
}

// ParseObject decodes a JSON document. Numbers are kept as json.Number so
// large ids survive the trip.
func ParseObject(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj Object
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	return obj, nil
}

// Has reports whether key holds a non-nil value.
func (o Object) Has(key string) bool {
	if o == nil {
		return false
	}
	v, ok := o[key]
	return ok && v != nil
}

// Int reads an integer value.
func (o Object) Int(key string) *int {
	if o == nil {
		return nil
	}
	if n, ok := toInt(o[key]); ok {
		return &n
	}
	return nil
}

// Ints reads an array of integers, skipping entries that are not integers.
func (o Object) Ints(key string) []int {
	if o == nil {
		return nil
	}
	var out []int
	switch typed := o[key].(type) {
	case []int:
		out = append(out, typed...)
	case []any:
		for _, v := range typed {
			if n, ok := toInt(v); ok {
				out = append(out, n)
			}
		}
	case []float64:
		for _, v := range typed {
			if n, ok := toInt(v); ok {
				out = append(out, n)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Float reads a floating point value.
func (o Object) Float(key string) *float64 {
	if o == nil {
		return nil
	}
	switch typed := o[key].(type) {
	case float64:
		return &typed
	case float32:
		f := float64(typed)
		return &f
	case int:
		f := float64(typed)
		return &f
	case int64:
		f := float64(typed)
		return &f
	case json.Number:
		if f, err := typed.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

// String reads a string value, "" when absent.
func (o Object) String(key string) string {
	if o == nil {
		return ""
	}
	if s, ok := o[key].(string); ok {
		return s
	}
	return ""
}

// Strings reads an array of strings, skipping non-string entries.
func (o Object) Strings(key string) []string {
	if o == nil {
		return nil
	}
	var out []string
	switch typed := o[key].(type) {
	case []string:
		out = append(out, typed...)
	case []any:
		for _, v := range typed {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Bool reads a boolean value.
func (o Object) Bool(key string) *bool {
	if o == nil {
		return nil
	}
	if b, ok := o[key].(bool); ok {
		return &b
	}
	return nil
}

// Date reads an ISO-8601 date. Malformed values read as nil.
func (o Object) Date(key string) *time.Time {
	if o == nil {
		return nil
	}
	return dates.Parse(o[key])
}

// Child reads a nested object.
func (o Object) Child(key string) Object {
	if o == nil {
		return nil
	}
	return toObject(o[key])
}

// Children reads an array of nested objects, skipping non-object entries.
func (o Object) Children(key string) []Object {
	if o == nil {
		return nil
	}
	var out []Object
	switch typed := o[key].(type) {
	case []Object:
		for _, child := range typed {
			if child != nil {
				out = append(out, child)
			}
		}
	case []map[string]any:
		for _, child := range typed {
			if child != nil {
				out = append(out, Object(child))
			}
		}
	case []any:
		for _, v := range typed {
			if child := toObject(v); child != nil {
				out = append(out, child)
			}
		}
	}
	return out
}

// StringMap reads a flat string map, converting scalar values to strings.
func (o Object) StringMap(key string) map[string]string {
	child := o.Child(key)
	if len(child) == 0 {
		return nil
	}
	out := make(map[string]string, len(child))
	for k, v := range child {
		switch typed := v.(type) {
		case nil:
		case string:
			out[k] = typed
		case json.Number:
			out[k] = typed.String()
		default:
			out[k] = fmt.Sprint(typed)
		}
	}
	return out
}

// SetInt writes v when it is non-nil.
func (o Object) SetInt(key string, v *int) {
	if v != nil {
		o[key] = *v
	}
}

// SetInts writes v when it is not empty.
func (o Object) SetInts(key string, v []int) {
	if len(v) > 0 {
		o[key] = append([]int(nil), v...)
	}
}

// SetFloat writes v when it is non-nil.
func (o Object) SetFloat(key string, v *float64) {
	if v != nil {
		o[key] = *v
	}
}

// SetString writes v when it is not blank.
func (o Object) SetString(key string, v string) {
	if v != "" {
		o[key] = v
	}
}

// SetStrings writes v when it is not empty.
func (o Object) SetStrings(key string, v []string) {
	if len(v) > 0 {
		o[key] = append([]string(nil), v...)
	}
}

// SetBool writes v when it is non-nil.
func (o Object) SetBool(key string, v *bool) {
	if v != nil {
		o[key] = *v
	}
}

// SetDate writes t as an ISO-8601 string when it is non-nil.
func (o Object) SetDate(key string, t *time.Time) {
	if t != nil {
		o[key] = dates.Format(t)
	}
}

// SetObject writes a nested object when it is not empty.
func (o Object) SetObject(key string, v Object) {
	if len(v) > 0 {
		o[key] = v
	}
}

// SetObjects writes an array of nested objects when it is not empty.
func (o Object) SetObjects(key string, v []Object) {
	if len(v) > 0 {
		o[key] = v
	}
}

// SetStringMap writes a flat string map when it is not empty.
func (o Object) SetStringMap(key string, v map[string]string) {
	if len(v) == 0 {
		return
	}
	child := make(Object, len(v))
	for k, s := range v {
		child[k] = s
	}
	o[key] = child
}

func toObject(v any) Object {
	switch typed := v.(type) {
	case Object:
		return typed
	case map[string]any:
		return Object(typed)
	}
	return nil
}

func toInt(v any) (int, bool) {
	switch typed := v.(type) {
	case int:
		return typed, true
	case int32:
		return int(typed), true
	case int64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) || math.IsInf(typed, 0) {
			return 0, false
		}
		return int(typed), true
	case float32:
		return toInt(float64(typed))
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return int(n), true
		}
	}
	return 0, false
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}

// SameInt reports whether a and b hold the same value. Two nil values match.
func SameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// IntEquals reports whether v is set and equal to want.
func IntEquals(v *int, want int) bool {
	return v != nil && *v == want
}
