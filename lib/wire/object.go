// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Object is a JSON object being decoded. The first field failure is
// retained and reported by Err; later reads still run but cannot
// replace it. Nested objects share their parent's failure.
type Object struct {
	result gjson.Result
	path   string
	sink   *error
}

// ParseObject validates data as JSON and requires a top-level object.
func ParseObject(data []byte) (*Object, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, fmt.Errorf("%w: top level is %s, want object", ErrMalformed, result.Type)
	}
	var failure error
	return &Object{result: result, sink: &failure}, nil
}

// AsObject decodes a Value as an object with its own failure state.
// Used inside list element decoders.
func AsObject(v Value) (*Object, error) {
	if !v.result.IsObject() {
		return nil, fmt.Errorf("%w: want object, got %s", ErrType, v.result.Type)
	}
	var failure error
	return &Object{result: v.result, path: v.path, sink: &failure}, nil
}

// Err returns the first field failure, or nil.
func (o *Object) Err() error { return *o.sink }

// Fail records err against key unless a failure is already recorded.
func (o *Object) Fail(key string, err error) {
	if *o.sink != nil {
		return
	}
	*o.sink = &FieldError{Path: o.childPath(key), Err: err}
}

// Has reports whether key is present, including when its value is
// null.
func (o *Object) Has(key string) bool {
	return o.get(key).Exists()
}

// Nested returns the object at key, sharing this object's failure
// state. A missing or non-object field is recorded as a failure and
// the returned object reads as empty.
func (o *Object) Nested(key string) *Object {
	result := o.get(key)
	switch {
	case !result.Exists():
		o.Fail(key, ErrMissing)
	case result.Type == gjson.Null:
		o.Fail(key, ErrNull)
	case !result.IsObject():
		o.Fail(key, fmt.Errorf("%w: want object, got %s", ErrType, result.Type))
	default:
		return &Object{result: result, path: o.childPath(key), sink: o.sink}
	}
	return &Object{result: gjson.Result{Type: gjson.JSON, Raw: "{}"}, path: o.childPath(key), sink: o.sink}
}

func (o *Object) get(key string) gjson.Result {
	return o.result.Get(gjson.Escape(key))
}

func (o *Object) childPath(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

func (o *Object) value(key string) Value {
	return Value{result: o.get(key), path: o.childPath(key)}
}

// Required decodes a field that must be present and non-null.
func Required[V any](o *Object, key string, decode Decoder[V]) V {
	var zero V
	v := o.value(key)
	switch {
	case !v.result.Exists():
		o.Fail(key, ErrMissing)
		return zero
	case v.result.Type == gjson.Null:
		o.Fail(key, ErrNull)
		return zero
	}
	decoded, err := decode(v)
	if err != nil {
		o.Fail(key, err)
		return zero
	}
	return decoded
}

// Optional decodes a field that may be absent. Absent and null both
// report ok=false; a present value that fails to decode is a failure.
func Optional[V any](o *Object, key string, decode Decoder[V]) (value V, ok bool) {
	v := o.value(key)
	if !v.result.Exists() || v.result.Type == gjson.Null {
		return value, false
	}
	decoded, err := decode(v)
	if err != nil {
		o.Fail(key, err)
		return value, false
	}
	return decoded, true
}

// PatchOf decodes a clearable field: absent is Unchanged, null is
// Cleared, anything else must decode and is Set.
func PatchOf[V any](o *Object, key string, decode Decoder[V]) Patch[V] {
	v := o.value(key)
	switch {
	case !v.result.Exists():
		return Unchanged[V]()
	case v.result.Type == gjson.Null:
		return Cleared[V]()
	}
	decoded, err := decode(v)
	if err != nil {
		o.Fail(key, err)
		return Unchanged[V]()
	}
	return Set(decoded)
}

// List decodes a required array of at most limit elements, collapsing
// duplicates to their first occurrence. The limit applies to the
// array as received, before duplicates are removed.
func List[V comparable](o *Object, key string, limit int, decode Decoder[V]) []V {
	return ListBy(o, key, limit, decode, func(v V) V { return v })
}

// ListBy is List with duplicates identified by identity(element)
// rather than by the whole element.
func ListBy[V any, K comparable](o *Object, key string, limit int, decode Decoder[V], identity func(V) K) []V {
	v := o.value(key)
	switch {
	case !v.result.Exists():
		o.Fail(key, ErrMissing)
		return nil
	case v.result.Type == gjson.Null:
		o.Fail(key, ErrNull)
		return nil
	case !v.result.IsArray():
		o.Fail(key, fmt.Errorf("%w: want array, got %s", ErrType, v.result.Type))
		return nil
	}

	elements := v.result.Array()
	if len(elements) > limit {
		o.Fail(key, fmt.Errorf("%w: %d exceeds %d", ErrTooMany, len(elements), limit))
		return nil
	}

	seen := make(map[K]struct{}, len(elements))
	decoded := make([]V, 0, len(elements))
	for i, element := range elements {
		item := Value{result: element, path: fmt.Sprintf("%s[%d]", v.path, i)}
		if element.Type == gjson.Null {
			o.Fail(fmt.Sprintf("%s[%d]", key, i), ErrNull)
			return nil
		}
		value, err := decode(item)
		if err != nil {
			o.Fail(fmt.Sprintf("%s[%d]", key, i), err)
			return nil
		}
		id := identity(value)
		if _, duplicate := seen[id]; duplicate {
			continue
		}
		seen[id] = struct{}{}
		decoded = append(decoded, value)
	}
	return decoded
}

// ChangeOf decodes an update field that may be omitted but not
// cleared: absent is Unchanged, null is a failure, anything else must
// decode and is Set.
func ChangeOf[V any](o *Object, key string, decode Decoder[V]) Patch[V] {
	v := o.value(key)
	if !v.result.Exists() {
		return Unchanged[V]()
	}
	if v.result.Type == gjson.Null {
		o.Fail(key, ErrNull)
		return Unchanged[V]()
	}
	decoded, err := decode(v)
	if err != nil {
		o.Fail(key, err)
		return Unchanged[V]()
	}
	return Set(decoded)
}
