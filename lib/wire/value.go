// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/bureau-foundation/huddle/lib/ref"
)

// Value is a single JSON value inside a payload.
type Value struct {
	result gjson.Result
	path   string
}

// Decoder converts a present, non-null Value into a typed value.
type Decoder[V any] func(Value) (V, error)

// Path returns the value's location within the payload.
func (v Value) Path() string { return v.path }

// IsString reports whether the value is a JSON string.
func (v Value) IsString() bool { return v.result.Type == gjson.String }

// IsObject reports whether the value is a JSON object.
func (v Value) IsObject() bool { return v.result.IsObject() }

// IsArray reports whether the value is a JSON array.
func (v Value) IsArray() bool { return v.result.IsArray() }

// Raw returns the value's JSON text.
func (v Value) Raw() string { return v.result.Raw }

// String decodes a JSON string.
func String(v Value) (string, error) {
	if v.result.Type != gjson.String {
		return "", fmt.Errorf("%w: want string, got %s", ErrType, v.result.Type)
	}
	return v.result.Str, nil
}

// Bool decodes a JSON boolean.
func Bool(v Value) (bool, error) {
	switch v.result.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	}
	return false, fmt.Errorf("%w: want boolean, got %s", ErrType, v.result.Type)
}

// Uint decodes a non-negative integer no larger than
// ref.MaxSafeInteger. The number's literal text must be a plain
// integer: fractions and exponents are rejected even when integral.
func Uint(v Value) (int64, error) {
	if v.result.Type != gjson.Number {
		return 0, fmt.Errorf("%w: want number, got %s", ErrType, v.result.Type)
	}
	raw := v.result.Raw
	if len(raw) > 0 && raw[0] == '-' {
		return 0, fmt.Errorf("%s: %w: must not be negative", raw, ref.ErrInvalidRange)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("%s: %w: must be an integer", raw, ref.ErrInvalidFormat)
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n > ref.MaxSafeInteger {
		return 0, fmt.Errorf("%s: %w: exceeds %d", raw, ref.ErrInvalidRange, int64(ref.MaxSafeInteger))
	}
	return n, nil
}

// Text adapts a string parser from lib/ref into a Decoder.
func Text[V any](parse func(string) (V, error)) Decoder[V] {
	return func(v Value) (V, error) {
		s, err := String(v)
		if err != nil {
			var zero V
			return zero, err
		}
		return parse(s)
	}
}

// Int adapts an integer parser from lib/ref into a Decoder. The
// integer is first checked by Uint.
func Int[V any](parse func(int64) (V, error)) Decoder[V] {
	return func(v Value) (V, error) {
		n, err := Uint(v)
		if err != nil {
			var zero V
			return zero, err
		}
		return parse(n)
	}
}

// Timestamp decodes a positive millisecond timestamp.
var Timestamp Decoder[ref.Timestamp] = Int(ref.ParseTimestamp)

// RawObject returns a JSON object's text unparsed.
func RawObject(v Value) ([]byte, error) {
	if !v.result.IsObject() {
		return nil, fmt.Errorf("%w: want object, got %s", ErrType, v.result.Type)
	}
	return []byte(v.result.Raw), nil
}
