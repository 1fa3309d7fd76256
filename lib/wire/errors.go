// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed means the payload is not syntactically valid JSON
	// or is not a JSON object.
	ErrMalformed = errors.New("malformed payload")

	// ErrMissing means a required field is absent.
	ErrMissing = errors.New("missing field")

	// ErrNull means a field is null where null is not allowed.
	ErrNull = errors.New("null not allowed")

	// ErrType means a field has the wrong JSON type.
	ErrType = errors.New("wrong type")

	// ErrTooMany means an array exceeds its maximum length.
	ErrTooMany = errors.New("too many elements")

	// ErrEmpty means a field that must carry at least one change or
	// element carries none.
	ErrEmpty = errors.New("empty")
)

// FieldError reports which field of a payload failed and why.
type FieldError struct {
	// Path is the dotted path to the field, with array indices in
	// brackets: "updated_fields.color_hex", "participants[2].user_id".
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("field %s: %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
