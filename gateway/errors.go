// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import "errors"

var (
	// ErrInvalidEnvelope means the envelope itself could not be read:
	// not an object, or missing its type or payload.
	ErrInvalidEnvelope = errors.New("gateway: invalid envelope")

	// ErrUnknownType means the envelope names an event type no family
	// supports. Such envelopes are counted and dropped.
	ErrUnknownType = errors.New("gateway: unknown event type")

	// ErrInvalidPayload means a supported event type carried a payload
	// that failed validation. The wrapped error names the field.
	ErrInvalidPayload = errors.New("gateway: invalid payload")
)
