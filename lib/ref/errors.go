// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "errors"

// Parse failures wrap exactly one of these. Callers that only need to
// know a value was rejected can ignore the distinction.
var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidRange  = errors.New("invalid range")
)

// MaxSafeInteger is the largest integer every gateway producer can
// represent exactly (2^53 - 1). Integers above it are rejected.
const MaxSafeInteger = 1<<53 - 1
