// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxErrorBody is how much of an error response ErrorBody reads.
const MaxErrorBody = 1024

// ErrBodyTooLarge is returned by ReadLimited for a body longer than
// its limit.
var ErrBodyTooLarge = errors.New("netutil: response body exceeds limit")

// ReadLimited reads body to EOF. A body of more than limit bytes
// fails with ErrBodyTooLarge after reading at most limit+1 bytes.
func ReadLimited(body io.Reader, limit int64) ([]byte, error) {
	if limit < 0 {
		limit = 0
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}
	return data, nil
}

// ErrorBody returns up to MaxErrorBody bytes of an error response,
// trimmed, for diagnostic messages. Read errors are ignored; a partial
// or empty body is still useful in a log line.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBody))
	return strings.TrimSpace(string(data))
}
