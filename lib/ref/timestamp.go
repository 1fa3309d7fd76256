// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strconv"
	"time"
)

// Timestamp is a server time in milliseconds since the Unix epoch.
// Valid timestamps are positive safe integers.
type Timestamp struct {
	ms int64
}

// ParseTimestamp validates a millisecond Unix timestamp.
func ParseTimestamp(ms int64) (Timestamp, error) {
	if ms <= 0 || ms > MaxSafeInteger {
		return Timestamp{}, fmt.Errorf("timestamp %d: %w: must be in [1, %d]", ms, ErrInvalidRange, int64(MaxSafeInteger))
	}
	return Timestamp{ms: ms}, nil
}

// MustParseTimestamp is like ParseTimestamp but panics on error.
func MustParseTimestamp(ms int64) Timestamp {
	return must(ParseTimestamp(ms))
}

// TimestampOf converts t to a Timestamp, truncating to milliseconds.
func TimestampOf(t time.Time) (Timestamp, error) {
	return ParseTimestamp(t.UnixMilli())
}

// Millis returns the timestamp in milliseconds since the epoch.
func (t Timestamp) Millis() int64 { return t.ms }

// Time returns the timestamp as a UTC time.Time.
func (t Timestamp) Time() time.Time { return time.UnixMilli(t.ms).UTC() }

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool { return t.ms == 0 }

// String returns the RFC 3339 form with millisecond precision.
func (t Timestamp) String() string {
	if t.ms == 0 {
		return ""
	}
	return t.Time().Format("2006-01-02T15:04:05.000Z07:00")
}

// MarshalJSON encodes the timestamp as its millisecond number, the
// same form the gateway sends.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, t.ms, 10), nil
}

// UnmarshalJSON decodes and validates a millisecond number.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp %s: %w: not an integer", data, ErrInvalidFormat)
	}
	parsed, err := ParseTimestamp(ms)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
