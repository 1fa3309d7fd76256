// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// MaxSessionIDLength bounds the opaque session token.
const MaxSessionIDLength = 128

// SessionID is the server-assigned identifier of a gateway session.
// It is opaque: printable ASCII without spaces, 1 to 128 bytes.
type SessionID struct {
	id string
}

// ParseSessionID validates a session identifier.
func ParseSessionID(raw string) (SessionID, error) {
	if raw == "" || len(raw) > MaxSessionIDLength {
		return SessionID{}, fmt.Errorf("session ID: %w: must be 1 to %d bytes, got %d", ErrInvalidLength, MaxSessionIDLength, len(raw))
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < 0x21 || raw[i] > 0x7e {
			return SessionID{}, fmt.Errorf("session ID: %w: byte %#x at position %d is not printable ASCII", ErrInvalidFormat, raw[i], i)
		}
	}
	return SessionID{id: raw}, nil
}

// MustParseSessionID is like ParseSessionID but panics on error.
func MustParseSessionID(raw string) SessionID {
	return must(ParseSessionID(raw))
}

// String returns the session identifier.
func (s SessionID) String() string { return s.id }

// IsZero reports whether the session identifier is unset.
func (s SessionID) IsZero() bool { return s.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (s SessionID) MarshalText() ([]byte, error) {
	return []byte(s.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SessionID) UnmarshalText(data []byte) error {
	return unmarshalInto(s, data, ParseSessionID)
}
