// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"

	"github.com/google/uuid"
)

// uuidLength is the length of the canonical hyphenated form.
const uuidLength = 36

// uuidRef holds a canonical UUID string. It is embedded by every
// identifier type so they share accessors but stay distinct types.
type uuidRef struct {
	id string
}

func parseUUID(label, raw string) (uuidRef, error) {
	if len(raw) != uuidLength {
		return uuidRef{}, fmt.Errorf("%s %q: %w: must be %d characters", label, raw, ErrInvalidLength, uuidLength)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuidRef{}, fmt.Errorf("%s %q: %w: %v", label, raw, ErrInvalidFormat, err)
	}
	if parsed == uuid.Nil {
		return uuidRef{}, fmt.Errorf("%s: %w: nil UUID", label, ErrInvalidFormat)
	}
	if parsed.String() != raw {
		return uuidRef{}, fmt.Errorf("%s %q: %w: must be lowercase hyphenated", label, raw, ErrInvalidFormat)
	}
	return uuidRef{id: raw}, nil
}

// String returns the identifier as received.
func (r uuidRef) String() string { return r.id }

// IsZero reports whether the identifier is unset.
func (r uuidRef) IsZero() bool { return r.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (r uuidRef) MarshalText() ([]byte, error) {
	return []byte(r.id), nil
}

// WorkspaceID identifies a workspace (a guild in gateway scope terms).
type WorkspaceID struct{ uuidRef }

// ParseWorkspaceID validates a workspace identifier.
func ParseWorkspaceID(raw string) (WorkspaceID, error) {
	r, err := parseUUID("workspace ID", raw)
	if err != nil {
		return WorkspaceID{}, err
	}
	return WorkspaceID{r}, nil
}

// MustParseWorkspaceID is like ParseWorkspaceID but panics on error.
func MustParseWorkspaceID(raw string) WorkspaceID {
	return must(ParseWorkspaceID(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *WorkspaceID) UnmarshalText(data []byte) error {
	return unmarshalInto(id, data, ParseWorkspaceID)
}

// ChannelID identifies a text or voice channel.
type ChannelID struct{ uuidRef }

// ParseChannelID validates a channel identifier.
func ParseChannelID(raw string) (ChannelID, error) {
	r, err := parseUUID("channel ID", raw)
	if err != nil {
		return ChannelID{}, err
	}
	return ChannelID{r}, nil
}

// MustParseChannelID is like ParseChannelID but panics on error.
func MustParseChannelID(raw string) ChannelID {
	return must(ParseChannelID(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ChannelID) UnmarshalText(data []byte) error {
	return unmarshalInto(id, data, ParseChannelID)
}

// UserID identifies a user account.
type UserID struct{ uuidRef }

// ParseUserID validates a user identifier.
func ParseUserID(raw string) (UserID, error) {
	r, err := parseUUID("user ID", raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID{r}, nil
}

// MustParseUserID is like ParseUserID but panics on error.
func MustParseUserID(raw string) UserID {
	return must(ParseUserID(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *UserID) UnmarshalText(data []byte) error {
	return unmarshalInto(id, data, ParseUserID)
}

// RoleID identifies a workspace role.
type RoleID struct{ uuidRef }

// ParseRoleID validates a role identifier.
func ParseRoleID(raw string) (RoleID, error) {
	r, err := parseUUID("role ID", raw)
	if err != nil {
		return RoleID{}, err
	}
	return RoleID{r}, nil
}

// MustParseRoleID is like ParseRoleID but panics on error.
func MustParseRoleID(raw string) RoleID {
	return must(ParseRoleID(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *RoleID) UnmarshalText(data []byte) error {
	return unmarshalInto(id, data, ParseRoleID)
}

// StreamID identifies a screen-share or camera stream in a voice
// channel.
type StreamID struct{ uuidRef }

// ParseStreamID validates a stream identifier.
func ParseStreamID(raw string) (StreamID, error) {
	r, err := parseUUID("stream ID", raw)
	if err != nil {
		return StreamID{}, err
	}
	return StreamID{r}, nil
}

// MustParseStreamID is like ParseStreamID but panics on error.
func MustParseStreamID(raw string) StreamID {
	return must(ParseStreamID(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *StreamID) UnmarshalText(data []byte) error {
	return unmarshalInto(id, data, ParseStreamID)
}

// AttachmentID identifies a file attached to a message.
type AttachmentID struct{ uuidRef }

// ParseAttachmentID validates an attachment identifier.
func ParseAttachmentID(raw string) (AttachmentID, error) {
	r, err := parseUUID("attachment ID", raw)
	if err != nil {
		return AttachmentID{}, err
	}
	return AttachmentID{r}, nil
}

// MustParseAttachmentID is like ParseAttachmentID but panics on error.
func MustParseAttachmentID(raw string) AttachmentID {
	return must(ParseAttachmentID(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *AttachmentID) UnmarshalText(data []byte) error {
	return unmarshalInto(id, data, ParseAttachmentID)
}

// unmarshalInto parses data with parse and stores the result. Empty
// input produces the zero value.
func unmarshalInto[V any](target *V, data []byte, parse func(string) (V, error)) error {
	if len(data) == 0 {
		var zero V
		*target = zero
		return nil
	}
	parsed, err := parse(string(data))
	if err != nil {
		return err
	}
	*target = parsed
	return nil
}

func must[V any](value V, err error) V {
	if err != nil {
		panic(fmt.Sprintf("ref: %v", err))
	}
	return value
}
