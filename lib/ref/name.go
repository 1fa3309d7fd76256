// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length limits, counted in runes.
const (
	MaxWorkspaceNameLength = 100
	MaxChannelNameLength   = 100
	MaxRoleNameLength      = 100
	MaxDisplayNameLength   = 32
)

// nameRef holds a validated human-readable name exactly as received.
type nameRef struct {
	name string
}

// validateName checks the rules every name shares: valid UTF-8, no
// control characters, not blank after trimming, at most maxRunes.
func validateName(label, raw string, maxRunes int) error {
	if !utf8.ValidString(raw) {
		return fmt.Errorf("%s: %w: not valid UTF-8", label, ErrInvalidFormat)
	}
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s: %w: empty or blank", label, ErrInvalidLength)
	}
	if count := utf8.RuneCountInString(raw); count > maxRunes {
		return fmt.Errorf("%s: %w: %d characters exceeds %d", label, ErrInvalidLength, count, maxRunes)
	}
	for _, r := range raw {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s %q: %w: contains control character %U", label, raw, ErrInvalidFormat, r)
		}
	}
	return nil
}

// String returns the name as received.
func (n nameRef) String() string { return n.name }

// IsZero reports whether the name is unset.
func (n nameRef) IsZero() bool { return n.name == "" }

// MarshalText implements encoding.TextMarshaler.
func (n nameRef) MarshalText() ([]byte, error) {
	return []byte(n.name), nil
}

// WorkspaceName is a workspace's display name.
type WorkspaceName struct{ nameRef }

// ParseWorkspaceName validates a workspace name.
func ParseWorkspaceName(raw string) (WorkspaceName, error) {
	if err := validateName("workspace name", raw, MaxWorkspaceNameLength); err != nil {
		return WorkspaceName{}, err
	}
	return WorkspaceName{nameRef{raw}}, nil
}

// MustParseWorkspaceName is like ParseWorkspaceName but panics on error.
func MustParseWorkspaceName(raw string) WorkspaceName {
	return must(ParseWorkspaceName(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *WorkspaceName) UnmarshalText(data []byte) error {
	return unmarshalInto(n, data, ParseWorkspaceName)
}

// ChannelName is a channel's slug: lowercase letters, digits, '-' and
// '_'. Unicode lowercase letters are accepted.
type ChannelName struct{ nameRef }

// ParseChannelName validates a channel name.
func ParseChannelName(raw string) (ChannelName, error) {
	if err := validateName("channel name", raw, MaxChannelNameLength); err != nil {
		return ChannelName{}, err
	}
	for _, r := range raw {
		if r == '-' || r == '_' || unicode.IsDigit(r) {
			continue
		}
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			continue
		}
		return ChannelName{}, fmt.Errorf("channel name %q: %w: character %q not allowed (lowercase letters, digits, '-', '_')", raw, ErrInvalidFormat, r)
	}
	return ChannelName{nameRef{raw}}, nil
}

// MustParseChannelName is like ParseChannelName but panics on error.
func MustParseChannelName(raw string) ChannelName {
	return must(ParseChannelName(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *ChannelName) UnmarshalText(data []byte) error {
	return unmarshalInto(n, data, ParseChannelName)
}

// RoleName is a role's display name.
type RoleName struct{ nameRef }

// ParseRoleName validates a role name.
func ParseRoleName(raw string) (RoleName, error) {
	if err := validateName("role name", raw, MaxRoleNameLength); err != nil {
		return RoleName{}, err
	}
	return RoleName{nameRef{raw}}, nil
}

// MustParseRoleName is like ParseRoleName but panics on error.
func MustParseRoleName(raw string) RoleName {
	return must(ParseRoleName(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *RoleName) UnmarshalText(data []byte) error {
	return unmarshalInto(n, data, ParseRoleName)
}

// DisplayName is a user's display name or a member's per-workspace
// nickname.
type DisplayName struct{ nameRef }

// ParseDisplayName validates a display name.
func ParseDisplayName(raw string) (DisplayName, error) {
	if err := validateName("display name", raw, MaxDisplayNameLength); err != nil {
		return DisplayName{}, err
	}
	return DisplayName{nameRef{raw}}, nil
}

// MustParseDisplayName is like ParseDisplayName but panics on error.
func MustParseDisplayName(raw string) DisplayName {
	return must(ParseDisplayName(raw))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *DisplayName) UnmarshalText(data []byte) error {
	return unmarshalInto(n, data, ParseDisplayName)
}
