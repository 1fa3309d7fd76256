// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// ChannelKind distinguishes text channels from voice channels.
type ChannelKind string

const (
	ChannelText  ChannelKind = "text"
	ChannelVoice ChannelKind = "voice"
)

// IsKnown reports whether k is one of the defined ChannelKind values.
func (k ChannelKind) IsKnown() bool {
	switch k {
	case ChannelText, ChannelVoice:
		return true
	}
	return false
}

// ParseChannelKind validates a channel kind.
func ParseChannelKind(raw string) (ChannelKind, error) {
	return parseEnum("channel kind", raw, ChannelKind.IsKnown)
}

// PresenceStatus is a user's availability as shown to others.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceIdle    PresenceStatus = "idle"
	PresenceDND     PresenceStatus = "dnd"
	PresenceOffline PresenceStatus = "offline"
)

// IsKnown reports whether s is one of the defined PresenceStatus values.
func (s PresenceStatus) IsKnown() bool {
	switch s {
	case PresenceOnline, PresenceIdle, PresenceDND, PresenceOffline:
		return true
	}
	return false
}

// ParsePresenceStatus validates a presence status.
func ParsePresenceStatus(raw string) (PresenceStatus, error) {
	return parseEnum("presence status", raw, PresenceStatus.IsKnown)
}

// StreamKind distinguishes screen shares from camera streams.
type StreamKind string

const (
	StreamScreen StreamKind = "screen"
	StreamCamera StreamKind = "camera"
)

// IsKnown reports whether k is one of the defined StreamKind values.
func (k StreamKind) IsKnown() bool {
	switch k {
	case StreamScreen, StreamCamera:
		return true
	}
	return false
}

// ParseStreamKind validates a stream kind.
func ParseStreamKind(raw string) (StreamKind, error) {
	return parseEnum("stream kind", raw, StreamKind.IsKnown)
}

// InvalidationReason explains why the server ended a session.
type InvalidationReason string

const (
	InvalidationTokenRevoked   InvalidationReason = "token_revoked"
	InvalidationReplaced       InvalidationReason = "replaced"
	InvalidationServerShutdown InvalidationReason = "server_shutdown"
	InvalidationRateLimited    InvalidationReason = "rate_limited"
)

// IsKnown reports whether r is one of the defined InvalidationReason values.
func (r InvalidationReason) IsKnown() bool {
	switch r {
	case InvalidationTokenRevoked, InvalidationReplaced, InvalidationServerShutdown, InvalidationRateLimited:
		return true
	}
	return false
}

// Resumable reports whether a client may reconnect with the same
// credential after this invalidation.
func (r InvalidationReason) Resumable() bool {
	return r == InvalidationServerShutdown || r == InvalidationRateLimited
}

// ParseInvalidationReason validates an invalidation reason.
func ParseInvalidationReason(raw string) (InvalidationReason, error) {
	return parseEnum("invalidation reason", raw, InvalidationReason.IsKnown)
}

// RemovalReason explains why a member left a workspace.
type RemovalReason string

const (
	RemovalLeft   RemovalReason = "left"
	RemovalKicked RemovalReason = "kicked"
	RemovalBanned RemovalReason = "banned"
)

// IsKnown reports whether r is one of the defined RemovalReason values.
func (r RemovalReason) IsKnown() bool {
	switch r {
	case RemovalLeft, RemovalKicked, RemovalBanned:
		return true
	}
	return false
}

// ParseRemovalReason validates a removal reason.
func ParseRemovalReason(raw string) (RemovalReason, error) {
	return parseEnum("removal reason", raw, RemovalReason.IsKnown)
}

func parseEnum[E ~string](label, raw string, known func(E) bool) (E, error) {
	value := E(raw)
	if !known(value) {
		return "", fmt.Errorf("%s %q: %w", label, raw, ErrInvalidFormat)
	}
	return value, nil
}
