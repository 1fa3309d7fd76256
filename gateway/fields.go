// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// List caps. A payload whose array exceeds its cap is invalid;
// duplicates within the cap are collapsed.
const (
	MaxSessionWorkspaces  = 200
	MaxVoiceParticipants  = 250
	MaxChannelReorder     = 500
	MaxRoleReorder        = 64
	MaxMemberRoles        = 64
	MaxTopicLength        = 1024
	MaxDescriptionLength  = 1024
	MaxURLLength          = 2048
	maxHeartbeatInterval  = 10 * time.Minute
	maxRetryAfterInterval = 24 * time.Hour
)

var (
	workspaceID = wire.Text(ref.ParseWorkspaceID)
	channelID   = wire.Text(ref.ParseChannelID)
	userID      = wire.Text(ref.ParseUserID)
	roleID      = wire.Text(ref.ParseRoleID)
	streamID    = wire.Text(ref.ParseStreamID)
	permissions = wire.Int(ref.ParsePermissions)
	topic       = boundedText(MaxTopicLength)
	description = boundedText(MaxDescriptionLength)
)

// boundedText decodes a string of at most limit runes. The empty
// string is allowed.
func boundedText(limit int) wire.Decoder[string] {
	return func(v wire.Value) (string, error) {
		s, err := wire.String(v)
		if err != nil {
			return "", err
		}
		if !utf8.ValidString(s) {
			return "", fmt.Errorf("%w: not valid UTF-8", ref.ErrInvalidFormat)
		}
		if count := utf8.RuneCountInString(s); count > limit {
			return "", fmt.Errorf("%w: %d characters exceeds %d", ref.ErrInvalidLength, count, limit)
		}
		return s, nil
	}
}

// resourceURL decodes an absolute http or https URL.
func resourceURL(v wire.Value) (string, error) {
	s, err := wire.String(v)
	if err != nil {
		return "", err
	}
	if s == "" || len(s) > MaxURLLength {
		return "", fmt.Errorf("%w: URL must be 1 to %d bytes", ref.ErrInvalidLength, MaxURLLength)
	}
	parsed, err := url.Parse(s)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http(s) URL", ref.ErrInvalidFormat, s)
	}
	return s, nil
}

// milliseconds decodes a non-negative millisecond count as a duration
// no longer than limit.
func milliseconds(limit time.Duration) wire.Decoder[time.Duration] {
	return func(v wire.Value) (time.Duration, error) {
		ms, err := wire.Uint(v)
		if err != nil {
			return 0, err
		}
		if ms > limit.Milliseconds() {
			return 0, fmt.Errorf("%w: %dms exceeds %v", ref.ErrInvalidRange, ms, limit)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
}

// requireChange fails obj when an update carries no changed fields.
func requireChange(obj *wire.Object, key string, changed ...bool) {
	for _, c := range changed {
		if c {
			return
		}
	}
	obj.Fail(key, fmt.Errorf("%w: update carries no changed fields", wire.ErrEmpty))
}

// patchList decodes an optional list field as a change: absent is
// Unchanged, null is a failure, an array is decoded with List.
func patchList[V comparable](obj *wire.Object, key string, limit int, decode wire.Decoder[V]) wire.Patch[[]V] {
	if !obj.Has(key) {
		return wire.Unchanged[[]V]()
	}
	list := wire.List(obj, key, limit, decode)
	if obj.Err() != nil {
		return wire.Unchanged[[]V]()
	}
	return wire.Set(list)
}
