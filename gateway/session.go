// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"time"

	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// SessionEvent is an event about the gateway connection itself.
type SessionEvent interface {
	Event
	sessionTag() sessionTag
}

type sessionTag uint8

const (
	tagSessionReady sessionTag = iota
	tagSessionInvalidated
	sessionTagCount
)

var sessionTypes = [...]string{
	tagSessionReady:       "session_ready",
	tagSessionInvalidated: "session_invalidated",
}

var sessionDecoders = [...]decodeFunc[SessionEvent]{
	tagSessionReady:       decodeSessionReady,
	tagSessionInvalidated: decodeSessionInvalidated,
}

var sessionDispatch = [...]func(SessionEvent, *SessionHandlers){
	tagSessionReady:       func(e SessionEvent, h *SessionHandlers) { invoke(h.OnReady, e) },
	tagSessionInvalidated: func(e SessionEvent, h *SessionHandlers) { invoke(h.OnInvalidated, e) },
}

var (
	_ = [1]struct{}{}[len(sessionTypes)-int(sessionTagCount)]
	_ = [1]struct{}{}[len(sessionDecoders)-int(sessionTagCount)]
	_ = [1]struct{}{}[len(sessionDispatch)-int(sessionTagCount)]
)

var sessionFamily = newFamily(FamilySession, ScopeConnection, sessionTypes[:], sessionDecoders[:])

// SessionReady is sent once the gateway has authenticated the
// connection.
//
//	session_id            → SessionID
//	user_id               → UserID
//	workspace_ids         → WorkspaceIDs (at most 200, deduplicated)
//	heartbeat_interval_ms → HeartbeatInterval (positive)
//	resumed               → Resumed (optional, default false)
type SessionReady struct {
	SessionID         ref.SessionID
	UserID            ref.UserID
	WorkspaceIDs      []ref.WorkspaceID
	HeartbeatInterval time.Duration
	Resumed           bool
}

// SessionInvalidated ends the session. RetryAfter is zero when the
// server gave no hint.
type SessionInvalidated struct {
	Reason     ref.InvalidationReason
	RetryAfter time.Duration
}

func (SessionReady) Type() string                 { return sessionTypes[tagSessionReady] }
func (SessionReady) Family() Family               { return FamilySession }
func (SessionReady) isEvent()                     {}
func (SessionReady) sessionTag() sessionTag       { return tagSessionReady }
func (SessionInvalidated) Type() string           { return sessionTypes[tagSessionInvalidated] }
func (SessionInvalidated) Family() Family         { return FamilySession }
func (SessionInvalidated) isEvent()               {}
func (SessionInvalidated) sessionTag() sessionTag { return tagSessionInvalidated }

func decodeSessionReady(obj *wire.Object, _ *compatNote) SessionEvent {
	event := SessionReady{
		SessionID:         wire.Required(obj, "session_id", wire.Text(ref.ParseSessionID)),
		UserID:            wire.Required(obj, "user_id", userID),
		WorkspaceIDs:      wire.List(obj, "workspace_ids", MaxSessionWorkspaces, workspaceID),
		HeartbeatInterval: wire.Required(obj, "heartbeat_interval_ms", milliseconds(maxHeartbeatInterval)),
	}
	event.Resumed, _ = wire.Optional(obj, "resumed", wire.Bool)
	if obj.Err() == nil && event.HeartbeatInterval <= 0 {
		obj.Fail("heartbeat_interval_ms", ref.ErrInvalidRange)
	}
	return event
}

func decodeSessionInvalidated(obj *wire.Object, _ *compatNote) SessionEvent {
	event := SessionInvalidated{
		Reason: wire.Required(obj, "reason", wire.Text(ref.ParseInvalidationReason)),
	}
	event.RetryAfter, _ = wire.Optional(obj, "retry_after_ms", milliseconds(maxRetryAfterInterval))
	return event
}

// SessionDecoder decodes session family events.
type SessionDecoder struct{}

// IsSupportedType reports whether eventType is a session event.
func (SessionDecoder) IsSupportedType(eventType string) bool {
	return sessionFamily.supports(eventType)
}

// Decode validates payload as eventType. It returns false for any
// unknown type or invalid payload.
func (SessionDecoder) Decode(eventType string, payload []byte) (SessionEvent, bool) {
	event, err := sessionFamily.decode(nil, eventType, payload)
	return event, err == nil
}

// SessionHandlers receives session events. Nil fields are skipped.
type SessionHandlers struct {
	OnReady       func(SessionReady)
	OnInvalidated func(SessionInvalidated)
}

// DispatchSession invokes the handler matching event, if set.
func DispatchSession(event SessionEvent, handlers *SessionHandlers) {
	if event == nil || handlers == nil {
		return
	}
	sessionDispatch[event.sessionTag()](event, handlers)
}
