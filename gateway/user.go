// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// UserEvent is an event about a user account, delivered to everyone
// who shares a workspace with that user.
type UserEvent interface {
	Event
	userTag() userTag
}

type userTag uint8

const (
	tagPresenceUpdate userTag = iota
	tagProfileUpdate
	userTagCount
)

var userTypes = [...]string{
	tagPresenceUpdate: "user_presence_update",
	tagProfileUpdate:  "user_profile_update",
}

var userDecoders = [...]decodeFunc[UserEvent]{
	tagPresenceUpdate: decodePresenceUpdate,
	tagProfileUpdate:  decodeProfileUpdate,
}

var userDispatch = [...]func(UserEvent, *UserHandlers){
	tagPresenceUpdate: func(e UserEvent, h *UserHandlers) { invoke(h.OnPresenceUpdate, e) },
	tagProfileUpdate:  func(e UserEvent, h *UserHandlers) { invoke(h.OnProfileUpdate, e) },
}

var (
	_ = [1]struct{}{}[len(userTypes)-int(userTagCount)]
	_ = [1]struct{}{}[len(userDecoders)-int(userTagCount)]
	_ = [1]struct{}{}[len(userDispatch)-int(userTagCount)]
)

var userFamily = newFamily(FamilyUser, ScopeUser, userTypes[:], userDecoders[:])

// PresenceUpdate reports a user's new presence status.
type PresenceUpdate struct {
	UserID    ref.UserID
	Status    ref.PresenceStatus
	UpdatedAt ref.Timestamp
}

// ProfileUpdate reports changes to a user's global profile. At least
// one field changes. AvatarURL may be cleared; DisplayName may not.
type ProfileUpdate struct {
	UserID      ref.UserID
	DisplayName wire.Patch[ref.DisplayName]
	AvatarURL   wire.Patch[string]
	UpdatedAt   ref.Timestamp
}

func (PresenceUpdate) Type() string     { return userTypes[tagPresenceUpdate] }
func (PresenceUpdate) Family() Family   { return FamilyUser }
func (PresenceUpdate) isEvent()         {}
func (PresenceUpdate) userTag() userTag { return tagPresenceUpdate }
func (ProfileUpdate) Type() string      { return userTypes[tagProfileUpdate] }
func (ProfileUpdate) Family() Family    { return FamilyUser }
func (ProfileUpdate) isEvent()          {}
func (ProfileUpdate) userTag() userTag  { return tagProfileUpdate }

func decodePresenceUpdate(obj *wire.Object, _ *compatNote) UserEvent {
	return PresenceUpdate{
		UserID:    wire.Required(obj, "user_id", userID),
		Status:    wire.Required(obj, "status", wire.Text(ref.ParsePresenceStatus)),
		UpdatedAt: wire.Required(obj, "updated_at", wire.Timestamp),
	}
}

func decodeProfileUpdate(obj *wire.Object, _ *compatNote) UserEvent {
	event := ProfileUpdate{
		UserID:    wire.Required(obj, "user_id", userID),
		UpdatedAt: wire.Required(obj, "updated_at", wire.Timestamp),
	}
	fields := obj.Nested("updated_fields")
	event.DisplayName = wire.ChangeOf(fields, "display_name", wire.Text(ref.ParseDisplayName))
	event.AvatarURL = wire.PatchOf(fields, "avatar_url", resourceURL)
	requireChange(obj, "updated_fields", event.DisplayName.Changed(), event.AvatarURL.Changed())
	return event
}

// UserDecoder decodes user family events.
type UserDecoder struct{}

// IsSupportedType reports whether eventType is a user event.
func (UserDecoder) IsSupportedType(eventType string) bool {
	return userFamily.supports(eventType)
}

// Decode validates payload as eventType. It returns false for any
// unknown type or invalid payload.
func (UserDecoder) Decode(eventType string, payload []byte) (UserEvent, bool) {
	event, err := userFamily.decode(nil, eventType, payload)
	return event, err == nil
}

// UserHandlers receives user events. Nil fields are skipped.
type UserHandlers struct {
	OnPresenceUpdate func(PresenceUpdate)
	OnProfileUpdate  func(ProfileUpdate)
}

// DispatchUser invokes the handler matching event, if set.
func DispatchUser(event UserEvent, handlers *UserHandlers) {
	if event == nil || handlers == nil {
		return
	}
	userDispatch[event.userTag()](event, handlers)
}
