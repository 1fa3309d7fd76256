// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"github.com/bureau-foundation/huddle/lib/compat"
	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// CompatMemberUpdateFields is the compatibility counter path for the
// shape of workspace_member_update's changed fields.
const CompatMemberUpdateFields = "workspace_member_update.updated_fields"

// MemberEvent is an event about workspace membership.
type MemberEvent interface {
	Event
	memberTag() memberTag
}

type memberTag uint8

const (
	tagMemberAdd memberTag = iota
	tagMemberUpdate
	tagMemberRemove
	memberTagCount
)

var memberTypes = [...]string{
	tagMemberAdd:    "workspace_member_add",
	tagMemberUpdate: "workspace_member_update",
	tagMemberRemove: "workspace_member_remove",
}

var memberDecoders = [...]decodeFunc[MemberEvent]{
	tagMemberAdd:    decodeMemberAdd,
	tagMemberUpdate: decodeMemberUpdate,
	tagMemberRemove: decodeMemberRemove,
}

var memberDispatch = [...]func(MemberEvent, *MemberHandlers){
	tagMemberAdd:    func(e MemberEvent, h *MemberHandlers) { invoke(h.OnAdd, e) },
	tagMemberUpdate: func(e MemberEvent, h *MemberHandlers) { invoke(h.OnUpdate, e) },
	tagMemberRemove: func(e MemberEvent, h *MemberHandlers) { invoke(h.OnRemove, e) },
}

var (
	_ = [1]struct{}{}[len(memberTypes)-int(memberTagCount)]
	_ = [1]struct{}{}[len(memberDecoders)-int(memberTagCount)]
	_ = [1]struct{}{}[len(memberDispatch)-int(memberTagCount)]
)

var memberFamily = newFamily(FamilyMember, ScopeGuild, memberTypes[:], memberDecoders[:])

// Member is a workspace member as sent on join. Nickname is zero when
// the member has none.
type Member struct {
	UserID      ref.UserID
	DisplayName ref.DisplayName
	Nickname    ref.DisplayName
	RoleIDs     []ref.RoleID
}

// MemberAdd reports a user joining a workspace.
type MemberAdd struct {
	WorkspaceID ref.WorkspaceID
	Member      Member
	JoinedAt    ref.Timestamp
}

// MemberUpdate reports changes to a member's workspace-local state. At
// least one field changes. Nickname may be cleared; RoleIDs replaces
// the full role list when set.
//
// As with RoleUpdate, the legacy shape carries the changes at the top
// level when updated_fields is absent.
type MemberUpdate struct {
	WorkspaceID ref.WorkspaceID
	UserID      ref.UserID
	Nickname    wire.Patch[ref.DisplayName]
	RoleIDs     wire.Patch[[]ref.RoleID]
	UpdatedAt   ref.Timestamp
}

// MemberRemove reports a member leaving or being removed.
type MemberRemove struct {
	WorkspaceID ref.WorkspaceID
	UserID      ref.UserID
	Reason      ref.RemovalReason
	RemovedAt   ref.Timestamp
}

func (MemberAdd) Type() string            { return memberTypes[tagMemberAdd] }
func (MemberAdd) Family() Family          { return FamilyMember }
func (MemberAdd) isEvent()                {}
func (MemberAdd) memberTag() memberTag    { return tagMemberAdd }
func (MemberUpdate) Type() string         { return memberTypes[tagMemberUpdate] }
func (MemberUpdate) Family() Family       { return FamilyMember }
func (MemberUpdate) isEvent()             {}
func (MemberUpdate) memberTag() memberTag { return tagMemberUpdate }
func (MemberRemove) Type() string         { return memberTypes[tagMemberRemove] }
func (MemberRemove) Family() Family       { return FamilyMember }
func (MemberRemove) isEvent()             {}
func (MemberRemove) memberTag() memberTag { return tagMemberRemove }

func decodeMemberAdd(obj *wire.Object, _ *compatNote) MemberEvent {
	event := MemberAdd{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		JoinedAt:    wire.Required(obj, "joined_at", wire.Timestamp),
	}
	member := obj.Nested("member")
	event.Member = Member{
		UserID:      wire.Required(member, "user_id", userID),
		DisplayName: wire.Required(member, "display_name", wire.Text(ref.ParseDisplayName)),
		RoleIDs:     wire.List(member, "role_ids", MaxMemberRoles, roleID),
	}
	event.Member.Nickname, _ = wire.Optional(member, "nickname", wire.Text(ref.ParseDisplayName))
	return event
}

func decodeMemberUpdate(obj *wire.Object, note *compatNote) MemberEvent {
	event := MemberUpdate{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		UserID:      wire.Required(obj, "user_id", userID),
		UpdatedAt:   wire.Required(obj, "updated_at", wire.Timestamp),
	}
	fields := obj
	if obj.Has("updated_fields") {
		fields = obj.Nested("updated_fields")
		note.take(CompatMemberUpdateFields, compat.ModeExplicit)
	} else {
		note.take(CompatMemberUpdateFields, compat.ModeLegacy)
	}
	event.Nickname = wire.PatchOf(fields, "nickname", wire.Text(ref.ParseDisplayName))
	event.RoleIDs = patchList(fields, "role_ids", MaxMemberRoles, roleID)
	requireChange(obj, "updated_fields", event.Nickname.Changed(), event.RoleIDs.Changed())
	return event
}

func decodeMemberRemove(obj *wire.Object, _ *compatNote) MemberEvent {
	return MemberRemove{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		UserID:      wire.Required(obj, "user_id", userID),
		Reason:      wire.Required(obj, "reason", wire.Text(ref.ParseRemovalReason)),
		RemovedAt:   wire.Required(obj, "removed_at", wire.Timestamp),
	}
}

// MemberDecoder decodes member family events and records which shape
// member updates use.
type MemberDecoder struct {
	recorder compat.Recorder
}

// NewMemberDecoder returns a decoder recording compatibility paths on
// recorder. A nil recorder disables recording.
func NewMemberDecoder(recorder compat.Recorder) MemberDecoder {
	return MemberDecoder{recorder: recorder}
}

// IsSupportedType reports whether eventType is a member event.
func (MemberDecoder) IsSupportedType(eventType string) bool {
	return memberFamily.supports(eventType)
}

// Decode validates payload as eventType. It returns false for any
// unknown type or invalid payload.
func (d MemberDecoder) Decode(eventType string, payload []byte) (MemberEvent, bool) {
	event, err := memberFamily.decode(d.recorder, eventType, payload)
	return event, err == nil
}

// MemberHandlers receives member events. Nil fields are skipped.
type MemberHandlers struct {
	OnAdd    func(MemberAdd)
	OnUpdate func(MemberUpdate)
	OnRemove func(MemberRemove)
}

// DispatchMember invokes the handler matching event, if set.
func DispatchMember(event MemberEvent, handlers *MemberHandlers) {
	if event == nil || handlers == nil {
		return
	}
	memberDispatch[event.memberTag()](event, handlers)
}
