// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"github.com/bureau-foundation/huddle/lib/compat"
	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// CompatRoleUpdateFields is the compatibility counter path for the
// shape of workspace_role_update's changed fields.
const CompatRoleUpdateFields = "workspace_role_update.updated_fields"

// RoleEvent is an event about the roles of a workspace.
type RoleEvent interface {
	Event
	roleTag() roleTag
}

type roleTag uint8

const (
	tagRoleCreate roleTag = iota
	tagRoleUpdate
	tagRoleDelete
	tagRoleReorder
	roleTagCount
)

var roleTypes = [...]string{
	tagRoleCreate:  "workspace_role_create",
	tagRoleUpdate:  "workspace_role_update",
	tagRoleDelete:  "workspace_role_delete",
	tagRoleReorder: "workspace_role_reorder",
}

var roleDecoders = [...]decodeFunc[RoleEvent]{
	tagRoleCreate:  decodeRoleCreate,
	tagRoleUpdate:  decodeRoleUpdate,
	tagRoleDelete:  decodeRoleDelete,
	tagRoleReorder: decodeRoleReorder,
}

var roleDispatch = [...]func(RoleEvent, *RoleHandlers){
	tagRoleCreate:  func(e RoleEvent, h *RoleHandlers) { invoke(h.OnCreate, e) },
	tagRoleUpdate:  func(e RoleEvent, h *RoleHandlers) { invoke(h.OnUpdate, e) },
	tagRoleDelete:  func(e RoleEvent, h *RoleHandlers) { invoke(h.OnDelete, e) },
	tagRoleReorder: func(e RoleEvent, h *RoleHandlers) { invoke(h.OnReorder, e) },
}

var (
	_ = [1]struct{}{}[len(roleTypes)-int(roleTagCount)]
	_ = [1]struct{}{}[len(roleDecoders)-int(roleTagCount)]
	_ = [1]struct{}{}[len(roleDispatch)-int(roleTagCount)]
)

var roleFamily = newFamily(FamilyRole, ScopeGuild, roleTypes[:], roleDecoders[:])

// Role is a role's full state as sent on creation. Color is zero when
// the role has no color.
type Role struct {
	ID          ref.RoleID
	Name        ref.RoleName
	Color       ref.Color
	Position    int64
	Permissions ref.Permissions
}

// RoleCreate reports a new role.
type RoleCreate struct {
	WorkspaceID ref.WorkspaceID
	Role        Role
	CreatedAt   ref.Timestamp
}

// RoleUpdate reports changes to a role. At least one field changes.
// ColorHex may be cleared with an explicit null.
//
// The explicit shape nests the changes under updated_fields. The
// legacy shape puts the same keys at the top level of the payload and
// is used only when updated_fields is absent.
type RoleUpdate struct {
	WorkspaceID ref.WorkspaceID
	RoleID      ref.RoleID
	Name        wire.Patch[ref.RoleName]
	ColorHex    wire.Patch[ref.Color]
	Position    wire.Patch[int64]
	Permissions wire.Patch[ref.Permissions]
	UpdatedAt   ref.Timestamp
}

// RoleDelete reports that a role was removed.
type RoleDelete struct {
	WorkspaceID ref.WorkspaceID
	RoleID      ref.RoleID
	DeletedAt   ref.Timestamp
}

// RoleReorder gives the workspace's roles in their new order. At most
// 64 IDs; duplicates keep their first position.
type RoleReorder struct {
	WorkspaceID ref.WorkspaceID
	RoleIDs     []ref.RoleID
	UpdatedAt   ref.Timestamp
}

func (RoleCreate) Type() string      { return roleTypes[tagRoleCreate] }
func (RoleCreate) Family() Family    { return FamilyRole }
func (RoleCreate) isEvent()          {}
func (RoleCreate) roleTag() roleTag  { return tagRoleCreate }
func (RoleUpdate) Type() string      { return roleTypes[tagRoleUpdate] }
func (RoleUpdate) Family() Family    { return FamilyRole }
func (RoleUpdate) isEvent()          {}
func (RoleUpdate) roleTag() roleTag  { return tagRoleUpdate }
func (RoleDelete) Type() string      { return roleTypes[tagRoleDelete] }
func (RoleDelete) Family() Family    { return FamilyRole }
func (RoleDelete) isEvent()          {}
func (RoleDelete) roleTag() roleTag  { return tagRoleDelete }
func (RoleReorder) Type() string     { return roleTypes[tagRoleReorder] }
func (RoleReorder) Family() Family   { return FamilyRole }
func (RoleReorder) isEvent()         {}
func (RoleReorder) roleTag() roleTag { return tagRoleReorder }

func decodeRoleCreate(obj *wire.Object, _ *compatNote) RoleEvent {
	event := RoleCreate{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		CreatedAt:   wire.Required(obj, "created_at", wire.Timestamp),
	}
	role := obj.Nested("role")
	event.Role = Role{
		ID:          wire.Required(role, "role_id", roleID),
		Name:        wire.Required(role, "name", wire.Text(ref.ParseRoleName)),
		Position:    wire.Required(role, "position", wire.Uint),
		Permissions: wire.Required(role, "permissions", permissions),
	}
	event.Role.Color, _ = wire.Optional(role, "color_hex", wire.Text(ref.ParseColor))
	return event
}

func decodeRoleUpdate(obj *wire.Object, note *compatNote) RoleEvent {
	event := RoleUpdate{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		RoleID:      wire.Required(obj, "role_id", roleID),
		UpdatedAt:   wire.Required(obj, "updated_at", wire.Timestamp),
	}
	fields := obj
	if obj.Has("updated_fields") {
		fields = obj.Nested("updated_fields")
		note.take(CompatRoleUpdateFields, compat.ModeExplicit)
	} else {
		note.take(CompatRoleUpdateFields, compat.ModeLegacy)
	}
	event.Name = wire.ChangeOf(fields, "name", wire.Text(ref.ParseRoleName))
	event.ColorHex = wire.PatchOf(fields, "color_hex", wire.Text(ref.ParseColor))
	event.Position = wire.ChangeOf(fields, "position", wire.Uint)
	event.Permissions = wire.ChangeOf(fields, "permissions", permissions)
	requireChange(obj, "updated_fields",
		event.Name.Changed(), event.ColorHex.Changed(), event.Position.Changed(), event.Permissions.Changed())
	return event
}

func decodeRoleDelete(obj *wire.Object, _ *compatNote) RoleEvent {
	return RoleDelete{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		RoleID:      wire.Required(obj, "role_id", roleID),
		DeletedAt:   wire.Required(obj, "deleted_at", wire.Timestamp),
	}
}

func decodeRoleReorder(obj *wire.Object, _ *compatNote) RoleEvent {
	return RoleReorder{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		RoleIDs:     wire.List(obj, "role_ids", MaxRoleReorder, roleID),
		UpdatedAt:   wire.Required(obj, "updated_at", wire.Timestamp),
	}
}

// RoleDecoder decodes role family events and records which shape role
// updates use.
type RoleDecoder struct {
	recorder compat.Recorder
}

// NewRoleDecoder returns a decoder recording compatibility paths on
// recorder. A nil recorder disables recording.
func NewRoleDecoder(recorder compat.Recorder) RoleDecoder {
	return RoleDecoder{recorder: recorder}
}

// IsSupportedType reports whether eventType is a role event.
func (RoleDecoder) IsSupportedType(eventType string) bool {
	return roleFamily.supports(eventType)
}

// Decode validates payload as eventType. It returns false for any
// unknown type or invalid payload.
func (d RoleDecoder) Decode(eventType string, payload []byte) (RoleEvent, bool) {
	event, err := roleFamily.decode(d.recorder, eventType, payload)
	return event, err == nil
}

// RoleHandlers receives role events. Nil fields are skipped.
type RoleHandlers struct {
	OnCreate  func(RoleCreate)
	OnUpdate  func(RoleUpdate)
	OnDelete  func(RoleDelete)
	OnReorder func(RoleReorder)
}

// DispatchRole invokes the handler matching event, if set.
func DispatchRole(event RoleEvent, handlers *RoleHandlers) {
	if event == nil || handlers == nil {
		return
	}
	roleDispatch[event.roleTag()](event, handlers)
}
