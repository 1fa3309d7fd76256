// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// WorkspaceEvent is an event about a workspace as a whole.
type WorkspaceEvent interface {
	Event
	workspaceTag() workspaceTag
}

type workspaceTag uint8

const (
	tagWorkspaceUpdate workspaceTag = iota
	tagWorkspaceDelete
	workspaceTagCount
)

var workspaceTypes = [...]string{
	tagWorkspaceUpdate: "workspace_update",
	tagWorkspaceDelete: "workspace_delete",
}

var workspaceDecoders = [...]decodeFunc[WorkspaceEvent]{
	tagWorkspaceUpdate: decodeWorkspaceUpdate,
	tagWorkspaceDelete: decodeWorkspaceDelete,
}

var workspaceDispatch = [...]func(WorkspaceEvent, *WorkspaceHandlers){
	tagWorkspaceUpdate: func(e WorkspaceEvent, h *WorkspaceHandlers) { invoke(h.OnUpdate, e) },
	tagWorkspaceDelete: func(e WorkspaceEvent, h *WorkspaceHandlers) { invoke(h.OnDelete, e) },
}

var (
	_ = [1]struct{}{}[len(workspaceTypes)-int(workspaceTagCount)]
	_ = [1]struct{}{}[len(workspaceDecoders)-int(workspaceTagCount)]
	_ = [1]struct{}{}[len(workspaceDispatch)-int(workspaceTagCount)]
)

var workspaceFamily = newFamily(FamilyWorkspace, ScopeGuild, workspaceTypes[:], workspaceDecoders[:])

// WorkspaceUpdate reports changes to a workspace's settings. At least
// one field changes. IconURL and Description may be cleared.
type WorkspaceUpdate struct {
	WorkspaceID ref.WorkspaceID
	Name        wire.Patch[ref.WorkspaceName]
	IconURL     wire.Patch[string]
	Description wire.Patch[string]
	UpdatedAt   ref.Timestamp
}

// WorkspaceDelete reports that a workspace no longer exists.
type WorkspaceDelete struct {
	WorkspaceID ref.WorkspaceID
	DeletedAt   ref.Timestamp
}

func (WorkspaceUpdate) Type() string               { return workspaceTypes[tagWorkspaceUpdate] }
func (WorkspaceUpdate) Family() Family             { return FamilyWorkspace }
func (WorkspaceUpdate) isEvent()                   {}
func (WorkspaceUpdate) workspaceTag() workspaceTag { return tagWorkspaceUpdate }
func (WorkspaceDelete) Type() string               { return workspaceTypes[tagWorkspaceDelete] }
func (WorkspaceDelete) Family() Family             { return FamilyWorkspace }
func (WorkspaceDelete) isEvent()                   {}
func (WorkspaceDelete) workspaceTag() workspaceTag { return tagWorkspaceDelete }

func decodeWorkspaceUpdate(obj *wire.Object, _ *compatNote) WorkspaceEvent {
	event := WorkspaceUpdate{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		UpdatedAt:   wire.Required(obj, "updated_at", wire.Timestamp),
	}
	fields := obj.Nested("updated_fields")
	event.Name = wire.ChangeOf(fields, "name", wire.Text(ref.ParseWorkspaceName))
	event.IconURL = wire.PatchOf(fields, "icon_url", resourceURL)
	event.Description = wire.PatchOf(fields, "description", description)
	requireChange(obj, "updated_fields", event.Name.Changed(), event.IconURL.Changed(), event.Description.Changed())
	return event
}

func decodeWorkspaceDelete(obj *wire.Object, _ *compatNote) WorkspaceEvent {
	return WorkspaceDelete{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		DeletedAt:   wire.Required(obj, "deleted_at", wire.Timestamp),
	}
}

// WorkspaceDecoder decodes workspace family events.
type WorkspaceDecoder struct{}

// IsSupportedType reports whether eventType is a workspace event.
func (WorkspaceDecoder) IsSupportedType(eventType string) bool {
	return workspaceFamily.supports(eventType)
}

// Decode validates payload as eventType. It returns false for any
// unknown type or invalid payload.
func (WorkspaceDecoder) Decode(eventType string, payload []byte) (WorkspaceEvent, bool) {
	event, err := workspaceFamily.decode(nil, eventType, payload)
	return event, err == nil
}

// WorkspaceHandlers receives workspace events. Nil fields are skipped.
type WorkspaceHandlers struct {
	OnUpdate func(WorkspaceUpdate)
	OnDelete func(WorkspaceDelete)
}

// DispatchWorkspace invokes the handler matching event, if set.
func DispatchWorkspace(event WorkspaceEvent, handlers *WorkspaceHandlers) {
	if event == nil || handlers == nil {
		return
	}
	workspaceDispatch[event.workspaceTag()](event, handlers)
}
