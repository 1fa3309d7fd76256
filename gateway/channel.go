// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// ChannelEvent is an event about the channels of a workspace.
type ChannelEvent interface {
	Event
	channelTag() channelTag
}

type channelTag uint8

const (
	tagChannelCreate channelTag = iota
	tagChannelUpdate
	tagChannelDelete
	tagChannelReorder
	channelTagCount
)

var channelTypes = [...]string{
	tagChannelCreate:  "workspace_channel_create",
	tagChannelUpdate:  "workspace_channel_update",
	tagChannelDelete:  "workspace_channel_delete",
	tagChannelReorder: "workspace_channel_reorder",
}

var channelDecoders = [...]decodeFunc[ChannelEvent]{
	tagChannelCreate:  decodeChannelCreate,
	tagChannelUpdate:  decodeChannelUpdate,
	tagChannelDelete:  decodeChannelDelete,
	tagChannelReorder: decodeChannelReorder,
}

var channelDispatch = [...]func(ChannelEvent, *ChannelHandlers){
	tagChannelCreate:  func(e ChannelEvent, h *ChannelHandlers) { invoke(h.OnCreate, e) },
	tagChannelUpdate:  func(e ChannelEvent, h *ChannelHandlers) { invoke(h.OnUpdate, e) },
	tagChannelDelete:  func(e ChannelEvent, h *ChannelHandlers) { invoke(h.OnDelete, e) },
	tagChannelReorder: func(e ChannelEvent, h *ChannelHandlers) { invoke(h.OnReorder, e) },
}

var (
	_ = [1]struct{}{}[len(channelTypes)-int(channelTagCount)]
	_ = [1]struct{}{}[len(channelDecoders)-int(channelTagCount)]
	_ = [1]struct{}{}[len(channelDispatch)-int(channelTagCount)]
)

var channelFamily = newFamily(FamilyChannel, ScopeGuild, channelTypes[:], channelDecoders[:])

// Channel is a channel's full state as sent on creation.
//
//	channel_id → ID
//	name       → Name
//	kind       → Kind ("text" or "voice")
//	position   → Position (non-negative)
//	topic      → Topic (optional, may be null)
type Channel struct {
	ID       ref.ChannelID
	Name     ref.ChannelName
	Kind     ref.ChannelKind
	Position int64
	Topic    string
}

// ChannelCreate reports a new channel.
type ChannelCreate struct {
	WorkspaceID ref.WorkspaceID
	Channel     Channel
	CreatedAt   ref.Timestamp
}

// ChannelUpdate reports changes to a channel. At least one field
// changes. Only Topic may be cleared.
type ChannelUpdate struct {
	WorkspaceID ref.WorkspaceID
	ChannelID   ref.ChannelID
	Name        wire.Patch[ref.ChannelName]
	Topic       wire.Patch[string]
	Position    wire.Patch[int64]
	UpdatedAt   ref.Timestamp
}

// ChannelDelete reports that a channel was removed.
type ChannelDelete struct {
	WorkspaceID ref.WorkspaceID
	ChannelID   ref.ChannelID
	DeletedAt   ref.Timestamp
}

// ChannelReorder gives the workspace's channels in their new order.
// At most 500 IDs; duplicates keep their first position.
type ChannelReorder struct {
	WorkspaceID ref.WorkspaceID
	ChannelIDs  []ref.ChannelID
	UpdatedAt   ref.Timestamp
}

func (ChannelCreate) Type() string            { return channelTypes[tagChannelCreate] }
func (ChannelCreate) Family() Family          { return FamilyChannel }
func (ChannelCreate) isEvent()                {}
func (ChannelCreate) channelTag() channelTag  { return tagChannelCreate }
func (ChannelUpdate) Type() string            { return channelTypes[tagChannelUpdate] }
func (ChannelUpdate) Family() Family          { return FamilyChannel }
func (ChannelUpdate) isEvent()                {}
func (ChannelUpdate) channelTag() channelTag  { return tagChannelUpdate }
func (ChannelDelete) Type() string            { return channelTypes[tagChannelDelete] }
func (ChannelDelete) Family() Family          { return FamilyChannel }
func (ChannelDelete) isEvent()                {}
func (ChannelDelete) channelTag() channelTag  { return tagChannelDelete }
func (ChannelReorder) Type() string           { return channelTypes[tagChannelReorder] }
func (ChannelReorder) Family() Family         { return FamilyChannel }
func (ChannelReorder) isEvent()               {}
func (ChannelReorder) channelTag() channelTag { return tagChannelReorder }

func decodeChannelCreate(obj *wire.Object, _ *compatNote) ChannelEvent {
	event := ChannelCreate{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		CreatedAt:   wire.Required(obj, "created_at", wire.Timestamp),
	}
	channel := obj.Nested("channel")
	event.Channel = Channel{
		ID:       wire.Required(channel, "channel_id", channelID),
		Name:     wire.Required(channel, "name", wire.Text(ref.ParseChannelName)),
		Kind:     wire.Required(channel, "kind", wire.Text(ref.ParseChannelKind)),
		Position: wire.Required(channel, "position", wire.Uint),
	}
	event.Channel.Topic, _ = wire.Optional(channel, "topic", topic)
	return event
}

func decodeChannelUpdate(obj *wire.Object, _ *compatNote) ChannelEvent {
	event := ChannelUpdate{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelID:   wire.Required(obj, "channel_id", channelID),
		UpdatedAt:   wire.Required(obj, "updated_at", wire.Timestamp),
	}
	fields := obj.Nested("updated_fields")
	event.Name = wire.ChangeOf(fields, "name", wire.Text(ref.ParseChannelName))
	event.Topic = wire.PatchOf(fields, "topic", topic)
	event.Position = wire.ChangeOf(fields, "position", wire.Uint)
	requireChange(obj, "updated_fields", event.Name.Changed(), event.Topic.Changed(), event.Position.Changed())
	return event
}

func decodeChannelDelete(obj *wire.Object, _ *compatNote) ChannelEvent {
	return ChannelDelete{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelID:   wire.Required(obj, "channel_id", channelID),
		DeletedAt:   wire.Required(obj, "deleted_at", wire.Timestamp),
	}
}

func decodeChannelReorder(obj *wire.Object, _ *compatNote) ChannelEvent {
	return ChannelReorder{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelIDs:  wire.List(obj, "channel_ids", MaxChannelReorder, channelID),
		UpdatedAt:   wire.Required(obj, "updated_at", wire.Timestamp),
	}
}

// ChannelDecoder decodes channel family events.
type ChannelDecoder struct{}

// IsSupportedType reports whether eventType is a channel event.
func (ChannelDecoder) IsSupportedType(eventType string) bool {
	return channelFamily.supports(eventType)
}

// Decode validates payload as eventType. It returns false for any
// unknown type or invalid payload.
func (ChannelDecoder) Decode(eventType string, payload []byte) (ChannelEvent, bool) {
	event, err := channelFamily.decode(nil, eventType, payload)
	return event, err == nil
}

// ChannelHandlers receives channel events. Nil fields are skipped.
type ChannelHandlers struct {
	OnCreate  func(ChannelCreate)
	OnUpdate  func(ChannelUpdate)
	OnDelete  func(ChannelDelete)
	OnReorder func(ChannelReorder)
}

// DispatchChannel invokes the handler matching event, if set.
func DispatchChannel(event ChannelEvent, handlers *ChannelHandlers) {
	if event == nil || handlers == nil {
		return
	}
	channelDispatch[event.channelTag()](event, handlers)
}
