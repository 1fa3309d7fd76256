// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"

	"github.com/bureau-foundation/huddle/lib/compat"
	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// CompatParticipantList is the compatibility counter path for the
// participant list shape of voice_participant_sync.
const CompatParticipantList = "voice_participant_sync.participants"

// VoiceEvent is an event about who is in a voice channel and what they
// are streaming.
type VoiceEvent interface {
	Event
	voiceTag() voiceTag
}

type voiceTag uint8

const (
	tagParticipantSync voiceTag = iota
	tagParticipantJoined
	tagParticipantLeft
	tagParticipantState
	tagStreamStarted
	tagStreamEnded
	voiceTagCount
)

var voiceTypes = [...]string{
	tagParticipantSync:   "voice_participant_sync",
	tagParticipantJoined: "voice_participant_joined",
	tagParticipantLeft:   "voice_participant_left",
	tagParticipantState:  "voice_participant_state",
	tagStreamStarted:     "voice_stream_started",
	tagStreamEnded:       "voice_stream_ended",
}

var voiceDecoders = [...]decodeFunc[VoiceEvent]{
	tagParticipantSync:   decodeParticipantSync,
	tagParticipantJoined: decodeParticipantJoined,
	tagParticipantLeft:   decodeParticipantLeft,
	tagParticipantState:  decodeParticipantState,
	tagStreamStarted:     decodeStreamStarted,
	tagStreamEnded:       decodeStreamEnded,
}

var voiceDispatch = [...]func(VoiceEvent, *VoiceHandlers){
	tagParticipantSync:   func(e VoiceEvent, h *VoiceHandlers) { invoke(h.OnParticipantSync, e) },
	tagParticipantJoined: func(e VoiceEvent, h *VoiceHandlers) { invoke(h.OnParticipantJoined, e) },
	tagParticipantLeft:   func(e VoiceEvent, h *VoiceHandlers) { invoke(h.OnParticipantLeft, e) },
	tagParticipantState:  func(e VoiceEvent, h *VoiceHandlers) { invoke(h.OnParticipantState, e) },
	tagStreamStarted:     func(e VoiceEvent, h *VoiceHandlers) { invoke(h.OnStreamStarted, e) },
	tagStreamEnded:       func(e VoiceEvent, h *VoiceHandlers) { invoke(h.OnStreamEnded, e) },
}

var (
	_ = [1]struct{}{}[len(voiceTypes)-int(voiceTagCount)]
	_ = [1]struct{}{}[len(voiceDecoders)-int(voiceTagCount)]
	_ = [1]struct{}{}[len(voiceDispatch)-int(voiceTagCount)]
)

var voiceFamily = newFamily(FamilyVoice, ScopeChannel, voiceTypes[:], voiceDecoders[:])

// Participant is one user connected to a voice channel.
type Participant struct {
	UserID   ref.UserID
	Muted    bool
	Deafened bool
}

// ParticipantSync replaces the full participant list of a voice
// channel. Participants keep the order of their first appearance;
// repeated user IDs are dropped.
//
// The explicit shape lists objects {user_id, muted, deafened}. The
// legacy shape lists bare user ID strings, decoded as unmuted and
// undeafened. A list mixing both shapes is invalid.
type ParticipantSync struct {
	WorkspaceID  ref.WorkspaceID
	ChannelID    ref.ChannelID
	Participants []Participant
	SyncedAt     ref.Timestamp
}

// ParticipantJoined reports a single join. Superseded by
// ParticipantSync.
type ParticipantJoined struct {
	WorkspaceID ref.WorkspaceID
	ChannelID   ref.ChannelID
	Participant Participant
	JoinedAt    ref.Timestamp
}

// ParticipantLeft reports a single leave. Superseded by
// ParticipantSync.
type ParticipantLeft struct {
	WorkspaceID ref.WorkspaceID
	ChannelID   ref.ChannelID
	UserID      ref.UserID
	LeftAt      ref.Timestamp
}

// ParticipantState reports a change to one participant's audio state.
// At least one field changes.
type ParticipantState struct {
	WorkspaceID ref.WorkspaceID
	ChannelID   ref.ChannelID
	UserID      ref.UserID
	Muted       wire.Patch[bool]
	Deafened    wire.Patch[bool]
	Speaking    wire.Patch[bool]
	UpdatedAt   ref.Timestamp
}

// StreamStarted reports a new screen share or camera stream.
type StreamStarted struct {
	WorkspaceID ref.WorkspaceID
	ChannelID   ref.ChannelID
	StreamID    ref.StreamID
	UserID      ref.UserID
	Kind        ref.StreamKind
	StartedAt   ref.Timestamp
}

// StreamEnded reports the end of a stream.
type StreamEnded struct {
	WorkspaceID ref.WorkspaceID
	ChannelID   ref.ChannelID
	StreamID    ref.StreamID
	EndedAt     ref.Timestamp
}

func (ParticipantSync) Type() string         { return voiceTypes[tagParticipantSync] }
func (ParticipantSync) Family() Family       { return FamilyVoice }
func (ParticipantSync) isEvent()             {}
func (ParticipantSync) voiceTag() voiceTag   { return tagParticipantSync }
func (ParticipantJoined) Type() string       { return voiceTypes[tagParticipantJoined] }
func (ParticipantJoined) Family() Family     { return FamilyVoice }
func (ParticipantJoined) isEvent()           {}
func (ParticipantJoined) voiceTag() voiceTag { return tagParticipantJoined }
func (ParticipantLeft) Type() string         { return voiceTypes[tagParticipantLeft] }
func (ParticipantLeft) Family() Family       { return FamilyVoice }
func (ParticipantLeft) isEvent()             {}
func (ParticipantLeft) voiceTag() voiceTag   { return tagParticipantLeft }
func (ParticipantState) Type() string        { return voiceTypes[tagParticipantState] }
func (ParticipantState) Family() Family      { return FamilyVoice }
func (ParticipantState) isEvent()            {}
func (ParticipantState) voiceTag() voiceTag  { return tagParticipantState }
func (StreamStarted) Type() string           { return voiceTypes[tagStreamStarted] }
func (StreamStarted) Family() Family         { return FamilyVoice }
func (StreamStarted) isEvent()               {}
func (StreamStarted) voiceTag() voiceTag     { return tagStreamStarted }
func (StreamEnded) Type() string             { return voiceTypes[tagStreamEnded] }
func (StreamEnded) Family() Family           { return FamilyVoice }
func (StreamEnded) isEvent()                 {}
func (StreamEnded) voiceTag() voiceTag       { return tagStreamEnded }

// participantShape tracks which list shape a sync payload used.
type participantShape uint8

const (
	shapeUnknown participantShape = iota
	shapeLegacy
	shapeExplicit
)

func (s *participantShape) observe(next participantShape) error {
	if *s == shapeUnknown {
		*s = next
		return nil
	}
	if *s != next {
		return fmt.Errorf("%w: participant list mixes user ID strings and objects", wire.ErrType)
	}
	return nil
}

func decodeParticipant(v wire.Value) (Participant, error) {
	element, err := wire.AsObject(v)
	if err != nil {
		return Participant{}, err
	}
	participant := Participant{
		UserID:   wire.Required(element, "user_id", userID),
		Muted:    wire.Required(element, "muted", wire.Bool),
		Deafened: wire.Required(element, "deafened", wire.Bool),
	}
	return participant, element.Err()
}

func decodeParticipantSync(obj *wire.Object, note *compatNote) VoiceEvent {
	var shape participantShape
	entry := func(v wire.Value) (Participant, error) {
		if v.IsString() {
			if err := shape.observe(shapeLegacy); err != nil {
				return Participant{}, err
			}
			id, err := userID(v)
			return Participant{UserID: id}, err
		}
		if err := shape.observe(shapeExplicit); err != nil {
			return Participant{}, err
		}
		return decodeParticipant(v)
	}

	event := ParticipantSync{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelID:   wire.Required(obj, "channel_id", channelID),
		Participants: wire.ListBy(obj, "participants", MaxVoiceParticipants, entry,
			func(p Participant) ref.UserID { return p.UserID }),
		SyncedAt: wire.Required(obj, "synced_at", wire.Timestamp),
	}

	// An empty list carries no shape and is counted as explicit.
	if shape == shapeLegacy {
		note.take(CompatParticipantList, compat.ModeLegacy)
	} else {
		note.take(CompatParticipantList, compat.ModeExplicit)
	}
	return event
}

func decodeParticipantJoined(obj *wire.Object, _ *compatNote) VoiceEvent {
	event := ParticipantJoined{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelID:   wire.Required(obj, "channel_id", channelID),
		Participant: Participant{UserID: wire.Required(obj, "user_id", userID)},
		JoinedAt:    wire.Required(obj, "joined_at", wire.Timestamp),
	}
	event.Participant.Muted, _ = wire.Optional(obj, "muted", wire.Bool)
	event.Participant.Deafened, _ = wire.Optional(obj, "deafened", wire.Bool)
	return event
}

func decodeParticipantLeft(obj *wire.Object, _ *compatNote) VoiceEvent {
	return ParticipantLeft{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelID:   wire.Required(obj, "channel_id", channelID),
		UserID:      wire.Required(obj, "user_id", userID),
		LeftAt:      wire.Required(obj, "left_at", wire.Timestamp),
	}
}

func decodeParticipantState(obj *wire.Object, _ *compatNote) VoiceEvent {
	event := ParticipantState{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelID:   wire.Required(obj, "channel_id", channelID),
		UserID:      wire.Required(obj, "user_id", userID),
		UpdatedAt:   wire.Required(obj, "updated_at", wire.Timestamp),
	}
	fields := obj.Nested("updated_fields")
	event.Muted = wire.ChangeOf(fields, "muted", wire.Bool)
	event.Deafened = wire.ChangeOf(fields, "deafened", wire.Bool)
	event.Speaking = wire.ChangeOf(fields, "speaking", wire.Bool)
	requireChange(obj, "updated_fields", event.Muted.Changed(), event.Deafened.Changed(), event.Speaking.Changed())
	return event
}

func decodeStreamStarted(obj *wire.Object, _ *compatNote) VoiceEvent {
	return StreamStarted{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelID:   wire.Required(obj, "channel_id", channelID),
		StreamID:    wire.Required(obj, "stream_id", streamID),
		UserID:      wire.Required(obj, "user_id", userID),
		Kind:        wire.Required(obj, "kind", wire.Text(ref.ParseStreamKind)),
		StartedAt:   wire.Required(obj, "started_at", wire.Timestamp),
	}
}

func decodeStreamEnded(obj *wire.Object, _ *compatNote) VoiceEvent {
	return StreamEnded{
		WorkspaceID: wire.Required(obj, "workspace_id", workspaceID),
		ChannelID:   wire.Required(obj, "channel_id", channelID),
		StreamID:    wire.Required(obj, "stream_id", streamID),
		EndedAt:     wire.Required(obj, "ended_at", wire.Timestamp),
	}
}

// VoiceDecoder decodes voice family events and records which
// participant list shape sync payloads use.
type VoiceDecoder struct {
	recorder compat.Recorder
}

// NewVoiceDecoder returns a decoder recording compatibility paths on
// recorder. A nil recorder disables recording.
func NewVoiceDecoder(recorder compat.Recorder) VoiceDecoder {
	return VoiceDecoder{recorder: recorder}
}

// IsSupportedType reports whether eventType is a voice event.
func (VoiceDecoder) IsSupportedType(eventType string) bool {
	return voiceFamily.supports(eventType)
}

// Decode validates payload as eventType. It returns false for any
// unknown type or invalid payload.
func (d VoiceDecoder) Decode(eventType string, payload []byte) (VoiceEvent, bool) {
	event, err := voiceFamily.decode(d.recorder, eventType, payload)
	return event, err == nil
}

// VoiceHandlers receives voice events. Nil fields are skipped.
type VoiceHandlers struct {
	OnParticipantSync   func(ParticipantSync)
	OnParticipantJoined func(ParticipantJoined)
	OnParticipantLeft   func(ParticipantLeft)
	OnParticipantState  func(ParticipantState)
	OnStreamStarted     func(StreamStarted)
	OnStreamEnded       func(StreamEnded)
}

// DispatchVoice invokes the handler matching event, if set.
func DispatchVoice(event VoiceEvent, handlers *VoiceHandlers) {
	if event == nil || handlers == nil {
		return
	}
	voiceDispatch[event.voiceTag()](event, handlers)
}
