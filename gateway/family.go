// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"sort"

	"github.com/bureau-foundation/huddle/lib/compat"
	"github.com/bureau-foundation/huddle/lib/wire"
)

// Scope is the routing scope an event type belongs to.
type Scope string

const (
	ScopeConnection Scope = "connection"
	ScopeChannel    Scope = "channel"
	ScopeGuild      Scope = "guild"
	ScopeUser       Scope = "user"
)

// IsKnown reports whether s is one of the defined Scope values.
func (s Scope) IsKnown() bool {
	switch s {
	case ScopeConnection, ScopeChannel, ScopeGuild, ScopeUser:
		return true
	}
	return false
}

// Family groups related event types.
type Family uint8

const (
	FamilySession Family = iota
	FamilyUser
	FamilyVoice
	FamilyWorkspace
	FamilyChannel
	FamilyRole
	FamilyMember
	familyCount
)

var familyNames = [...]string{
	FamilySession:   "session",
	FamilyUser:      "user",
	FamilyVoice:     "voice",
	FamilyWorkspace: "workspace",
	FamilyChannel:   "channel",
	FamilyRole:      "role",
	FamilyMember:    "member",
}

var _ = [1]struct{}{}[len(familyNames)-int(familyCount)]

func (f Family) String() string {
	if f < familyCount {
		return familyNames[f]
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// Event is any decoded gateway event. The set of implementations is
// closed by the unexported isEvent method: only this package's event
// types satisfy it, and each also implements exactly one family
// interface (SessionEvent, VoiceEvent, ...).
type Event interface {
	// Type returns the wire name of the event, e.g. "workspace_update".
	Type() string

	// Family returns the family the event belongs to.
	Family() Family

	isEvent()
}

// compatNote is filled in by a decode function that took a
// compatibility path. It is recorded only if the whole payload
// decodes.
type compatNote struct {
	path string
	mode compat.Mode
}

func (n *compatNote) take(path string, mode compat.Mode) {
	n.path = path
	n.mode = mode
}

// decodeFunc reads one event type's fields from obj. Failures are
// recorded on obj; the returned event is discarded if obj.Err is set.
type decodeFunc[E Event] func(obj *wire.Object, note *compatNote) E

// family holds the per-tag tables of one event family. names and
// decoders are indexed by the family's tag enum.
type family[E Event] struct {
	id       Family
	scope    Scope
	names    []string
	decoders []decodeFunc[E]
	index    map[string]int
}

func newFamily[E Event](id Family, scope Scope, names []string, decoders []decodeFunc[E]) *family[E] {
	if len(names) != len(decoders) {
		panic(fmt.Sprintf("gateway: %s family has %d names and %d decoders", id, len(names), len(decoders)))
	}
	index := make(map[string]int, len(names))
	for tag, name := range names {
		if name == "" || decoders[tag] == nil {
			panic(fmt.Sprintf("gateway: %s family tag %d has no table entry", id, tag))
		}
		if _, duplicate := index[name]; duplicate {
			panic(fmt.Sprintf("gateway: %s family declares %q twice", id, name))
		}
		index[name] = tag
	}
	return &family[E]{id: id, scope: scope, names: names, decoders: decoders, index: index}
}

// supports reports membership by exact map lookup, so names that
// collide with built-in property names of other runtimes ("toString",
// "__proto__") are never supported unless declared.
func (f *family[E]) supports(eventType string) bool {
	_, ok := f.index[eventType]
	return ok
}

func (f *family[E]) supportedTypes() []string {
	types := make([]string, len(f.names))
	copy(types, f.names)
	sort.Strings(types)
	return types
}

func (f *family[E]) familyID() Family { return f.id }

func (f *family[E]) familyScope() Scope { return f.scope }

// decode validates payload as eventType. The compatibility note is
// recorded on recorder only after a successful decode.
func (f *family[E]) decode(recorder compat.Recorder, eventType string, payload []byte) (E, error) {
	var zero E
	tag, ok := f.index[eventType]
	if !ok {
		return zero, fmt.Errorf("%w: %q is not a %s event", ErrUnknownType, eventType, f.id)
	}
	obj, err := wire.ParseObject(payload)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, eventType, err)
	}
	var note compatNote
	event := f.decoders[tag](obj, &note)
	if err := obj.Err(); err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, eventType, err)
	}
	if note.path != "" && recorder != nil {
		recorder.Record(note.path, note.mode)
	}
	return event, nil
}

func (f *family[E]) decodeEvent(recorder compat.Recorder, eventType string, payload []byte) (Event, error) {
	event, err := f.decode(recorder, eventType, payload)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// familyDecoder is the type-erased view of a family used by Registry.
type familyDecoder interface {
	familyID() Family
	familyScope() Scope
	supports(eventType string) bool
	supportedTypes() []string
	decodeEvent(recorder compat.Recorder, eventType string, payload []byte) (Event, error)
}

// invoke calls handler with event narrowed to its concrete type. The
// dispatch tables guarantee the tag and type agree.
func invoke[V any](handler func(V), event any) {
	if handler != nil {
		handler(event.(V))
	}
}
