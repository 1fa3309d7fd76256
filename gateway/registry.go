// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"sort"

	"github.com/bureau-foundation/huddle/lib/compat"
)

// families lists every family decoder, indexed by Family.
var families = [...]familyDecoder{
	FamilySession:   sessionFamily,
	FamilyUser:      userFamily,
	FamilyVoice:     voiceFamily,
	FamilyWorkspace: workspaceFamily,
	FamilyChannel:   channelFamily,
	FamilyRole:      roleFamily,
	FamilyMember:    memberFamily,
}

var _ = [1]struct{}{}[len(families)-int(familyCount)]

// Registry decodes any supported event type by routing it to its
// family. A Registry is immutable after construction and safe for
// concurrent use; compatibility counts go to the recorder it was
// built with.
type Registry struct {
	recorder compat.Recorder
	byType   map[string]familyDecoder
	types    []string
}

// NewRegistry returns a registry over every family. A nil recorder
// disables compatibility counting.
func NewRegistry(recorder compat.Recorder) *Registry {
	registry := &Registry{
		recorder: recorder,
		byType:   make(map[string]familyDecoder),
	}
	for _, family := range families {
		for _, eventType := range family.supportedTypes() {
			if owner, taken := registry.byType[eventType]; taken {
				panic(fmt.Sprintf("gateway: %q declared by both %s and %s families", eventType, owner.familyID(), family.familyID()))
			}
			registry.byType[eventType] = family
			registry.types = append(registry.types, eventType)
		}
	}
	sort.Strings(registry.types)
	return registry
}

// SupportedTypes returns every supported event type, sorted.
func (r *Registry) SupportedTypes() []string {
	types := make([]string, len(r.types))
	copy(types, r.types)
	return types
}

// IsSupportedType reports whether any family supports eventType.
func (r *Registry) IsSupportedType(eventType string) bool {
	_, ok := r.byType[eventType]
	return ok
}

// ScopeOf returns the scope of eventType's family.
func (r *Registry) ScopeOf(eventType string) (Scope, bool) {
	family, ok := r.byType[eventType]
	if !ok {
		return "", false
	}
	return family.familyScope(), true
}

// FamilyOf returns the family that decodes eventType.
func (r *Registry) FamilyOf(eventType string) (Family, bool) {
	family, ok := r.byType[eventType]
	if !ok {
		return 0, false
	}
	return family.familyID(), true
}

// Decode validates payload as eventType. Errors wrap ErrUnknownType
// or ErrInvalidPayload.
func (r *Registry) Decode(eventType string, payload []byte) (Event, error) {
	family, ok := r.byType[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, eventType)
	}
	return family.decodeEvent(r.recorder, eventType, payload)
}

// DecodeEnvelope decodes the event carried by envelope.
func (r *Registry) DecodeEnvelope(envelope Envelope) (Event, error) {
	return r.Decode(envelope.Type, envelope.Payload)
}
