// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest loads the gateway protocol manifest and checks it
// against the decoder registry.
//
// The manifest is the producer's declaration of every event type it
// may send. The consumer's registry must support exactly that set, and
// each type's scope must agree. The check runs at build and test time
// (see cmd/huddle-manifest-check and this package's tests), never on
// the event hot path.
//
// The manifest is JSONC: comments and trailing commas are allowed.
package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/huddle/gateway"
)

//go:embed protocol.jsonc
var embedded []byte

// Lifecycle is whether an event type is current or on its way out.
type Lifecycle string

const (
	LifecycleActive     Lifecycle = "active"
	LifecycleDeprecated Lifecycle = "deprecated"
)

// IsKnown reports whether l is one of the defined Lifecycle values.
func (l Lifecycle) IsKnown() bool {
	return l == LifecycleActive || l == LifecycleDeprecated
}

// Entry declares one event type.
type Entry struct {
	EventType     string        `json:"event_type"`
	SchemaVersion int           `json:"schema_version"`
	Scope         gateway.Scope `json:"scope"`
	Lifecycle     Lifecycle     `json:"lifecycle"`
	// Migration tells consumers what replaces a deprecated event.
	// Required when Lifecycle is deprecated.
	Migration string `json:"migration,omitempty"`
}

// Manifest is a loaded, structurally valid manifest.
type Manifest struct {
	Version int     `json:"version"`
	Events  []Entry `json:"events"`
}

// ErrInvalid is wrapped by every structural problem found by Load or
// Validate.
var ErrInvalid = errors.New("manifest: invalid")

// Default returns the manifest compiled into this binary.
func Default() (*Manifest, error) {
	return Load(embedded)
}

// LoadFile reads and loads the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: reading %s: %w", path, err)
	}
	return Load(data)
}

// Load parses JSONC manifest data and checks each entry: a non-empty
// event type declared once, schema_version > 0, a known scope and
// lifecycle, and migration guidance on every deprecated entry.
func Load(data []byte) (*Manifest, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()

	var manifest Manifest
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("%w: parsing: %w", ErrInvalid, err)
	}
	if manifest.Version <= 0 {
		return nil, fmt.Errorf("%w: version must be positive, got %d", ErrInvalid, manifest.Version)
	}
	if len(manifest.Events) == 0 {
		return nil, fmt.Errorf("%w: no events declared", ErrInvalid)
	}

	if problems := checkEntries(manifest.Events); len(problems) > 0 {
		return nil, fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(problems, "\n  "))
	}
	return &manifest, nil
}

// checkEntries reports every per-entry problem: an empty or repeated
// event type, a non-positive schema_version, an unknown scope or
// lifecycle, and a deprecated entry without migration guidance.
func checkEntries(entries []Entry) []string {
	var problems []string
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		label := fmt.Sprintf("events[%d] %q", i, entry.EventType)
		if entry.EventType == "" {
			problems = append(problems, fmt.Sprintf("events[%d]: event_type is empty", i))
		}
		if seen[entry.EventType] {
			problems = append(problems, label+": declared more than once")
		}
		seen[entry.EventType] = true
		if entry.SchemaVersion <= 0 {
			problems = append(problems, fmt.Sprintf("%s: schema_version must be positive, got %d", label, entry.SchemaVersion))
		}
		if !entry.Scope.IsKnown() {
			problems = append(problems, fmt.Sprintf("%s: unknown scope %q", label, entry.Scope))
		}
		if !entry.Lifecycle.IsKnown() {
			problems = append(problems, fmt.Sprintf("%s: unknown lifecycle %q", label, entry.Lifecycle))
		}
		if entry.Lifecycle == LifecycleDeprecated && strings.TrimSpace(entry.Migration) == "" {
			problems = append(problems, label+": deprecated without migration guidance")
		}
	}
	return problems
}

// DeclaredTypes returns every declared event type, sorted.
func (m *Manifest) DeclaredTypes() []string {
	types := make([]string, 0, len(m.Events))
	for _, entry := range m.Events {
		types = append(types, entry.EventType)
	}
	sort.Strings(types)
	return types
}

// Lookup returns the entry for eventType.
func (m *Manifest) Lookup(eventType string) (Entry, bool) {
	for _, entry := range m.Events {
		if entry.EventType == eventType {
			return entry, true
		}
	}
	return Entry{}, false
}

// Deprecated returns the deprecated entries in manifest order.
func (m *Manifest) Deprecated() []Entry {
	var deprecated []Entry
	for _, entry := range m.Events {
		if entry.Lifecycle == LifecycleDeprecated {
			deprecated = append(deprecated, entry)
		}
	}
	return deprecated
}
