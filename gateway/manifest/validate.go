// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bureau-foundation/huddle/gateway"
)

// MismatchError reports how the manifest and the decoder registry
// disagree.
type MismatchError struct {
	// Missing lists declared types the registry does not support.
	Missing []string
	// Extra lists supported types the manifest does not declare.
	Extra []string
	// Scopes lists types whose declared scope differs from the scope
	// of the family that decodes them.
	Scopes []string
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "declared but not supported: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "supported but not declared: "+strings.Join(e.Extra, ", "))
	}
	if len(e.Scopes) > 0 {
		parts = append(parts, "scope mismatch: "+strings.Join(e.Scopes, ", "))
	}
	return "manifest: schema mismatch: " + strings.Join(parts, "; ")
}

// Validate checks each entry the way Load does, then that the manifest
// declares exactly the supported types. A malformed entry yields an
// error wrapping ErrInvalid; a set disagreement yields a
// *MismatchError.
func Validate(m *Manifest, supported []string) error {
	if problems := checkEntries(m.Events); len(problems) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(problems, "\n  "))
	}
	declared := make(map[string]bool, len(m.Events))
	for _, entry := range m.Events {
		declared[entry.EventType] = true
	}
	supportedSet := make(map[string]bool, len(supported))
	for _, eventType := range supported {
		supportedSet[eventType] = true
	}

	mismatch := &MismatchError{}
	for eventType := range declared {
		if !supportedSet[eventType] {
			mismatch.Missing = append(mismatch.Missing, eventType)
		}
	}
	for eventType := range supportedSet {
		if !declared[eventType] {
			mismatch.Extra = append(mismatch.Extra, eventType)
		}
	}
	if len(mismatch.Missing) == 0 && len(mismatch.Extra) == 0 {
		return nil
	}
	sort.Strings(mismatch.Missing)
	sort.Strings(mismatch.Extra)
	return mismatch
}

// ScopeSource reports the scope the consumer routes an event type in.
// *gateway.Registry implements it.
type ScopeSource interface {
	ScopeOf(eventType string) (gateway.Scope, bool)
}

// ValidateScopes checks each declared entry's scope against source.
// Entries the source does not know are left to Validate.
func ValidateScopes(m *Manifest, source ScopeSource) error {
	mismatch := &MismatchError{}
	for _, entry := range m.Events {
		scope, ok := source.ScopeOf(entry.EventType)
		if ok && scope != entry.Scope {
			mismatch.Scopes = append(mismatch.Scopes,
				fmt.Sprintf("%s (manifest %s, decoder %s)", entry.EventType, entry.Scope, scope))
		}
	}
	if len(mismatch.Scopes) == 0 {
		return nil
	}
	return mismatch
}

// Check runs Validate and ValidateScopes against a registry and
// returns the combined mismatch, if any. A malformed entry is returned
// as is, without the scope comparison.
func Check(m *Manifest, registry *gateway.Registry) error {
	var combined MismatchError
	if err := Validate(m, registry.SupportedTypes()); err != nil {
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			return err
		}
		combined.Missing = mismatch.Missing
		combined.Extra = mismatch.Extra
	}
	if err := ValidateScopes(m, registry); err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			combined.Scopes = mismatch.Scopes
		}
	}
	if len(combined.Missing)+len(combined.Extra)+len(combined.Scopes) == 0 {
		return nil
	}
	return &combined
}
