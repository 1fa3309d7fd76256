// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "fmt"

type patchState uint8

const (
	patchUnchanged patchState = iota
	patchCleared
	patchSet
)

// Patch is a field in an update payload that may be left alone,
// cleared with an explicit null, or set to a new value. The zero value
// is Unchanged.
type Patch[V any] struct {
	state patchState
	value V
}

// Unchanged returns a patch that leaves the field as it is.
func Unchanged[V any]() Patch[V] { return Patch[V]{} }

// Cleared returns a patch that removes the field's value.
func Cleared[V any]() Patch[V] { return Patch[V]{state: patchCleared} }

// Set returns a patch that replaces the field's value.
func Set[V any](value V) Patch[V] { return Patch[V]{state: patchSet, value: value} }

// IsUnchanged reports whether the field was absent from the update.
func (p Patch[V]) IsUnchanged() bool { return p.state == patchUnchanged }

// IsCleared reports whether the field was explicitly null.
func (p Patch[V]) IsCleared() bool { return p.state == patchCleared }

// IsSet reports whether the field carries a new value.
func (p Patch[V]) IsSet() bool { return p.state == patchSet }

// Changed reports whether the patch clears or sets the field.
func (p Patch[V]) Changed() bool { return p.state != patchUnchanged }

// Get returns the new value and whether one is set.
func (p Patch[V]) Get() (V, bool) { return p.value, p.state == patchSet }

// Apply returns the field's value after the patch: current when
// unchanged, the zero value when cleared, the new value when set.
func (p Patch[V]) Apply(current V) V {
	switch p.state {
	case patchCleared:
		var zero V
		return zero
	case patchSet:
		return p.value
	}
	return current
}

func (p Patch[V]) String() string {
	switch p.state {
	case patchCleared:
		return "cleared"
	case patchSet:
		return fmt.Sprintf("set(%v)", p.value)
	}
	return "unchanged"
}
