// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compat counts how much gateway traffic still arrives in a
// legacy payload shape during a protocol migration.
//
// Decoders that accept both a legacy and an explicit shape for a field
// record which one they took, after the payload has fully decoded.
// Counting never changes decode behavior. Counters only increase;
// the single way to reset them is the function returned by NewForTest.
package compat

import (
	"sort"
	"sync"
)

// Mode is the decode path a payload took.
type Mode string

const (
	// ModeLegacy is the older payload shape kept for compatibility.
	ModeLegacy Mode = "legacy"

	// ModeExplicit is the current, strict payload shape.
	ModeExplicit Mode = "explicit"
)

// IsKnown reports whether m is one of the defined Mode values.
func (m Mode) IsKnown() bool {
	return m == ModeLegacy || m == ModeExplicit
}

// Key identifies one counter: a field path within an event type, such
// as "workspace_role_update.updated_fields", and the mode taken.
type Key struct {
	Path string
	Mode Mode
}

// Sample is a counter value at the time of a Snapshot.
type Sample struct {
	Key
	Count uint64
}

// Recorder is the write side of Counters, accepted by decoders.
type Recorder interface {
	Record(path string, mode Mode)
}

// Counters is a set of monotonic counters. The zero value is not
// usable; construct with New or NewForTest. Safe for concurrent use.
type Counters struct {
	mu     sync.Mutex
	counts map[Key]uint64
}

var _ Recorder = (*Counters)(nil)

// New returns an empty set of counters for production wiring.
func New() *Counters {
	return &Counters{counts: make(map[Key]uint64)}
}

// NewForTest returns empty counters and a function that resets them.
func NewForTest() (*Counters, func()) {
	counters := New()
	return counters, counters.reset
}

// Record increments the counter for (path, mode).
func (c *Counters) Record(path string, mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[Key{Path: path, Mode: mode}]++
}

// Value returns the current count for (path, mode).
func (c *Counters) Value(path string, mode Mode) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[Key{Path: path, Mode: mode}]
}

// Snapshot returns every non-zero counter ordered by path then mode.
func (c *Counters) Snapshot() []Sample {
	c.mu.Lock()
	samples := make([]Sample, 0, len(c.counts))
	for key, count := range c.counts {
		samples = append(samples, Sample{Key: key, Count: count})
	}
	c.mu.Unlock()

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Path != samples[j].Path {
			return samples[i].Path < samples[j].Path
		}
		return samples[i].Mode < samples[j].Mode
	})
	return samples
}

// LegacyShare returns the fraction of decodes for path that took the
// legacy shape, and whether any decodes were recorded.
func (c *Counters) LegacyShare(path string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	legacy := c.counts[Key{Path: path, Mode: ModeLegacy}]
	total := legacy + c.counts[Key{Path: path, Mode: ModeExplicit}]
	if total == 0 {
		return 0, false
	}
	return float64(legacy) / float64(total), true
}

func (c *Counters) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.counts)
}
