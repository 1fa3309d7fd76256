// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compat

import (
	"sync"
	"testing"
)

func TestRecordAndValue(t *testing.T) {
	t.Parallel()
	counters := New()
	counters.Record("voice_participant_sync.participants", ModeLegacy)
	counters.Record("voice_participant_sync.participants", ModeLegacy)
	counters.Record("voice_participant_sync.participants", ModeExplicit)

	if got := counters.Value("voice_participant_sync.participants", ModeLegacy); got != 2 {
		t.Errorf("legacy = %d, want 2", got)
	}
	if got := counters.Value("voice_participant_sync.participants", ModeExplicit); got != 1 {
		t.Errorf("explicit = %d, want 1", got)
	}
	if got := counters.Value("unrecorded", ModeLegacy); got != 0 {
		t.Errorf("unrecorded = %d, want 0", got)
	}
}

func TestConcurrentRecord(t *testing.T) {
	t.Parallel()
	counters := New()
	var group sync.WaitGroup
	for range 8 {
		group.Add(1)
		go func() {
			defer group.Done()
			for range 100 {
				counters.Record("path", ModeExplicit)
			}
		}()
	}
	group.Wait()
	if got := counters.Value("path", ModeExplicit); got != 800 {
		t.Errorf("Value = %d, want 800", got)
	}
}

func TestSnapshotOrder(t *testing.T) {
	t.Parallel()
	counters := New()
	counters.Record("b", ModeLegacy)
	counters.Record("a", ModeLegacy)
	counters.Record("a", ModeExplicit)

	snapshot := counters.Snapshot()
	want := []Key{{"a", ModeExplicit}, {"a", ModeLegacy}, {"b", ModeLegacy}}
	if len(snapshot) != len(want) {
		t.Fatalf("Snapshot has %d samples, want %d", len(snapshot), len(want))
	}
	for i := range want {
		if snapshot[i].Key != want[i] || snapshot[i].Count != 1 {
			t.Errorf("snapshot[%d] = %+v, want %+v count 1", i, snapshot[i], want[i])
		}
	}
}

func TestLegacyShare(t *testing.T) {
	t.Parallel()
	counters := New()
	if _, ok := counters.LegacyShare("p"); ok {
		t.Error("LegacyShare reported data for an unrecorded path")
	}
	counters.Record("p", ModeLegacy)
	counters.Record("p", ModeExplicit)
	counters.Record("p", ModeExplicit)
	counters.Record("p", ModeExplicit)
	share, ok := counters.LegacyShare("p")
	if !ok || share != 0.25 {
		t.Errorf("LegacyShare = %v, %v; want 0.25, true", share, ok)
	}
}

func TestResetOnlyThroughTestConstructor(t *testing.T) {
	t.Parallel()
	counters, reset := NewForTest()
	counters.Record("p", ModeLegacy)
	reset()
	if got := counters.Value("p", ModeLegacy); got != 0 {
		t.Errorf("Value after reset = %d, want 0", got)
	}
	counters.Record("p", ModeLegacy)
	if got := counters.Value("p", ModeLegacy); got != 1 {
		t.Errorf("Value after reset and record = %d, want 1", got)
	}
}
