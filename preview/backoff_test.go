// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preview

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

func TestNextDelay(t *testing.T) {
	t.Parallel()

	backoff := Backoff{Initial: time.Second, Multiplier: 2, Max: 30 * time.Second}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{40, 30 * time.Second},
	}
	for _, test := range tests {
		if got := backoff.NextDelay(test.attempt, nil); got != test.want {
			t.Errorf("NextDelay(%d) = %v, want %v", test.attempt, got, test.want)
		}
	}
}

func TestNextDelayEdges(t *testing.T) {
	t.Parallel()

	if got := (Backoff{}).NextDelay(3, nil); got != 0 {
		t.Errorf("zero Backoff NextDelay = %v, want 0", got)
	}
	flat := Backoff{Initial: time.Second, Multiplier: 0.5}
	if got := flat.NextDelay(4, nil); got != time.Second {
		t.Errorf("multiplier below 1: NextDelay(4) = %v, want 1s", got)
	}
	unset := Backoff{Initial: time.Second, Multiplier: 10}
	if got := unset.NextDelay(4, nil); got != DefaultBackoff.Max {
		t.Errorf("zero Max: NextDelay(4) = %v, want %v", got, DefaultBackoff.Max)
	}
	// Far past the point where the raw product overflows a Duration.
	for _, attempt := range []int{64, 1000, math.MaxInt32} {
		got := unset.NextDelay(attempt, nil)
		if got <= 0 || got > DefaultBackoff.Max {
			t.Errorf("zero Max: NextDelay(%d) = %v, want within (0, %v]", attempt, got, DefaultBackoff.Max)
		}
	}
}

func TestNextDelayJitterStaysUnderMax(t *testing.T) {
	t.Parallel()

	backoff := Backoff{Initial: time.Second, Multiplier: 2, Max: 8 * time.Second, Jitter: 0.5}
	rng := rand.New(rand.NewPCG(3, 4))
	for range 200 {
		if got := backoff.NextDelay(20, rng); got > backoff.Max {
			t.Fatalf("NextDelay(20) = %v, want at most %v", got, backoff.Max)
		}
	}
}

func TestNextDelayJitter(t *testing.T) {
	t.Parallel()

	backoff := Backoff{Initial: time.Second, Multiplier: 2, Max: 8 * time.Second, Jitter: 0.25}
	rng := rand.New(rand.NewPCG(1, 2))
	for attempt := 1; attempt <= 10; attempt++ {
		base := Backoff{Initial: backoff.Initial, Multiplier: backoff.Multiplier, Max: backoff.Max}.NextDelay(attempt, nil)
		low := time.Duration(float64(base) * 0.75)
		high := time.Duration(float64(base) * 1.25)
		got := backoff.NextDelay(attempt, rng)
		if got < low || got > high {
			t.Errorf("NextDelay(%d) = %v, want within [%v, %v]", attempt, got, low, high)
		}
	}
}
