// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preview

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes retry delays.
type Backoff struct {
	// Initial is the delay before the first retry.
	Initial time.Duration
	// Multiplier grows the delay per attempt. Values below 1 are
	// treated as 1.
	Multiplier float64
	// Max caps the delay, jitter included. Zero means DefaultBackoff.Max.
	Max time.Duration
	// Jitter spreads each delay uniformly over ±Jitter of its value.
	// Zero disables jitter.
	Jitter float64
}

// NextDelay returns the delay before retry attempt (1-based):
// Initial × Multiplier^(attempt-1), capped at Max, then jittered and
// capped again. A nil rng uses the global source.
func (b Backoff) NextDelay(attempt int, rng *rand.Rand) time.Duration {
	if b.Initial <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	multiplier := b.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	ceiling := float64(b.Max)
	if b.Max <= 0 {
		ceiling = float64(DefaultBackoff.Max)
	}

	delay := float64(b.Initial) * math.Pow(multiplier, float64(attempt-1))
	delay = min(delay, ceiling)
	if b.Jitter > 0 {
		var unit float64
		if rng != nil {
			unit = rng.Float64()
		} else {
			unit = rand.Float64()
		}
		delay = min(delay*(1-b.Jitter+2*b.Jitter*unit), ceiling)
	}
	return time.Duration(delay)
}
