// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by components
// that schedule work: the preview cache's debounce and retry timers and
// the backoff jitter source.
//
// Production code takes a Clock and is wired with Real(). Tests wire
// Fake() and drive time explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	cache := preview.New(preview.Options{Clock: c, ...})
//	cache.SetVisible(messages)
//	c.WaitForTimers(1)
//	c.Advance(150 * time.Millisecond)
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing the clock.
package clock
