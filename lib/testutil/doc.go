// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// safety valve so that tests never block forever on a goroutine that
// failed to report. They are the only place tests use wall-clock
// timeouts; everything else drives time through a clock.FakeClock.
//
// [ID] returns deterministic canonical UUID strings for fixtures, so
// that payloads in tests are readable and stable across runs.
//
// Helpers call t.Fatalf on failure. This package imports nothing else
// from this module.
package testutil
