// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated, immutable value types for the
// identifiers and bounded primitives that appear in gateway payloads:
// workspace, channel, user, role, stream, and attachment IDs, display
// names, colors, timestamps, and the closed enumerations (channel kind,
// presence status, stream kind, and so on).
//
// Every type has a Parse constructor that returns either a valid value
// or an error wrapping one of [ErrInvalidFormat], [ErrInvalidLength],
// or [ErrInvalidRange]. Zero values are never valid and report IsZero.
// Parsers have no side effects and never panic on input; the Must
// variants exist for tests and static initialization only.
//
// Identifiers are canonical lowercase hyphenated UUIDs. A value that
// parses is stored exactly as received, so String returns the input
// byte-for-byte.
//
// Types implement encoding.TextMarshaler and encoding.TextUnmarshaler
// so they serialize as plain strings in JSON and CBOR.
package ref
