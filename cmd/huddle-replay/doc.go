// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Huddle-replay decodes a recorded gateway stream offline. It reads
// envelopes from files or stdin, as JSON lines or as a CBOR sequence,
// routes each through the same registry and router the client uses,
// and prints what was dispatched, what was dropped and why, and which
// compatibility decode paths the stream exercised.
//
// Before replaying, the protocol manifest is checked against the
// decoders; a mismatch stops the replay.
package main
