// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway turns untrusted gateway envelopes into typed events
// and routes them to handlers.
//
// Events are grouped into families (session, user, voice, workspace,
// channel, role, member). Each family has:
//
//   - a closed set of event structs implementing that family's event
//     interface, identified by an unexported tag enum;
//   - a decoder (IsSupportedType, Decode) that validates every field
//     and returns nothing on any violation;
//   - a handler struct of optional callbacks and a Dispatch function
//     that invokes exactly the callback matching the event.
//
// The wire-name, decode, and dispatch tables of a family are arrays
// indexed by its tag enum. A length guard next to each table stops the
// build when a tag is added without its table entries.
//
// [Registry] combines the families behind one Decode entry point and
// reports the supported type set that package manifest checks for
// parity. [Router] decodes envelopes, dispatches them, and counts what
// it drops. Decoding and dispatch are synchronous: a handler runs
// inside the Route or Dispatch call that produced its event.
package gateway
