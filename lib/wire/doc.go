// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire reads fields out of untrusted JSON payloads.
//
// Gateway payloads are validated field by field rather than unmarshaled
// into structs: a decoder needs to know whether a field was absent,
// explicitly null, or present with the wrong primitive type, and it
// needs integer fields checked against the safe-integer range before
// any float conversion loses precision. The reader is backed by gjson,
// which answers those questions without building an intermediate tree.
//
// An [Object] accumulates the first failure. Decoders read every field
// they need and then check Err once:
//
//	obj, err := wire.ParseObject(payload)
//	if err != nil {
//	    return nil, false
//	}
//	event := ChannelDelete{
//	    WorkspaceID: wire.Required(obj, "workspace_id", wire.Text(ref.ParseWorkspaceID)),
//	    ChannelID:   wire.Required(obj, "channel_id", wire.Text(ref.ParseChannelID)),
//	}
//	if obj.Err() != nil {
//	    return nil, false
//	}
//
// Unknown fields are ignored. If a key appears more than once, the
// first occurrence wins.
package wire
