// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Huddle-manifest-check verifies that a protocol manifest and the
// gateway decoders agree. It loads the embedded manifest (or the one
// named by --manifest or the config file), compares the declared event
// types and scopes with the decoder registry, and exits 1 on any
// disagreement. CI runs it so that a decoder added without a manifest
// entry, or the reverse, fails the build.
package main
