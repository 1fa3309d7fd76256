// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the shared CBOR configuration for binary gateway
// streams.
//
// The gateway speaks JSON by default and CBOR when a client negotiates
// the binary encoding. Decoders in package gateway validate payloads as
// JSON, so a CBOR envelope is decoded here with limits suited to
// untrusted input and its payload is re-encoded as JSON with ToJSON.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2) so that
// recorded streams and test fixtures are byte-stable:
//
//	data, err := codec.Marshal(envelope)
//	decoder := codec.NewDecoder(reader)
//
// Struct tags follow one rule: types that are only ever CBOR use
// `cbor` tags; types shared with JSON use `json` tags, which
// fxamacker/cbor reads as a fallback. Never put both on one field.
package codec
