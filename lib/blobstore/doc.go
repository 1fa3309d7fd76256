// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package blobstore holds fetched preview bytes behind revocable
// local resource handles.
//
// A handle is a "blob:huddle/<uuid>" URL that a renderer can resolve
// through [Store.Open] until it is revoked. Every handle carries the
// BLAKE3 keyed digest of its bytes so identical content can be
// recognized across refetches. Revocation releases the bytes and is
// idempotent: revoking an unknown or already-revoked handle is a
// no-op.
package blobstore
