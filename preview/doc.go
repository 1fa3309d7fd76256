// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package preview fetches and caches inline previews of message
// attachments.
//
// The caller reports which messages are visible with
// [Cache.SetVisible]. The cache picks the attachments that can be
// previewed and are small enough ([SelectTargets]), fetches each once
// after a short debounce, and stores the bytes behind a revocable
// blob handle. Per attachment the state moves
//
//	idle → loading → cached
//	               → failed ──RetryPreview──→ loading
//
// Transient failures retry with capped exponential backoff
// ([Backoff]). A rejected credential on the first attempt triggers one
// shared session refresh and an immediate retry. Attachments that
// leave the visible set have their handle revoked and any pending
// work cancelled; a fetch that completes after its attachment left
// is discarded.
package preview
