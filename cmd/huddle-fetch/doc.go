// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Huddle-fetch previews the attachments of a batch of messages the
// way the client does. It reads messages as JSON, makes them visible
// to a preview cache backed by the API client and session refresh,
// waits for every targeted attachment to settle, and reports the
// outcome of each. With --out, cached bytes are written to a
// directory.
//
// The access and refresh tokens come from HUDDLE_ACCESS_TOKEN and
// HUDDLE_REFRESH_TOKEN so they never appear in the process arguments.
package main
