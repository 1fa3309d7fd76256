// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for huddle binaries.
//
// [Commit], [Dirty], [BuildTime], and [Version] are injected with
// -ldflags -X at build time, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/huddle/lib/version.Commit=$(git rev-parse --short HEAD)"
//
// Development builds and tests see the defaults ("unknown",
// "0.1.0-dev").
package version
