// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for huddle
// binaries.
//
// Configuration is loaded from a single file named by either the
// HUDDLE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no file discovery. Loading applies, in
// order:
//
//   - [Default] values
//   - the YAML file
//   - HUDDLE_* environment variables (HUDDLE_API_BASE_URL,
//     HUDDLE_PREVIEW_MAX_BYTES, HUDDLE_LOG_LEVEL, ...)
//   - ${HOME} and ${VAR:-default} expansion in path fields
//   - [Config.Validate]
//
// Key exports:
//
//   - [Config] -- master struct with API, Gateway, Preview, and Log
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other huddle packages.
package config
