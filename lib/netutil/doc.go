// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds HTTP response body reads.
//
// ReadLimited replaces io.ReadAll for bodies whose size the server
// controls: it never holds more than limit+1 bytes and reports an
// over-limit body as ErrBodyTooLarge rather than truncating it.
// ErrorBody reads a short prefix of an error response for logs.
package netutil
