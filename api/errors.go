// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure.
type Kind string

const (
	// KindNetwork is a transport failure before a response arrived.
	KindNetwork Kind = "network"
	// KindTimeout is a request that exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindOversized is a response body larger than the request's
	// MaxBytes.
	KindOversized Kind = "oversized"
	// KindAuthExpired is a rejected credential (HTTP 401).
	KindAuthExpired Kind = "auth_expired"
	// KindServer is any other non-2xx response.
	KindServer Kind = "server"
)

// Error is the only error type returned by [Requester.RequestBytes].
// Callers can use errors.As to inspect it, or [IsKind] to test the
// classification:
//
//	if api.IsKind(err, api.KindAuthExpired) { ... }
type Error struct {
	Kind Kind
	// StatusCode is the HTTP status for KindAuthExpired and
	// KindServer, zero otherwise.
	StatusCode int
	// Path is the request path.
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("api: %s %s (%d)", e.Kind, e.Path, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("api: %s %s: %v", e.Kind, e.Path, e.Err)
	default:
		return fmt.Sprintf("api: %s %s", e.Kind, e.Path)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
