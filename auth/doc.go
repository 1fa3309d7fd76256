// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth holds the client session and coordinates credential
// refresh.
//
// Many concurrent requests can see the same access token rejected at
// once. [Coordinator.Refresh] collapses them into a single call to the
// [Refresher]: callers that arrive while a refresh is in flight wait
// for its result, and callers whose rejected token has already been
// replaced get the current session back without another refresh.
package auth
