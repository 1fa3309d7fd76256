// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the authenticated request primitive the preview cache
// fetches attachment bytes through.
//
// [Requester] is the contract: one call, one bounded byte buffer plus
// its declared content type, or a typed [*Error] whose [Kind] tells the
// caller how to react. [Client] implements it over HTTP with bearer
// credentials. CRUD wrappers for workspaces, channels, and roles live
// elsewhere and are not part of this package.
package api
