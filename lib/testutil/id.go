// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "fmt"

// ID returns a canonical lowercase version-4 UUID string whose last
// group encodes n. Distinct n give distinct identifiers.
//
//	testutil.ID(1) // "00000000-0000-4000-8000-000000000001"
func ID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012x", n)
}
