// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"github.com/google/uuid"
)

func TestIDIsCanonical(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 255, 1 << 40} {
		raw := ID(n)
		parsed, err := uuid.Parse(raw)
		if err != nil {
			t.Fatalf("ID(%d) = %q does not parse: %v", n, raw, err)
		}
		if parsed.String() != raw {
			t.Errorf("ID(%d) = %q, canonical form %q", n, raw, parsed.String())
		}
	}
	if ID(1) == ID(2) {
		t.Error("ID(1) == ID(2)")
	}
}
