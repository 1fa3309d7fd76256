// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// Permissions is a role's permission bitfield. Only the low 53 bits
// are usable.
type Permissions uint64

// Permission bits the client interprets. Unknown bits are preserved.
const (
	PermissionViewChannels   Permissions = 1 << 0
	PermissionSendMessages   Permissions = 1 << 1
	PermissionAttachFiles    Permissions = 1 << 2
	PermissionConnectVoice   Permissions = 1 << 3
	PermissionSpeak          Permissions = 1 << 4
	PermissionStream         Permissions = 1 << 5
	PermissionManageChannels Permissions = 1 << 10
	PermissionManageRoles    Permissions = 1 << 11
	PermissionKickMembers    Permissions = 1 << 12
	PermissionBanMembers     Permissions = 1 << 13
	PermissionAdministrator  Permissions = 1 << 20
)

// ParsePermissions validates a permission bitfield received as an
// integer.
func ParsePermissions(n int64) (Permissions, error) {
	if n < 0 || n > MaxSafeInteger {
		return 0, fmt.Errorf("permissions %d: %w: must be in [0, %d]", n, ErrInvalidRange, int64(MaxSafeInteger))
	}
	return Permissions(n), nil
}

// Has reports whether every bit in want is set, or p carries
// PermissionAdministrator.
func (p Permissions) Has(want Permissions) bool {
	return p&PermissionAdministrator != 0 || p&want == want
}
