// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseNames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		parse   func(string) error
		input   string
		wantErr error
	}{
		{"workspace ok", wrap(ParseWorkspaceName), "Design Team", nil},
		{"workspace unicode", wrap(ParseWorkspaceName), "Équipe 🎨", nil},
		{"workspace blank", wrap(ParseWorkspaceName), "   ", ErrInvalidLength},
		{"workspace too long", wrap(ParseWorkspaceName), strings.Repeat("a", 101), ErrInvalidLength},
		{"workspace control", wrap(ParseWorkspaceName), "bad\nname", ErrInvalidFormat},
		{"workspace invalid utf8", wrap(ParseWorkspaceName), "\xff", ErrInvalidFormat},
		{"channel ok", wrap(ParseChannelName), "general-chat_2", nil},
		{"channel uppercase", wrap(ParseChannelName), "General", ErrInvalidFormat},
		{"channel space", wrap(ParseChannelName), "general chat", ErrInvalidFormat},
		{"role ok", wrap(ParseRoleName), "Moderators", nil},
		{"role empty", wrap(ParseRoleName), "", ErrInvalidLength},
		{"display ok", wrap(ParseDisplayName), "ada", nil},
		{"display 32 runes", wrap(ParseDisplayName), strings.Repeat("é", 32), nil},
		{"display 33 runes", wrap(ParseDisplayName), strings.Repeat("é", 33), ErrInvalidLength},
	}
	for _, test := range tests {
		err := test.parse(test.input)
		if test.wantErr == nil && err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
		}
		if test.wantErr != nil && !errors.Is(err, test.wantErr) {
			t.Errorf("%s: err = %v, want %v", test.name, err, test.wantErr)
		}
	}
}

func wrap[V any](parse func(string) (V, error)) func(string) error {
	return func(s string) error {
		_, err := parse(s)
		return err
	}
}

func TestParseColor(t *testing.T) {
	t.Parallel()
	color, err := ParseColor("#FF8800")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if color.String() != "#ff8800" {
		t.Errorf("String() = %q, want %q", color.String(), "#ff8800")
	}
	r, g, b := color.RGB()
	if r != 0xff || g != 0x88 || b != 0x00 {
		t.Errorf("RGB() = %d,%d,%d, want 255,136,0", r, g, b)
	}

	for _, input := range []string{"", "ff8800", "#ff880", "#ff88000", "#gg8800"} {
		if _, err := ParseColor(input); err == nil {
			t.Errorf("ParseColor(%q) succeeded, want error", input)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()
	stamp, err := ParseTimestamp(1767225600000)
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !stamp.Time().Equal(want) {
		t.Errorf("Time() = %v, want %v", stamp.Time(), want)
	}

	for _, ms := range []int64{0, -1, MaxSafeInteger + 1} {
		if _, err := ParseTimestamp(ms); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ParseTimestamp(%d) err = %v, want ErrInvalidRange", ms, err)
		}
	}
	if _, err := ParseTimestamp(MaxSafeInteger); err != nil {
		t.Errorf("ParseTimestamp(MaxSafeInteger): %v", err)
	}
}

func TestTimestampJSON(t *testing.T) {
	t.Parallel()
	var stamp Timestamp
	if err := json.Unmarshal([]byte("1767225600000"), &stamp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	data, err := json.Marshal(stamp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "1767225600000" {
		t.Errorf("Marshal = %s", data)
	}
	if err := json.Unmarshal([]byte("1.5"), &stamp); err == nil {
		t.Error("Unmarshal accepted a fractional timestamp")
	}
}

func TestParseSessionID(t *testing.T) {
	t.Parallel()
	if _, err := ParseSessionID("sess_01HZX"); err != nil {
		t.Errorf("ParseSessionID: %v", err)
	}
	if _, err := ParseSessionID(""); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("empty: err = %v, want ErrInvalidLength", err)
	}
	if _, err := ParseSessionID(strings.Repeat("x", 129)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("129 bytes: err = %v, want ErrInvalidLength", err)
	}
	if _, err := ParseSessionID("has space"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("space: err = %v, want ErrInvalidFormat", err)
	}
}

func TestParseEnums(t *testing.T) {
	t.Parallel()
	if kind, err := ParseChannelKind("voice"); err != nil || kind != ChannelVoice {
		t.Errorf("ParseChannelKind(voice) = %q, %v", kind, err)
	}
	if _, err := ParseChannelKind("Voice"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseChannelKind(Voice) err = %v", err)
	}
	if status, err := ParsePresenceStatus("dnd"); err != nil || status != PresenceDND {
		t.Errorf("ParsePresenceStatus(dnd) = %q, %v", status, err)
	}
	if _, err := ParseStreamKind("window"); err == nil {
		t.Error("ParseStreamKind(window) succeeded")
	}
	if _, err := ParseRemovalReason("banned"); err != nil {
		t.Errorf("ParseRemovalReason(banned): %v", err)
	}
	reason, err := ParseInvalidationReason("server_shutdown")
	if err != nil {
		t.Fatalf("ParseInvalidationReason: %v", err)
	}
	if !reason.Resumable() {
		t.Error("server_shutdown should be resumable")
	}
	if InvalidationTokenRevoked.Resumable() {
		t.Error("token_revoked should not be resumable")
	}
}

func TestPermissions(t *testing.T) {
	t.Parallel()
	perms, err := ParsePermissions(int64(PermissionSendMessages | PermissionAttachFiles))
	if err != nil {
		t.Fatalf("ParsePermissions: %v", err)
	}
	if !perms.Has(PermissionSendMessages) {
		t.Error("Has(SendMessages) = false")
	}
	if perms.Has(PermissionManageRoles) {
		t.Error("Has(ManageRoles) = true")
	}
	if !PermissionAdministrator.Has(PermissionBanMembers) {
		t.Error("administrator should imply every permission")
	}
	if _, err := ParsePermissions(-1); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("ParsePermissions(-1) err = %v", err)
	}
}
