// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"maps"
	"testing"

	"github.com/bureau-foundation/huddle/lib/testutil"
)

var (
	testWorkspace = testutil.ID(1)
	testChannel   = testutil.ID(2)
	testUser      = testutil.ID(3)
	testOtherUser = testutil.ID(4)
	testRole      = testutil.ID(5)
	testStream    = testutil.ID(6)
)

const testTime = 1767225600000

// validPayloads holds one valid payload per supported event type.
func validPayloads() map[string]map[string]any {
	return map[string]map[string]any{
		"session_ready": {
			"session_id":            "sess_01",
			"user_id":               testUser,
			"workspace_ids":         []any{testWorkspace},
			"heartbeat_interval_ms": 41250,
		},
		"session_invalidated": {
			"reason":         "rate_limited",
			"retry_after_ms": 5000,
		},
		"user_presence_update": {
			"user_id":    testUser,
			"status":     "idle",
			"updated_at": testTime,
		},
		"user_profile_update": {
			"user_id":        testUser,
			"updated_fields": map[string]any{"display_name": "ada", "avatar_url": nil},
			"updated_at":     testTime,
		},
		"voice_participant_sync": {
			"workspace_id": testWorkspace,
			"channel_id":   testChannel,
			"participants": []any{
				map[string]any{"user_id": testUser, "muted": true, "deafened": false},
				map[string]any{"user_id": testOtherUser, "muted": false, "deafened": false},
			},
			"synced_at": testTime,
		},
		"voice_participant_joined": {
			"workspace_id": testWorkspace,
			"channel_id":   testChannel,
			"user_id":      testUser,
			"joined_at":    testTime,
		},
		"voice_participant_left": {
			"workspace_id": testWorkspace,
			"channel_id":   testChannel,
			"user_id":      testUser,
			"left_at":      testTime,
		},
		"voice_participant_state": {
			"workspace_id":   testWorkspace,
			"channel_id":     testChannel,
			"user_id":        testUser,
			"updated_fields": map[string]any{"speaking": true},
			"updated_at":     testTime,
		},
		"voice_stream_started": {
			"workspace_id": testWorkspace,
			"channel_id":   testChannel,
			"stream_id":    testStream,
			"user_id":      testUser,
			"kind":         "screen",
			"started_at":   testTime,
		},
		"voice_stream_ended": {
			"workspace_id": testWorkspace,
			"channel_id":   testChannel,
			"stream_id":    testStream,
			"ended_at":     testTime,
		},
		"workspace_update": {
			"workspace_id":   testWorkspace,
			"updated_fields": map[string]any{"name": "Design", "icon_url": "https://cdn.example.com/i.png"},
			"updated_at":     testTime,
		},
		"workspace_delete": {
			"workspace_id": testWorkspace,
			"deleted_at":   testTime,
		},
		"workspace_channel_create": {
			"workspace_id": testWorkspace,
			"channel": map[string]any{
				"channel_id": testChannel,
				"name":       "general",
				"kind":       "text",
				"position":   0,
				"topic":      "hello",
			},
			"created_at": testTime,
		},
		"workspace_channel_update": {
			"workspace_id":   testWorkspace,
			"channel_id":     testChannel,
			"updated_fields": map[string]any{"topic": nil},
			"updated_at":     testTime,
		},
		"workspace_channel_delete": {
			"workspace_id": testWorkspace,
			"channel_id":   testChannel,
			"deleted_at":   testTime,
		},
		"workspace_channel_reorder": {
			"workspace_id": testWorkspace,
			"channel_ids":  []any{testChannel, testutil.ID(20)},
			"updated_at":   testTime,
		},
		"workspace_role_create": {
			"workspace_id": testWorkspace,
			"role": map[string]any{
				"role_id":     testRole,
				"name":        "Moderators",
				"color_hex":   "#3366FF",
				"position":    2,
				"permissions": 6,
			},
			"created_at": testTime,
		},
		"workspace_role_update": {
			"workspace_id":   testWorkspace,
			"role_id":        testRole,
			"updated_fields": map[string]any{"name": "Mods"},
			"updated_at":     testTime,
		},
		"workspace_role_delete": {
			"workspace_id": testWorkspace,
			"role_id":      testRole,
			"deleted_at":   testTime,
		},
		"workspace_role_reorder": {
			"workspace_id": testWorkspace,
			"role_ids":     []any{testRole},
			"updated_at":   testTime,
		},
		"workspace_member_add": {
			"workspace_id": testWorkspace,
			"member": map[string]any{
				"user_id":      testUser,
				"display_name": "ada",
				"role_ids":     []any{testRole},
			},
			"joined_at": testTime,
		},
		"workspace_member_update": {
			"workspace_id":   testWorkspace,
			"user_id":        testUser,
			"updated_fields": map[string]any{"nickname": "countess"},
			"updated_at":     testTime,
		},
		"workspace_member_remove": {
			"workspace_id": testWorkspace,
			"user_id":      testUser,
			"reason":       "kicked",
			"removed_at":   testTime,
		},
	}
}

// payloadFor returns a deep-enough copy of the valid payload for
// eventType with overrides applied. An override value of deleteField
// removes the key.
func payloadFor(t *testing.T, eventType string, overrides map[string]any) []byte {
	t.Helper()
	base, ok := validPayloads()[eventType]
	if !ok {
		t.Fatalf("no fixture for %q", eventType)
	}
	payload := maps.Clone(base)
	for key, value := range overrides {
		if value == deleteField {
			delete(payload, key)
			continue
		}
		payload[key] = value
	}
	return encode(t, payload)
}

type deleteMarker struct{}

var deleteField = deleteMarker{}

func encode(t *testing.T, value any) []byte {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	return data
}

func ids(n int, offset int) []any {
	list := make([]any, n)
	for i := range list {
		list[i] = testutil.ID(offset + i)
	}
	return list
}
