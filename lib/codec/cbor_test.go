// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

type sampleEnvelope struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()
	envelope := sampleEnvelope{
		Type:    "workspace_update",
		Payload: map[string]any{"zeta": 1, "alpha": "a", "mid": true},
	}
	first, err := Marshal(envelope)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(envelope)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal produced different bytes for the same value")
		}
	}
}

func TestToJSON(t *testing.T) {
	t.Parallel()
	data, err := Marshal(map[string]any{
		"workspace_id": "0b9f1f5e-8a52-4f8c-9d0e-7c1f5d2f6a10",
		"position":     3,
		"tags":         []any{"a", "b"},
		"topic":        nil,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	converted, err := ToJSON(data)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(converted, &decoded); err != nil {
		t.Fatalf("ToJSON output is not valid JSON: %v (%s)", err, converted)
	}
	if got := decoded["position"]; got != float64(3) {
		t.Errorf("position = %v, want 3", got)
	}
	if _, ok := decoded["topic"]; !ok {
		t.Error("explicit null was dropped")
	}
	if decoded["topic"] != nil {
		t.Errorf("topic = %v, want nil", decoded["topic"])
	}
}

func TestToJSONRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()
	// {"a": 1, "a": 2}
	data := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
	if _, err := ToJSON(data); err == nil {
		t.Fatal("ToJSON accepted a map with duplicate keys")
	}
}

func TestToJSONRejectsNonTextKeys(t *testing.T) {
	t.Parallel()
	// {1: 2}
	data := []byte{0xa1, 0x01, 0x02}
	if _, err := ToJSON(data); err == nil {
		t.Fatal("ToJSON accepted a map with an integer key")
	}
}

func TestDecoderReadsSequence(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, name := range []string{"session_ready", "user_presence_update"} {
		if err := encoder.Encode(sampleEnvelope{Type: name}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	var names []string
	for {
		var envelope sampleEnvelope
		err := decoder.Decode(&envelope)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		names = append(names, envelope.Type)
	}
	if got := strings.Join(names, ","); got != "session_ready,user_presence_update" {
		t.Errorf("decoded types = %q", got)
	}
}

func TestDiagnose(t *testing.T) {
	t.Parallel()
	data, err := Marshal(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if diagnostic != `{"a": 1}` {
		t.Errorf("Diagnose = %q, want %q", diagnostic, `{"a": 1}`)
	}
}
