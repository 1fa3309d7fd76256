// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/huddle/gateway"
	"github.com/bureau-foundation/huddle/gateway/manifest"
)

// writeManifest writes the embedded manifest after edit has changed
// it, and returns the file path.
func writeManifest(t *testing.T, edit func(m *manifest.Manifest)) string {
	t.Helper()
	m, err := manifest.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	edit(m)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	path := filepath.Join(t.TempDir(), "protocol.jsonc")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestEmbeddedManifestPasses(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v (stderr %q)", err, stderr.String())
	}
	output := stdout.String()
	if !strings.Contains(output, "embedded manifest: version 3 declares 23 event types") {
		t.Errorf("stdout = %q, want the summary line", output)
	}
	if !strings.Contains(output, "deprecated voice_participant_joined:") {
		t.Errorf("stdout = %q, want deprecated entries listed", output)
	}
	if strings.Contains(output, "LIFECYCLE") {
		t.Errorf("table printed without --verbose")
	}
}

func TestVerboseListsEntries(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--verbose"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	output := stdout.String()
	for _, want := range []string{"TYPE", "LIFECYCLE", "workspace_role_update", "guild"} {
		if !strings.Contains(output, want) {
			t.Errorf("verbose output missing %q", want)
		}
	}
}

func TestMismatchExitsOne(t *testing.T) {
	t.Parallel()
	var dropped string
	path := writeManifest(t, func(m *manifest.Manifest) {
		dropped = m.Events[0].EventType
		m.Events = append(m.Events[1:], manifest.Entry{
			EventType:     "message_create",
			SchemaVersion: 1,
			Scope:         gateway.ScopeChannel,
			Lifecycle:     manifest.LifecycleActive,
		})
	})

	var stdout, stderr bytes.Buffer
	err := run([]string{"--manifest", path}, &stdout, &stderr)
	coder, ok := err.(interface{ ExitCode() int })
	if !ok || coder.ExitCode() != 1 {
		t.Fatalf("run err = %v, want exit code 1", err)
	}
	output := stderr.String()
	if !strings.Contains(output, "declared but not decoded: message_create") {
		t.Errorf("stderr = %q, want the undecoded type", output)
	}
	if !strings.Contains(output, "decoded but not declared: "+dropped) {
		t.Errorf("stderr = %q, want the undeclared type %s", output, dropped)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing on mismatch", stdout.String())
	}
}

func TestScopeMismatchExitsOne(t *testing.T) {
	t.Parallel()
	path := writeManifest(t, func(m *manifest.Manifest) {
		for i := range m.Events {
			if m.Events[i].EventType == "workspace_delete" {
				m.Events[i].Scope = gateway.ScopeUser
			}
		}
	})

	var stdout, stderr bytes.Buffer
	err := run([]string{"--manifest", path}, &stdout, &stderr)
	if coder, ok := err.(interface{ ExitCode() int }); !ok || coder.ExitCode() != 1 {
		t.Fatalf("run err = %v, want exit code 1", err)
	}
	if !strings.Contains(stderr.String(), "scope mismatch: workspace_delete") {
		t.Errorf("stderr = %q, want the scope mismatch", stderr.String())
	}
}

func TestManifestFromConfig(t *testing.T) {
	t.Parallel()
	manifestPath := writeManifest(t, func(m *manifest.Manifest) { m.Version = 9 })
	configPath := filepath.Join(t.TempDir(), "huddle.yaml")
	content := "gateway:\n  manifest_path: " + manifestPath + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--config", configPath}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), manifestPath+": version 9") {
		t.Errorf("stdout = %q, want the configured manifest", stdout.String())
	}
}

func TestInvalidManifestIsAnError(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	if err := os.WriteFile(path, []byte(`{"version": 1, "events": []}`), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	var stdout, stderr bytes.Buffer
	err := run([]string{"--manifest", path}, &stdout, &stderr)
	if err == nil {
		t.Fatal("run succeeded on an empty manifest")
	}
	if _, ok := err.(interface{ ExitCode() int }); ok {
		t.Errorf("run err = %v, want a plain error", err)
	}
}

func TestVersionAndArguments(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run --version: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), binaryName+" ") {
		t.Errorf("--version output = %q", stdout.String())
	}

	if err := run([]string{"extra"}, &stdout, &stderr); err == nil {
		t.Error("run accepted a positional argument")
	}
	if err := run([]string{"--no-such-flag"}, &stdout, &stderr); err == nil {
		t.Error("run accepted an unknown flag")
	}
}
