// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package extlog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// S4 - no-read selection picks the larger file regardless of mtime
// recency, as long as both are within the modtime window.
func TestScenarioS4SelectionByLargestSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "snapshot.jsonl"), strings.Repeat("x", 100))
	writeFile(t, filepath.Join(dir, "conversation.jsonl"), strings.Repeat("x", 10000))

	tr := New(Config{Cwd: "", ProjectsRoot: dir, StartedAtMsEpoch: nowMs()})
	path, ok := tr.EnsureSelected()
	if !ok {
		t.Fatal("expected a selection")
	}
	if filepath.Base(path) != "conversation.jsonl" {
		t.Fatalf("selected %s, want conversation.jsonl", path)
	}
}

// S5 - content-aware selection prefers a tiny file with one user
// record over a large snapshot-only file.
func TestScenarioS5SelectionByContent(t *testing.T) {
	dir := t.TempDir()

	var snapshotLines []string
	for i := 0; i < 2000; i++ {
		snapshotLines = append(snapshotLines, `{"type":"snapshot","n":`+strconv.Itoa(i)+`}`)
	}
	writeFile(t, filepath.Join(dir, "snapshot.jsonl"), strings.Join(snapshotLines, "\n"))
	writeFile(t, filepath.Join(dir, "conversation.jsonl"), `{"role":"user","content":"hi"}`)

	tr := New(Config{Cwd: "", ProjectsRoot: dir, AllowReadForSelection: true, StartedAtMsEpoch: nowMs()})
	path, ok := tr.EnsureSelected()
	if !ok {
		t.Fatal("expected a selection")
	}
	if filepath.Base(path) != "conversation.jsonl" {
		t.Fatalf("selected %s, want conversation.jsonl", path)
	}
}

func TestOverridePathUsedWhenItExists(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "override.jsonl")
	writeFile(t, override, `{}`)

	tr := New(Config{OverridePath: override})
	path, ok := tr.EnsureSelected()
	if !ok || path != override {
		t.Fatalf("path = %q, ok = %v, want %q, true", path, ok, override)
	}
}

func TestOverridePathMissingFailsSelection(t *testing.T) {
	tr := New(Config{OverridePath: filepath.Join(t.TempDir(), "missing.jsonl")})
	if _, ok := tr.EnsureSelected(); ok {
		t.Fatal("expected selection to fail for a missing override path")
	}
}

func TestSampleAtTurnAppendsOnSuccessOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conversation.jsonl")
	writeFile(t, path, `{"role":"user"}`)

	tr := New(Config{OverridePath: path})
	tr.SampleAtTurn(1, 100)
	tr.SampleAtTurn(2, 200)

	samples := tr.Samples()
	if len(samples) != 2 {
		t.Fatalf("samples = %+v, want 2", samples)
	}
	if samples[0].TurnIndex != 1 || samples[1].TurnIndex != 2 {
		t.Fatalf("samples = %+v", samples)
	}
}

func TestPathSha256HexNeverLeaksPath(t *testing.T) {
	digest := PathSha256Hex("/home/alice/.claude/projects/secret-project/conversation.jsonl")
	if strings.Contains(digest, "alice") || strings.Contains(digest, "secret") {
		t.Fatalf("digest leaked plaintext: %s", digest)
	}
	if len(digest) != 64 {
		t.Fatalf("digest length = %d, want 64 hex chars", len(digest))
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
