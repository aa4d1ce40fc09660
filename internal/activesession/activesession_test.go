// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package activesession

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := PointerPath(dir)
	want := Pointer{
		SchemaVersion:    CurrentVersion,
		OutputDir:        filepath.Join(dir, "session-output"),
		MarkersPath:      filepath.Join(dir, "session-output", "markers.jsonl"),
		StartedAtIso:     "2026-01-01T00:00:00Z",
		StartedAtMsEpoch: 1_700_000_000_000,
	}

	if err := Write(path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestWriteRejectsRelativeOutputDir(t *testing.T) {
	dir := t.TempDir()
	err := Write(PointerPath(dir), Pointer{OutputDir: "relative/path"})
	if err == nil {
		t.Fatal("expected an error for a relative outputDir")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := PointerPath(dir)
	if err := Delete(path); err != nil {
		t.Fatalf("Delete on missing file: %v", err)
	}

	if err := Write(path, Pointer{OutputDir: filepath.Join(dir, "out")}); err != nil {
		t.Fatal(err)
	}
	if err := Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := Delete(path); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pointer file still exists after Delete")
	}
}

func TestReadMissingFileWrapsErrNotExist(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want wrapping os.ErrNotExist", err)
	}
}
