// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package activesession manages the active-session pointer file (§6):
// a small JSON document at <state_dir>/active-session.json that lets
// the `mark` subcommand locate the markers.jsonl file of the
// currently-running `run` session. Written atomically at session
// start, deleted at finalize.
package activesession

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CurrentVersion is the active-session pointer's own schema version,
// independent of schema.CurrentVersion (data.json's version).
const CurrentVersion = "1"

// Pointer is the on-disk shape of the active-session pointer file.
type Pointer struct {
	SchemaVersion    string `json:"schemaVersion"`
	OutputDir        string `json:"outputDir"`
	MarkersPath      string `json:"markersPath"`
	StartedAtIso     string `json:"startedAtIso"`
	StartedAtMsEpoch int64  `json:"startedAtMsEpoch"`
}

// DefaultStateDir returns <home>/.cc-profiler.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".cc-profiler"), nil
}

// PointerPath returns <stateDir>/active-session.json.
func PointerPath(stateDir string) string {
	return filepath.Join(stateDir, "active-session.json")
}

// Write atomically writes the pointer file: write to a temp file in
// the same directory, fsync, rename, then fsync the parent directory
// so the rename survives a crash. This is the only file the tool
// writes this way; data.json and report.html are written directly.
func Write(path string, pointer Pointer) error {
	if pointer.OutputDir == "" || !filepath.IsAbs(pointer.OutputDir) {
		return fmt.Errorf("activesession: outputDir must be an absolute path, got %q", pointer.OutputDir)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	data, err := json.MarshalIndent(pointer, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling active-session pointer: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating temporary pointer file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary pointer file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary pointer file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary pointer file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming pointer file into place: %w", err)
	}

	if parentDir, err := os.Open(filepath.Dir(path)); err == nil {
		parentDir.Sync()
		parentDir.Close()
	}
	return nil
}

// Read reads and parses the pointer file. The error wraps
// os.ErrNotExist when the file does not exist (testable with
// errors.Is).
func Read(path string) (Pointer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pointer{}, err
	}
	var pointer Pointer
	if err := json.Unmarshal(data, &pointer); err != nil {
		return Pointer{}, fmt.Errorf("parsing active-session pointer %s: %w", path, err)
	}
	return pointer, nil
}

// Delete removes the pointer file. Idempotent: returns nil if the
// file is already gone, matching finalize step 7's "delete the
// active-session pointer" running on every exit path including ones
// where it was never successfully written.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing active-session pointer: %w", err)
	}
	return nil
}
