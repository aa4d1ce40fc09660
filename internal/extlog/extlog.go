// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package extlog implements the External-Log Tracker (§4.5): discovery
// of an append-only conversation-log file the target process is
// writing, and best-effort size sampling of it at turn boundaries.
// Selection never reads the file's content unless the caller opts in
// via Config.AllowReadForSelection, and only the SHA-256 of the
// selected path is ever persisted.
package extlog

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"

	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// Config configures a Tracker. ProjectsRoot defaults to
// <home>/.claude/projects and is overridable for testing.
type Config struct {
	OverridePath          string
	Cwd                   string
	ProjectsRoot          string
	AllowReadForSelection bool
	StartedAtMsEpoch      int64
}

const (
	maxScanEntries        = 15000
	maxContentReadFiles   = 25
	maxContentReadBytes   = 512 * 1024
	maxContentReadRecords = 2000
	modTimeWindowMs       = 10_000
)

// Tracker owns selection of the active log path and accumulates
// ExternalLogSizeSample observations as turns arrive.
type Tracker struct {
	config Config

	mu           sync.Mutex
	selectedPath string
	selected     bool
	samples      []schema.ExternalLogSizeSample
}

// New creates a Tracker. Selection runs lazily on first use.
func New(config Config) *Tracker {
	return &Tracker{config: config}
}

// EnsureSelected runs the selection policy if no path is currently
// selected, or if the previously-selected path has disappeared.
func (t *Tracker) EnsureSelected() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.selected {
		if _, err := os.Stat(t.selectedPath); err == nil {
			return t.selectedPath, true
		}
		t.selected = false
		t.selectedPath = ""
	}

	path, ok := t.selectPath()
	if !ok {
		return "", false
	}
	t.selectedPath = path
	t.selected = true
	return path, true
}

func (t *Tracker) selectPath() (string, bool) {
	if t.config.OverridePath != "" {
		if info, err := os.Stat(t.config.OverridePath); err == nil && !info.IsDir() {
			return t.config.OverridePath, true
		}
		return "", false
	}

	root, maxDepth := resolveRoot(t.config.Cwd, t.config.ProjectsRoot)
	candidates := scanCandidates(root, maxDepth, t.config.StartedAtMsEpoch)
	if len(candidates) == 0 {
		return "", false
	}

	if t.config.AllowReadForSelection {
		if path, ok := selectByContent(candidates, t.config.StartedAtMsEpoch); ok {
			return path, true
		}
	}
	return selectBySize(candidates), true
}

// SampleAtTurn stats the selected path (re-running selection if
// necessary) and, on success, appends a size sample. Stat failures are
// swallowed per §4.5's "on success" wording — no sample is recorded,
// and no error is surfaced.
func (t *Tracker) SampleAtTurn(turnIndex int, tMs int64) {
	path, ok := t.EnsureSelected()
	if !ok {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, schema.ExternalLogSizeSample{
		TurnIndex: turnIndex,
		TMs:       tMs,
		SizeBytes: info.Size(),
	})
}

// Samples returns the accumulated size samples in append order.
func (t *Tracker) Samples() []schema.ExternalLogSizeSample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]schema.ExternalLogSizeSample, len(t.samples))
	copy(out, t.samples)
	return out
}

// SelectedPath returns the currently selected path and whether a
// selection has been made yet, without triggering a new selection.
func (t *Tracker) SelectedPath() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedPath, t.selected
}

// PathSha256Hex returns the SHA-256 hex digest of path. The profiler
// never writes a selected path in plaintext to disk; this digest is
// the sole persisted representation (schema.ExternalLogTracking.PathSha256).
func PathSha256Hex(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}
