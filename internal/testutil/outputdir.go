// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"testing"
)

// OutputDir creates a scratch session output directory under t.TempDir,
// removed automatically at test cleanup, for tests exercising any
// component that reads or writes files under a session's output_dir
// (markers.jsonl, data.json, report.html, profiler.log).
func OutputDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp(t.TempDir(), "cc-profiler-session-*")
	if err != nil {
		t.Fatalf("creating scratch output dir: %v", err)
	}
	return dir
}
