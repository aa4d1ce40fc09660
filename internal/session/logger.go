// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// NewLogger opens <outputDir>/profiler.log and returns a structured
// logger writing to it. Unlike the teacher's NewCommandLogger, this
// never writes to stderr: stderr belongs to the proxied terminal
// session for the whole lifetime of a run, and a log line interleaved
// into it would corrupt what the user sees.
func NewLogger(outputDir string) (*slog.Logger, *os.File, error) {
	path := filepath.Join(outputDir, "profiler.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening profiler log: %w", err)
	}
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler), file, nil
}
