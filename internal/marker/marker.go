// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package marker implements the Marker Watcher (§4.4): a poller that
// tails an append-only markers.jsonl file written by sibling CLI
// invocations (the `cc-profiler mark` subcommand) and turns new lines
// into schema.MarkerEvent records.
package marker

import (
	"bytes"
	"encoding/json"
	"os"
	"sync/atomic"

	"github.com/ccprofiler/ccprofiler/internal/clock"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// Config configures a Watcher.
type Config struct {
	Path           string
	PollIntervalMs int64
}

// rawMarkerLine is the on-disk shape of one markers.jsonl line, written
// by the `mark` subcommand. Exactly one of TMs/TIso is expected to
// carry the timestamp; label forms are optional.
type rawMarkerLine struct {
	TMs         *int64  `json:"tMs,omitempty"`
	TIso        *string `json:"tIso,omitempty"`
	Label       *string `json:"label,omitempty"`
	LabelSha256 *string `json:"labelSha256,omitempty"`
}

// Watcher polls Config.Path on its own ticker and emits MarkerEvents to
// OnMarker for each well-formed new line.
type Watcher struct {
	clock  *clock.SessionClock
	config Config

	onMarker func(schema.MarkerEvent)

	offset  int64
	ticking atomic.Bool // true while a tick is in flight; skips re-entry
	ticker  *clock.Ticker
}

// New creates a Watcher with its cursor at offset zero.
func New(c *clock.SessionClock, config Config, onMarker func(schema.MarkerEvent)) *Watcher {
	return &Watcher{clock: c, config: config, onMarker: onMarker}
}

// Start begins polling.
func (w *Watcher) Start() {
	w.ticker = w.clock.Underlying().NewTicker(durationMs(w.config.PollIntervalMs))
	go func() {
		for range w.ticker.C {
			w.tick()
		}
	}()
}

// Stop halts polling.
func (w *Watcher) Stop() {
	if w.ticker != nil {
		w.ticker.Stop()
	}
}

// tick implements one poll: ticks never overlap, matching §4.4's "an
// in-flight flag skips re-entry."
func (w *Watcher) tick() {
	if !w.ticking.CompareAndSwap(false, true) {
		return
	}
	defer w.ticking.Store(false)

	info, err := os.Stat(w.config.Path)
	if err != nil {
		return // swallowed until the next tick, per §4.4
	}
	size := info.Size()
	if size <= w.offset {
		return
	}

	file, err := os.Open(w.config.Path)
	if err != nil {
		return
	}
	defer file.Close()

	delta := make([]byte, size-w.offset)
	n, err := file.ReadAt(delta, w.offset)
	if n == 0 {
		return
	}
	delta = delta[:n]
	w.offset += int64(n)

	for _, line := range bytes.Split(delta, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		w.emitFromLine(line)
	}
}

func (w *Watcher) emitFromLine(line []byte) {
	var raw rawMarkerLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return
	}

	tMs, ok := resolveTMs(raw, w.clock.StartedAtMsEpoch())
	if !ok || tMs < 0 {
		return
	}

	w.onMarker(schema.MarkerEvent{
		TMs:         tMs,
		Label:       raw.Label,
		LabelSha256: raw.LabelSha256,
	})
}
