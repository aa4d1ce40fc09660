// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package marker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccprofiler/ccprofiler/internal/clock"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

func TestWatcherEmitsMarkerForExplicitTMs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "markers.jsonl")
	if err := os.WriteFile(path, []byte(`{"tMs":42,"label":"checkpoint"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fc := clock.Fake(time.Unix(0, 0))
	sc := clock.NewSessionClock(fc)
	events := make(chan schema.MarkerEvent, 4)
	w := New(sc, Config{Path: path, PollIntervalMs: 10}, func(e schema.MarkerEvent) { events <- e })
	w.Start()
	fc.Advance(10 * time.Millisecond)

	select {
	case e := <-events:
		if e.TMs != 42 || e.Label == nil || *e.Label != "checkpoint" {
			t.Fatalf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no marker event delivered")
	}
	w.Stop()
}

func TestWatcherOnlyReadsNewBytesOnEachTick(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "markers.jsonl")
	if err := os.WriteFile(path, []byte(`{"tMs":1}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fc := clock.Fake(time.Unix(0, 0))
	sc := clock.NewSessionClock(fc)
	events := make(chan schema.MarkerEvent, 8)
	w := New(sc, Config{Path: path, PollIntervalMs: 10}, func(e schema.MarkerEvent) { events <- e })
	w.Start()

	fc.Advance(10 * time.Millisecond)
	<-events // first line

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := file.WriteString(`{"tMs":2}` + "\n"); err != nil {
		t.Fatal(err)
	}
	file.Close()

	fc.Advance(10 * time.Millisecond)
	select {
	case e := <-events:
		if e.TMs != 2 {
			t.Fatalf("second event = %+v, want tMs=2", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no second marker event delivered")
	}

	select {
	case e := <-events:
		t.Fatalf("unexpected third event: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcherSwallowsMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.jsonl")

	fc := clock.Fake(time.Unix(0, 0))
	sc := clock.NewSessionClock(fc)
	called := false
	w := New(sc, Config{Path: path, PollIntervalMs: 10}, func(e schema.MarkerEvent) { called = true })
	w.Start()
	fc.Advance(10 * time.Millisecond)
	w.Stop()

	if called {
		t.Fatal("onMarker called despite missing file")
	}
}

func TestResolveTMsFromIso(t *testing.T) {
	startedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	raw := rawMarkerLine{}
	iso := startedAt.Add(500 * time.Millisecond).Format(time.RFC3339Nano)
	raw.TIso = &iso

	got, ok := resolveTMs(raw, startedAt.UnixMilli())
	if !ok || got != 500 {
		t.Fatalf("resolveTMs = %d, %v, want 500, true", got, ok)
	}
}

func TestResolveTMsUnusableWithoutTimestamp(t *testing.T) {
	if _, ok := resolveTMs(rawMarkerLine{}, 0); ok {
		t.Fatal("resolveTMs should fail with neither tMs nor tIso")
	}
}
