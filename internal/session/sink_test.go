// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ccprofiler/ccprofiler/internal/config"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

func newTestRuntime(t *testing.T, cfg config.Config) *Runtime {
	t.Helper()
	r := &Runtime{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r.data = schema.New(schema.Config{}, schema.Environment{}, "2026-08-03T00:00:00Z", "2026-08-03T00:00:00Z")
	return r
}

func TestOnTurnAppendsToSessionData(t *testing.T) {
	r := newTestRuntime(t, config.Default())
	r.OnTurn(schema.TurnEvent{Index: 1, TMs: 10, Source: schema.TurnSourceEnter})
	if len(r.data.Turns) != 1 || r.data.Turns[0].Index != 1 {
		t.Fatalf("turns = %+v", r.data.Turns)
	}
}

func TestOnInteractionAppendsToSessionData(t *testing.T) {
	r := newTestRuntime(t, config.Default())
	r.OnInteraction(schema.Interaction{ID: 1, Kind: schema.InteractionKindKeystroke, EndReason: schema.EndReasonBurstIdle})
	if len(r.data.Interactions) != 1 {
		t.Fatalf("interactions = %+v", r.data.Interactions)
	}
}

func TestOnMarkerAppendsToSessionData(t *testing.T) {
	r := newTestRuntime(t, config.Default())
	r.onMarker(schema.MarkerEvent{TMs: 5})
	if len(r.data.Markers) != 1 {
		t.Fatalf("markers = %+v", r.data.Markers)
	}
}

func TestOnSampleRecordsProbeFailureAsWarning(t *testing.T) {
	r := newTestRuntime(t, config.Default())
	r.onSample(schema.ProcessSample{TMs: 0, Pid: 123, Error: "process exited"})

	if len(r.data.Samples) != 1 {
		t.Fatalf("samples = %+v", r.data.Samples)
	}
	if len(r.data.Warnings) != 1 || r.data.Warnings[0].Code != schema.WarningCodeProbeFailed {
		t.Fatalf("warnings = %+v", r.data.Warnings)
	}
}

func TestAddWarningRedactsDetailUnlessUnsafeStoreErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"true"}
	r := newTestRuntime(t, cfg)
	r.addWarning(schema.WarningClassChild, schema.WarningCodeChildExitNonZero, "exit status 17: some plaintext")

	if got := r.data.Warnings[0].Detail; got != "child exited non-zero" {
		t.Fatalf("Detail = %q, want the reduced short form", got)
	}
}

func TestAddWarningKeepsDetailWhenUnsafeStoreErrorsSet(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"true"}
	cfg.UnsafeStoreErrors = true
	r := newTestRuntime(t, cfg)
	r.addWarning(schema.WarningClassChild, schema.WarningCodeChildExitNonZero, "exit status 17")

	if got := r.data.Warnings[0].Detail; got != "exit status 17" {
		t.Fatalf("Detail = %q, want the raw error text", got)
	}
}
