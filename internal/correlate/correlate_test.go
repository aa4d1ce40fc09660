// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package correlate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// S6 - correlator metadata: a 3-line JSONL mapped against one turn at
// t_ms=900, expecting timestamp mode, sorted deduped tool names, and
// summed token counts, with no plaintext content surviving into the
// serialized result.
func TestScenarioS6CorrelatorMetadata(t *testing.T) {
	startedAtMsEpoch := int64(1_700_000_000_000)

	dir := t.TempDir()
	path := filepath.Join(dir, "conversation.jsonl")
	lines := []string{
		`{"role":"user","timestamp":` + strconv.FormatInt(startedAtMsEpoch+1000, 10) + `,"content":"the secret plan is XYZZY","usage":{"input_tokens":10}}`,
		`{"role":"assistant","timestamp":` + strconv.FormatInt(startedAtMsEpoch+1500, 10) + `,"content":[{"type":"text","text":"ok"},{"type":"tool_use","name":"read_file"}],"usage":{"output_tokens":20}}`,
		`{"timestamp":` + strconv.FormatInt(startedAtMsEpoch+1600, 10) + `,"tool_name":"exec_command"}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	turns := []schema.TurnEvent{{Index: 1, TMs: 900, Source: schema.TurnSourceEnter}}
	result := Run(Input{
		Path:             path,
		StartedAtMsEpoch: startedAtMsEpoch,
		EndedAtMsEpoch:   startedAtMsEpoch + 5000,
		Turns:            turns,
	})

	if result.Mode != schema.CorrelationModeTimestamps {
		t.Fatalf("mode = %v, want timestamps", result.Mode)
	}
	if len(result.PerTurn) != 1 {
		t.Fatalf("perTurn = %+v, want exactly 1 entry", result.PerTurn)
	}
	turn := result.PerTurn[0]
	wantNames := []string{"exec_command", "read_file"}
	if len(turn.ToolUseNames) != 2 || turn.ToolUseNames[0] != wantNames[0] || turn.ToolUseNames[1] != wantNames[1] {
		t.Fatalf("toolUseNames = %v, want %v", turn.ToolUseNames, wantNames)
	}
	if turn.InputTokenCount == nil || *turn.InputTokenCount != 10 {
		t.Fatalf("inputTokenCount = %v, want 10", turn.InputTokenCount)
	}
	if turn.OutputTokenCount == nil || *turn.OutputTokenCount != 20 {
		t.Fatalf("outputTokenCount = %v, want 20", turn.OutputTokenCount)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(encoded), "XYZZY") {
		t.Fatalf("serialized correlation leaked plaintext: %s", encoded)
	}
}

func TestModeNoneWhenNoTimestampsOrUserRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.jsonl")
	if err := os.WriteFile(path, []byte(`{"type":"snapshot"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := Run(Input{Path: path, Turns: []schema.TurnEvent{{Index: 1, TMs: 0}}})
	if result.Mode != schema.CorrelationModeNone {
		t.Fatalf("mode = %v, want none", result.Mode)
	}
	if len(result.Notes) != 1 || result.Notes[0] != "no usable timestamps or user-message markers" {
		t.Fatalf("notes = %v", result.Notes)
	}
}

func TestSequentialModeAdvancesOnUserRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.jsonl")
	lines := []string{
		`{"role":"user","content":"first"}`,
		`{"role":"assistant","content":"reply one"}`,
		`{"role":"user","content":"second"}`,
		`{"role":"assistant","content":"reply two"}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	turns := []schema.TurnEvent{{Index: 1, TMs: 0}, {Index: 2, TMs: 10}}
	result := Run(Input{Path: path, Turns: turns})

	if result.Mode != schema.CorrelationModeSequential {
		t.Fatalf("mode = %v, want sequential", result.Mode)
	}
	if len(result.PerTurn) != 2 {
		t.Fatalf("perTurn = %+v, want 2 entries", result.PerTurn)
	}
	if result.PerTurn[0].RecordCount != 2 || result.PerTurn[1].RecordCount != 2 {
		t.Fatalf("perTurn = %+v, want 2 records in each bucket", result.PerTurn)
	}
}
