// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package correlate implements the External-Log Correlator (§4.6): an
// opt-in, post-session, streaming pass over a selected conversation
// log that maps records to turn indices and produces only derived
// aggregates. It never retains parsed line content in its result.
package correlate

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/ccprofiler/ccprofiler/internal/logrecord"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// Input bundles everything the correlator needs besides the log path
// itself.
type Input struct {
	Path             string
	StartedAtMsEpoch int64
	EndedAtMsEpoch   int64
	Turns            []schema.TurnEvent
}

type bucket struct {
	recordCount     int64
	recordBytes     int64
	toolUseNames    map[string]bool
	inputTokens     int64
	outputTokens    int64
	hasInputTokens  bool
	hasOutputTokens bool
}

// Run streams Input.Path and returns a schema.ExternalLogCorrelation.
// A missing or unreadable path yields a correlation with mode "none",
// zero counts, no per-turn entries and a single "log file unreadable"
// note rather than an error — correlation failures are non-fatal per §7.
func Run(in Input) schema.ExternalLogCorrelation {
	file, err := os.Open(in.Path)
	if err != nil {
		return schema.ExternalLogCorrelation{Mode: schema.CorrelationModeNone, Notes: []string{"log file unreadable"}}
	}
	defer file.Close()

	buckets := make([]bucket, len(in.Turns))
	for i := range buckets {
		buckets[i].toolUseNames = make(map[string]bool)
	}

	var parsedLines, parseErrors int64
	var timestampPointer = -1
	var sequentialPointer = -1
	var sawTimestamp bool
	var appliedTimestamp bool
	var appliedSequential bool

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parsedLines++

		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			parseErrors++
			continue
		}

		epochMs, hasTimestamp := logrecord.ExtractTimestampMs(record)
		if hasTimestamp {
			sawTimestamp = true
			if epochMs < in.StartedAtMsEpoch-10_000 {
				continue
			}
			if epochMs > in.EndedAtMsEpoch+60_000 && appliedTimestamp {
				break
			}
			for timestampPointer+1 < len(in.Turns) && in.StartedAtMsEpoch+in.Turns[timestampPointer+1].TMs <= epochMs {
				timestampPointer++
			}
			if timestampPointer >= 0 && timestampPointer < len(buckets) {
				applyRecord(&buckets[timestampPointer], line, record)
				appliedTimestamp = true
			}
			continue
		}

		if logrecord.ExtractRole(record) == "user" {
			sequentialPointer++
			if sequentialPointer >= len(in.Turns) {
				continue // dropped: advanced past the last turn
			}
			applyRecord(&buckets[sequentialPointer], line, record)
			appliedSequential = true
			continue
		}
		if sequentialPointer >= 0 && sequentialPointer < len(buckets) {
			applyRecord(&buckets[sequentialPointer], line, record)
			appliedSequential = true
		}
	}

	mode := schema.CorrelationModeNone
	switch {
	case appliedTimestamp:
		mode = schema.CorrelationModeTimestamps
	case appliedSequential:
		mode = schema.CorrelationModeSequential
	}

	var notes []string
	if mode == schema.CorrelationModeNone {
		notes = append(notes, "no usable timestamps or user-message markers")
	} else if sawTimestamp && !appliedTimestamp {
		notes = append(notes, "timestamps present but outside session window")
	}

	return schema.ExternalLogCorrelation{
		Mode:        mode,
		ParsedLines: parsedLines,
		ParseErrors: parseErrors,
		PerTurn:     buildPerTurn(in.Turns, buckets),
		Notes:       notes,
	}
}

func buildPerTurn(turns []schema.TurnEvent, buckets []bucket) []schema.PerTurnCorrelation {
	out := make([]schema.PerTurnCorrelation, 0, len(turns))
	for i, turn := range turns {
		b := buckets[i]
		names := make([]string, 0, len(b.toolUseNames))
		for name := range b.toolUseNames {
			names = append(names, name)
		}
		sort.Strings(names)

		entry := schema.PerTurnCorrelation{
			TurnIndex:    turn.Index,
			RecordCount:  b.recordCount,
			RecordBytes:  b.recordBytes,
			ToolUseCount: int64(len(names)),
			ToolUseNames: names,
		}
		if b.hasInputTokens {
			v := b.inputTokens
			entry.InputTokenCount = &v
		}
		if b.hasOutputTokens {
			v := b.outputTokens
			entry.OutputTokenCount = &v
		}
		out = append(out, entry)
	}
	return out
}
