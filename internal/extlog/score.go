// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package extlog

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/ccprofiler/ccprofiler/internal/logrecord"
)

// selectByContent implements §4.5 step 4: read bounded tails of the
// most recently modified candidates, score each, and return the
// highest scorer. Returns ok=false if every candidate scores 0 (the
// caller then falls back to selectBySize).
func selectByContent(candidates []candidate, startedAtMsEpoch int64) (string, bool) {
	byRecency := append([]candidate(nil), candidates...)
	sort.Slice(byRecency, func(i, j int) bool { return byRecency[i].modUnix > byRecency[j].modUnix })
	if len(byRecency) > maxContentReadFiles {
		byRecency = byRecency[:maxContentReadFiles]
	}

	type scored struct {
		path  string
		size  int64
		score int64
	}
	var results []scored
	for _, c := range byRecency {
		results = append(results, scored{path: c.path, size: c.size, score: scoreCandidate(c.path, startedAtMsEpoch)})
	}

	best := results[0]
	bestNonzero := false
	for _, r := range results {
		if r.score > best.score || (r.score == best.score && r.size > best.size) {
			best = r
		}
		if r.score > 0 {
			bestNonzero = true
		}
	}
	if !bestNonzero {
		return "", false
	}
	return best.path, true
}

func scoreCandidate(path string, startedAtMsEpoch int64) int64 {
	lines := readTailLines(path, maxContentReadBytes)

	var userCount, assistantCount, timestampCount, parsedCount int
	var anyTimestampInWindow bool

	for _, line := range lines {
		if parsedCount >= maxContentReadRecords {
			break
		}
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		parsedCount++

		switch logrecord.ExtractRole(record) {
		case "user":
			userCount++
		case "assistant":
			assistantCount++
		}

		if epochMs, ok := logrecord.ExtractTimestampMs(record); ok {
			timestampCount++
			if epochMs >= startedAtMsEpoch-modTimeWindowMs {
				anyTimestampInWindow = true
			}
		}
	}

	var score int64
	if userCount > 0 {
		score += 1_000_000
	}
	if assistantCount > 0 {
		score += 500_000
	}
	if timestampCount > 0 {
		score += 100_000
	}
	if anyTimestampInWindow {
		score += 200_000
	}
	score += int64(min(userCount, 500)) * 10_000
	score += int64(min(assistantCount, 500)) * 5_000
	score += int64(min(timestampCount, 5000)) * 10
	score += int64(min(parsedCount, 2000)) * 1

	sizeKib := fileSizeKib(path)
	score += int64(min(sizeKib, 50_000))

	return score
}

func fileSizeKib(path string) int {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return int(info.Size() / 1024)
}

// readTailLines reads up to maxBytes from the end of path and splits
// it into complete lines, discarding a leading partial line when the
// read started mid-file (offset > 0), matching §4.5 step 4's "skip a
// leading partial line when offset>0."
func readTailLines(path string, maxBytes int64) [][]byte {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil
	}

	size := info.Size()
	offset := int64(0)
	if size > maxBytes {
		offset = size - maxBytes
	}

	buf := make([]byte, size-offset)
	if _, err := file.ReadAt(buf, offset); err != nil && len(buf) == 0 {
		return nil
	}

	rawLines := strings.Split(string(buf), "\n")
	if offset > 0 && len(rawLines) > 0 {
		rawLines = rawLines[1:] // discard the leading partial line
	}

	var lines [][]byte
	for _, l := range rawLines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, []byte(l))
	}
	return lines
}
