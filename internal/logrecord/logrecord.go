// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package logrecord extracts the fields §4.5 and §4.6 both need from a
// decoded external-log JSONL record: role and timestamp. It is shared
// between the External-Log Tracker's content-aware selection scoring
// and the External-Log Correlator's per-turn aggregation so the two
// components agree on what a "user record" or "a timestamp" means.
package logrecord

import (
	"strings"
	"time"
)

// ExtractRole implements §4.5's "Role / timestamp extraction": role
// comes from top-level type or role, or nested message.role; only
// "user" and "assistant" are recognized, case-insensitively.
func ExtractRole(record map[string]any) string {
	if role := stringField(record, "type"); isRecognizedRole(role) {
		return role
	}
	if role := stringField(record, "role"); isRecognizedRole(role) {
		return role
	}
	if message, ok := record["message"].(map[string]any); ok {
		if role := stringField(message, "role"); isRecognizedRole(role) {
			return role
		}
	}
	return ""
}

func isRecognizedRole(role string) bool {
	return role == "user" || role == "assistant"
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// ExtractTimestampMs looks at the timestamp candidate fields §4.5
// names (timestamp, time, created_at, createdAt, ts, meta.timestamp)
// and returns an epoch-milliseconds value. Numbers above 1e12 are
// treated as already-milliseconds; above 1e9 as seconds; strings are
// parsed as ISO-8601.
func ExtractTimestampMs(record map[string]any) (int64, bool) {
	for _, key := range []string{"timestamp", "time", "created_at", "createdAt", "ts"} {
		if ms, ok := timestampFieldMs(record[key]); ok {
			return ms, true
		}
	}
	if meta, ok := record["meta"].(map[string]any); ok {
		if ms, ok := timestampFieldMs(meta["timestamp"]); ok {
			return ms, true
		}
	}
	return 0, false
}

func timestampFieldMs(v any) (int64, bool) {
	switch value := v.(type) {
	case float64:
		return numericTimestampMs(value), true
	case string:
		t, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			t, err = time.Parse(time.RFC3339, value)
			if err != nil {
				return 0, false
			}
		}
		return t.UnixMilli(), true
	default:
		return 0, false
	}
}

func numericTimestampMs(value float64) int64 {
	switch {
	case value > 1e12:
		return int64(value)
	case value > 1e9:
		return int64(value * 1000)
	default:
		return int64(value)
	}
}
