// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package correlate

import "strings"

const maxToolNameLength = 120

// applyRecord implements §4.6's "Per-record aggregation": it updates
// b with one more record's worth of count, byte length, tool-use
// names and token usage, all derived — the raw line is used only to
// measure its byte length, never stored.
func applyRecord(b *bucket, line string, record map[string]any) {
	b.recordCount++
	b.recordBytes += int64(len(line))

	for _, name := range extractToolUseNames(record) {
		b.toolUseNames[name] = true
	}

	if input, ok := extractTokenCount(record, []string{"input_tokens", "inputTokens", "prompt_tokens"}); ok {
		b.inputTokens += input
		b.hasInputTokens = true
	}
	if output, ok := extractTokenCount(record, []string{"output_tokens", "outputTokens", "completion_tokens"}); ok {
		b.outputTokens += output
		b.hasOutputTokens = true
	}
}

// extractToolUseNames implements §4.6's tool-name extraction: top
// level tool_name/toolName, tool.name, and any array element of
// content or message.content whose type contains "tool" and which
// carries a name.
func extractToolUseNames(record map[string]any) []string {
	var names []string

	if name, ok := stringValue(record["tool_name"]); ok {
		names = append(names, name)
	}
	if name, ok := stringValue(record["toolName"]); ok {
		names = append(names, name)
	}
	if tool, ok := record["tool"].(map[string]any); ok {
		if name, ok := stringValue(tool["name"]); ok {
			names = append(names, name)
		}
	}

	names = append(names, toolNamesFromContent(record["content"])...)
	if message, ok := record["message"].(map[string]any); ok {
		names = append(names, toolNamesFromContent(message["content"])...)
	}

	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = cleanToolName(name)
		if name != "" {
			cleaned = append(cleaned, name)
		}
	}
	return cleaned
}

func toolNamesFromContent(content any) []string {
	items, ok := content.([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, item := range items {
		element, ok := item.(map[string]any)
		if !ok {
			continue
		}
		elementType, _ := stringValue(element["type"])
		if !strings.Contains(elementType, "tool") {
			continue
		}
		if name, ok := stringValue(element["name"]); ok {
			names = append(names, name)
		}
	}
	return names
}

func cleanToolName(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) > maxToolNameLength {
		trimmed = trimmed[:maxToolNameLength]
	}
	return trimmed
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// extractTokenCount sums any matching field-name variant present on a
// usage-bearing sub-object (usage, token_usage, tokenUsage), per §4.6.
func extractTokenCount(record map[string]any, fieldNames []string) (int64, bool) {
	var total int64
	var found bool
	for _, usageKey := range []string{"usage", "token_usage", "tokenUsage"} {
		usage, ok := record[usageKey].(map[string]any)
		if !ok {
			continue
		}
		for _, field := range fieldNames {
			if v, ok := usage[field].(float64); ok {
				total += int64(v)
				found = true
			}
		}
	}
	return total, found
}
