// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var durationPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(ms|s|m|h)?$`)

var durationUnits = map[string]time.Duration{
	"":   time.Millisecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
}

// ParseDuration implements §8 S7 exactly: `\d+(\.\d+)?(ms|s|m|h)?`,
// default unit ms when no suffix is given.
func ParseDuration(s string) (time.Duration, error) {
	match := durationPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("config: invalid duration %q", s)
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	unit := durationUnits[match[2]]
	return time.Duration(value * float64(unit)), nil
}
