// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package config defines the validated Config the Session Runtime
// consumes, mirroring the flag table in §6. Flag parsing itself lives
// in cmd/cc-profiler; this package is what gets validated and passed
// down, independent of how its fields were populated.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ccprofiler/ccprofiler/internal/ccerr"
)

// TurnHotkeyMode mirrors the --turn-hotkey choice.
type TurnHotkeyMode string

const (
	TurnHotkeyAltT TurnHotkeyMode = "alt+t"
	TurnHotkeyOff  TurnHotkeyMode = "off"
)

// Config is the validated, typed form of every flag in §6's table.
type Config struct {
	Output               string
	Cwd                  string
	Binary               string
	JSONLPath            string
	TurnHotkey           TurnHotkeyMode
	Duration             *time.Duration
	BurstIdleMs          int64
	SampleIntervalMs     int64
	InteractionTimeoutMs int64
	DisableMCPs          bool
	CorrelateJSONL       bool
	UnsafeStorePaths     bool
	UnsafeStoreCommand   bool
	UnsafeStoreErrors    bool

	Command []string
}

// Default returns a Config with every §6 default applied. Output and
// Cwd are left empty — cmd/cc-profiler fills them in from the process
// environment (auto-named output dir, os.Getwd()) once parsing
// succeeds, since a default that calls os.Getwd() eagerly here would
// make this constructor fallible for no good reason.
func Default() Config {
	return Config{
		TurnHotkey:           TurnHotkeyAltT,
		BurstIdleMs:          30,
		SampleIntervalMs:     100,
		InteractionTimeoutMs: 2000,
	}
}

// Validate checks every constraint in §6's flag table, returning a
// ccerr.Config naming the first offending flag, matching the
// teacher's fail-fast validation style.
func (c Config) Validate() error {
	if c.Binary != "" {
		if info, err := os.Stat(c.Binary); err != nil || info.IsDir() {
			return ccerr.NewConfig("--binary", fmt.Errorf("must be a readable file: %s", c.Binary))
		}
	}
	if c.TurnHotkey != TurnHotkeyAltT && c.TurnHotkey != TurnHotkeyOff {
		return ccerr.NewConfig("--turn-hotkey", fmt.Errorf("must be alt+t or off, got %q", c.TurnHotkey))
	}
	if c.BurstIdleMs < 0 {
		return ccerr.NewConfig("--burst-idle-ms", fmt.Errorf("must be >= 0"))
	}
	if c.SampleIntervalMs < 1 {
		return ccerr.NewConfig("--sample-interval-ms", fmt.Errorf("must be >= 1"))
	}
	if c.InteractionTimeoutMs < 0 {
		return ccerr.NewConfig("--interaction-timeout-ms", fmt.Errorf("must be >= 0"))
	}
	if len(c.Command) == 0 {
		return ccerr.NewConfig("command", fmt.Errorf("a command to run is required"))
	}
	return nil
}
