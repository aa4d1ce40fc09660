// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"
	"time"
)

// S7 - duration parser.
func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"150", 150 * time.Millisecond},
		{"150ms", 150 * time.Millisecond},
		{"2s", 2 * time.Second},
		{"1m", time.Minute},
		{"2h", 2 * time.Hour},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		if err != nil {
			t.Errorf("ParseDuration(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseDurationRejectsInvalidStrings(t *testing.T) {
	for _, in := range []string{"1d", "", "abc", "-5s"} {
		if _, err := ParseDuration(in); err == nil {
			t.Errorf("ParseDuration(%q): expected an error", in)
		}
	}
}

func TestValidateRejectsUnreadableBinary(t *testing.T) {
	c := Default()
	c.Command = []string{"echo"}
	c.Binary = filepath.Join(t.TempDir(), "missing-binary")
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for a missing --binary path")
	}
}

func TestValidateRejectsEmptyCommand(t *testing.T) {
	c := Default()
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an empty command")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	c := Default()
	c.Command = []string{"true"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
