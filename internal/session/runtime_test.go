// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"strings"
	"testing"

	"github.com/ccprofiler/ccprofiler/internal/config"
)

func TestLooksLikeAssistantMatchesByBaseName(t *testing.T) {
	cases := map[string]bool{
		"claude":               true,
		"/usr/local/bin/claude": true,
		"Claude.exe":           true,
		"bash":                 false,
		"python3":              false,
	}
	for command, want := range cases {
		if got := looksLikeAssistant(command); got != want {
			t.Errorf("looksLikeAssistant(%q) = %v, want %v", command, got, want)
		}
	}
}

func TestBuildPersistedConfigHashesPathsByDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"claude", "--flag"}
	cfg.Cwd = "/home/alice/project"
	cfg.Output = "/tmp/out"
	r := &Runtime{cfg: cfg}

	persisted := r.buildPersistedConfig("session-1")
	if persisted.Cwd != "" {
		t.Errorf("Cwd = %q, want empty without --unsafe-store-paths", persisted.Cwd)
	}
	if persisted.CwdSha256 == "" {
		t.Error("expected CwdSha256 to be populated")
	}
	if persisted.Command != nil {
		t.Errorf("Command = %v, want nil without --unsafe-store-command", persisted.Command)
	}
	if persisted.CommandSha256 == "" {
		t.Error("expected CommandSha256 to be populated")
	}
}

func TestBuildPersistedConfigKeepsPlaintextWhenUnsafeFlagsSet(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"claude"}
	cfg.Cwd = "/home/alice/project"
	cfg.Output = "/tmp/out"
	cfg.UnsafeStorePaths = true
	cfg.UnsafeStoreCommand = true
	r := &Runtime{cfg: cfg}

	persisted := r.buildPersistedConfig("session-1")
	if persisted.Cwd != cfg.Cwd {
		t.Errorf("Cwd = %q, want %q", persisted.Cwd, cfg.Cwd)
	}
	if len(persisted.Command) != 1 || persisted.Command[0] != "claude" {
		t.Errorf("Command = %v", persisted.Command)
	}
}

func TestBuildChildEnvAddsDisableMCPsOnlyWhenRequested(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"claude"}
	cfg.DisableMCPs = true

	env := buildChildEnv(cfg)
	found := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "CC_PROFILER_DISABLE_MCPS=") {
			found = true
		}
	}
	if !found {
		t.Error("expected the disable-MCPs env var to be present")
	}

	cfg.DisableMCPs = false
	env = buildChildEnv(cfg)
	for _, kv := range env {
		if strings.HasPrefix(kv, "CC_PROFILER_DISABLE_MCPS=") {
			t.Error("did not expect the disable-MCPs env var without the flag")
		}
	}
}
