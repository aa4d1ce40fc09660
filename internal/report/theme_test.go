// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccprofiler/ccprofiler/internal/schema"
)

func TestLoadThemeOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	if err := os.WriteFile(path, []byte("accent: '#ff0000'\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	theme, err := LoadTheme(path)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if theme.Accent != "#ff0000" {
		t.Errorf("Accent = %q, want #ff0000", theme.Accent)
	}
	if theme.Background != DefaultTheme().Background {
		t.Errorf("Background = %q, want the default left untouched", theme.Background)
	}
}

func TestRenderThemedAppliesCustomColors(t *testing.T) {
	data := schema.New(schema.Config{SessionID: "theme-test"}, schema.Environment{OS: "linux"}, "t0", "t0")
	theme := Theme{Background: "#123456", Foreground: "#222", Accent: "#f4f4f4", Border: "#ccc"}

	html, err := Default().RenderThemed(data, theme)
	if err != nil {
		t.Fatalf("RenderThemed: %v", err)
	}
	if !strings.Contains(string(html), "#123456") {
		t.Error("expected the custom background to appear in the rendered report")
	}
}
