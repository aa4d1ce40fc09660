// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme is a purely cosmetic override for the default report's
// colors. It has no effect on the data a report shows, only how it
// looks; an optional convenience for the `report --theme` flag, not a
// core concern.
type Theme struct {
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`
	Accent     string `yaml:"accent"`
	Border     string `yaml:"border"`
}

// DefaultTheme matches the colors the report used before theming
// existed.
func DefaultTheme() Theme {
	return Theme{
		Background: "#ffffff",
		Foreground: "#222222",
		Accent:     "#f4f4f4",
		Border:     "#cccccc",
	}
}

// LoadTheme reads a YAML theme file, filling any field left blank
// with the corresponding DefaultTheme value.
func LoadTheme(path string) (Theme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("reading theme file: %w", err)
	}
	theme := DefaultTheme()
	if err := yaml.Unmarshal(raw, &theme); err != nil {
		return Theme{}, fmt.Errorf("parsing theme file %s: %w", path, err)
	}
	return theme, nil
}
