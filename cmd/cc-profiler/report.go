// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/ccprofiler/ccprofiler/internal/ccerr"
	"github.com/ccprofiler/ccprofiler/internal/report"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

func runReport(args []string) int {
	flagSet := pflag.NewFlagSet("cc-profiler report", pflag.ContinueOnError)
	out := flagSet.String("out", "", "path to write the rendered report (default: report.html next to the data file)")
	theme := flagSet.String("theme", "", "path to a YAML theme file overriding the report's colors")
	if err := flagSet.Parse(args); err != nil {
		return exitFor(ccerr.NewConfig("args", err))
	}
	if flagSet.NArg() != 1 {
		return exitFor(fmt.Errorf("usage: cc-profiler report <data.json> [--out <path>] [--theme <path>]"))
	}
	dataPath := flagSet.Arg(0)

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(dataPath), "report.html")
	}

	return exitFor(renderReportFile(dataPath, outPath, *theme))
}

func renderReportFile(dataPath, outPath, themePath string) error {
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dataPath, err)
	}

	data, err := schema.DecodeVersioned(dataPath, raw)
	if err != nil {
		return err
	}

	theme := report.DefaultTheme()
	if themePath != "" {
		theme, err = report.LoadTheme(themePath)
		if err != nil {
			return err
		}
	}

	html, err := report.Default().RenderThemed(data, theme)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if err := os.WriteFile(outPath, html, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Fprintln(os.Stdout, outPath)
	return nil
}
