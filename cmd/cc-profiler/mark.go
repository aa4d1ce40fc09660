// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/ccprofiler/ccprofiler/internal/activesession"
	"github.com/ccprofiler/ccprofiler/internal/ccerr"
)

// markLine mirrors the marker package's rawMarkerLine shape (§6
// "markers.jsonl"): the two packages are intentionally not shared,
// since the CLI's writer side and the session's reader side have no
// other reason to depend on each other.
type markLine struct {
	TIso        string  `json:"tIso"`
	Label       *string `json:"label,omitempty"`
	LabelSha256 *string `json:"labelSha256,omitempty"`
}

func runMark(args []string) int {
	flagSet := pflag.NewFlagSet("cc-profiler mark", pflag.ContinueOnError)
	unsafePlaintext := flagSet.Bool("unsafe-plaintext-label", false, "store the label as plaintext instead of its SHA-256")
	if err := flagSet.Parse(args); err != nil {
		return exitFor(ccerr.NewConfig("args", err))
	}

	var label string
	if flagSet.NArg() > 0 {
		label = flagSet.Arg(0)
	}

	return exitFor(writeMarker(label, *unsafePlaintext))
}

func writeMarker(label string, unsafePlaintext bool) error {
	stateDir, err := activesession.DefaultStateDir()
	if err != nil {
		return err
	}
	pointer, err := activesession.Read(activesession.PointerPath(stateDir))
	if err != nil {
		return fmt.Errorf("reading active-session pointer (is a session running?): %w", err)
	}

	line := markLine{TIso: time.Now().UTC().Format(time.RFC3339Nano)}
	if label != "" {
		if unsafePlaintext {
			line.Label = &label
		} else {
			sum := sha256.Sum256([]byte(label))
			hexDigest := hex.EncodeToString(sum[:])
			line.LabelSha256 = &hexDigest
		}
	}

	encoded, err := json.Marshal(line)
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')

	file, err := os.OpenFile(pointer.MarkersPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening markers file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(encoded)
	return err
}
