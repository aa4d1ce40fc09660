// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"testing"

	"github.com/ccprofiler/ccprofiler/internal/tracker"
)

func TestIsHotkeyChunkRecognizesBothCaseVariants(t *testing.T) {
	if !isHotkeyChunk([]byte{0x1B, 0x74}) {
		t.Fatal("expected ESC t to be recognized")
	}
	if !isHotkeyChunk([]byte{0x1B, 0x54}) {
		t.Fatal("expected ESC T to be recognized")
	}
}

func TestIsHotkeyChunkRejectsOtherInput(t *testing.T) {
	cases := [][]byte{
		{0x1B},
		{0x1B, 0x74, 0x20},
		[]byte("hi\r"),
		{},
	}
	for _, c := range cases {
		if isHotkeyChunk(c) {
			t.Errorf("isHotkeyChunk(%v) = true, want false", c)
		}
	}
}

func TestScanHintDetectsLineTerminators(t *testing.T) {
	if scanHint([]byte("hi\r")) != tracker.ScanHintNewline {
		t.Error("expected a carriage return to produce ScanHintNewline")
	}
	if scanHint([]byte("hi\n")) != tracker.ScanHintNewline {
		t.Error("expected a line feed to produce ScanHintNewline")
	}
	if scanHint([]byte("hi")) != tracker.ScanHintNone {
		t.Error("expected no terminator to produce ScanHintNone")
	}
}
