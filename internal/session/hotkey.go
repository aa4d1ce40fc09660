// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"

	"github.com/ccprofiler/ccprofiler/internal/tracker"
)

// altTLower and altTUpper are the two literal two-byte escape
// sequences §6 recognizes as the alt+t hotkey.
var (
	altTLower = []byte{0x1B, 0x74}
	altTUpper = []byte{0x1B, 0x54}
)

func isHotkeyChunk(chunk []byte) bool {
	return bytes.Equal(chunk, altTLower) || bytes.Equal(chunk, altTUpper)
}

// scanHint reports whether chunk contains a line terminator, without
// the Tracker ever seeing the chunk itself.
func scanHint(chunk []byte) tracker.DataScanHint {
	if bytes.ContainsAny(chunk, "\r\n") {
		return tracker.ScanHintNewline
	}
	return tracker.ScanHintNone
}
