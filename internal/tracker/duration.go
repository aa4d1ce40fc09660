// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import "time"

func durationMs(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
