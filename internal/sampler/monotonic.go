// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import "time"

// monotonicNanos gives LinuxBasicProbe a wall-clock delta independent
// of the session's own Clock abstraction: the probe computes CPU
// percent from real elapsed time between two /proc reads, not from
// the (possibly fake, test-only) session clock.
func monotonicNanos() int64 {
	return time.Now().UnixNano()
}
