// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package sampler implements the Process Sampler (§4.3): a ticking
// probe of the child PID that emits schema.ProcessSample records. The
// probe mechanism itself is pluggable (§4.9's "Polymorphism over
// probes") so platform support is added by providing additional
// capabilities rather than by branching inside the Sampler.
package sampler

import "github.com/ccprofiler/ccprofiler/internal/schema"

// BasicReading is the cross-platform subset of a process sample: CPU
// utilization since the probe's previous reading, and current
// resident set size.
type BasicReading struct {
	CPUPercent float64
	RSSBytes   int64
}

// BasicProbe returns the cross-platform {cpu_percent, rss_bytes}
// reading for a PID. Implementations are stateful — CPU percent is a
// delta against the probe's own previous reading for the same PID, so
// one BasicProbe instance must be reused across ticks.
type BasicProbe interface {
	Sample(pid int) (BasicReading, error)
}

// LinuxExtrasProbe is an optional capability supplying the
// Linux-flavored counters §4.3 names: page faults, context switches,
// open file descriptors, and thread count. A Sampler without one
// simply omits schema.ProcessSample.Linux.
type LinuxExtrasProbe interface {
	Sample(pid int) (schema.LinuxProcessExtras, error)
}
