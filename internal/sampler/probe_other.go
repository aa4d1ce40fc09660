// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package sampler

import (
	"errors"

	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// errUnsupportedPlatform is returned by every probe on platforms
// without a /proc filesystem. §4.3 treats a probe failure as a reason
// to stop the Sampler and record a schema.Warning, not a hard error,
// so callers degrade gracefully rather than refusing to run at all.
var errUnsupportedPlatform = errors.New("sampler: process probing is only implemented on linux")

// NoopBasicProbe always fails; it exists so the Sampler has something
// to construct on platforms with no real probe.
type NoopBasicProbe struct{}

// NewLinuxBasicProbe is named for parity with the linux build so
// callers (internal/session) can construct "the platform's basic
// probe" without a build-tagged call site of their own.
func NewLinuxBasicProbe() NoopBasicProbe { return NoopBasicProbe{} }

// Sample implements BasicProbe.
func (NoopBasicProbe) Sample(pid int) (BasicReading, error) {
	return BasicReading{}, errUnsupportedPlatform
}

// LinuxExtras exists on every platform so callers can hold a value of
// this type unconditionally; off Linux its Sample always fails and
// there is no NewLinuxExtras constructor, so wiring it into a Sampler
// here takes an explicit zero-value LinuxExtras{}.
type LinuxExtras struct{}

// Sample implements LinuxExtrasProbe.
func (LinuxExtras) Sample(pid int) (schema.LinuxProcessExtras, error) {
	return schema.LinuxProcessExtras{}, errUnsupportedPlatform
}
