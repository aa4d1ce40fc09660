// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"sync"

	"github.com/ccprofiler/ccprofiler/internal/clock"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// Config configures a Sampler.
type Config struct {
	Pid              int
	SampleIntervalMs int64
}

// Sampler ticks on its own interval, reads one BasicProbe (and,
// if present, one LinuxExtrasProbe) sample per tick, and hands the
// result to OnSample. A probe failure stops the Sampler and calls
// OnExit exactly once, matching §4.3: "If a probe fails ... record the
// error string in the sample, stop the sampler, and invoke on_exit
// exactly once."
type Sampler struct {
	clock  *clock.SessionClock
	config Config
	basic  BasicProbe
	extras LinuxExtrasProbe // nil if unavailable

	onSample func(schema.ProcessSample)
	onExit   func()

	mu      sync.Mutex
	ticker  *clock.Ticker
	stopped bool
}

// New creates a Sampler. extras may be nil.
func New(c *clock.SessionClock, config Config, basic BasicProbe, extras LinuxExtrasProbe, onSample func(schema.ProcessSample), onExit func()) *Sampler {
	return &Sampler{
		clock:    c,
		config:   config,
		basic:    basic,
		extras:   extras,
		onSample: onSample,
		onExit:   onExit,
	}
}

// Start begins ticking. Each tick runs synchronously to completion
// before the next can begin — a sample in flight never overlaps
// itself, per §4.3 — because the ticker channel is drained by a single
// goroutine that does the probing itself rather than fanning work out.
func (s *Sampler) Start() {
	underlying := s.clock.Underlying()
	s.mu.Lock()
	s.ticker = underlying.NewTicker(durationMs(s.config.SampleIntervalMs))
	ticker := s.ticker
	s.mu.Unlock()

	go func() {
		for range ticker.C {
			if s.tick() {
				return
			}
		}
	}()
}

// tick runs one sample and returns true if the Sampler has stopped
// (either because the caller called Stop, or because this tick's
// probe failed).
func (s *Sampler) tick() bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return true
	}
	s.mu.Unlock()

	sample := schema.ProcessSample{
		TMs: s.clock.NowMs(),
		Pid: s.config.Pid,
	}

	reading, err := s.basic.Sample(s.config.Pid)
	if err != nil {
		sample.Error = err.Error()
		s.onSample(sample)
		s.stopLocked()
		s.onExit()
		return true
	}
	sample.RSSBytes = &reading.RSSBytes
	sample.CPUPercent = reading.CPUPercent

	if s.extras != nil {
		if extras, err := s.extras.Sample(s.config.Pid); err == nil {
			sample.Linux = &extras
		}
	}

	s.onSample(sample)
	return false
}

// Stop halts future ticks. It does not call OnExit — that only fires
// when a probe itself fails.
func (s *Sampler) Stop() {
	s.stopLocked()
}

func (s *Sampler) stopLocked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.ticker != nil {
		s.ticker.Stop()
	}
}
