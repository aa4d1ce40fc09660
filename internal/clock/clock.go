// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the monotonic time source shared by every
// session component. Production code injects Real(); tests inject
// Fake() for deterministic timer control.
//
// Every component that schedules a timer (AfterFunc, NewTicker) or reads
// elapsed time takes a Clock instead of calling the time package
// directly, so the Interaction Tracker, Process Sampler and Marker
// Watcher can be driven by a single fake clock in tests without real
// sleeps.
package clock

import "time"

// Clock abstracts time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for duration d, then calls f on its own
	// goroutine. Returns a Timer that can cancel the pending call
	// with Stop. If d <= 0, f runs immediately.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker returns a Ticker that delivers ticks on its C channel
	// at the specified interval. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. Read ticks from C. Call Stop when the
// Ticker is no longer needed to release resources.
type Ticker struct {
	// C delivers ticks. Buffered with capacity 1, matching time.Ticker.
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. No more ticks are sent on C after Stop
// returns. Stop does not close C.
func (t *Ticker) Stop() { t.stopFunc() }

// Timer represents a scheduled AfterFunc call.
type Timer struct {
	stopFunc  func() bool
	resetFunc func(time.Duration) bool
}

// Stop prevents the Timer from firing. Returns true if the call stops
// the timer, false if the timer has already fired, been stopped, or
// its callback is already running.
func (t *Timer) Stop() bool { return t.stopFunc() }

// Reset changes the timer to fire after duration d, as if newly
// created. Returns true if the timer was active before the reset.
func (t *Timer) Reset(d time.Duration) bool { return t.resetFunc(d) }

// SessionClock anchors a Clock to a session start, giving components
// the relative now_ms() and the wall-clock epoch the spec requires for
// external correlation (matching log-file timestamps against turn
// boundaries).
type SessionClock struct {
	clock           Clock
	startedAt       time.Time
	startedAtMsEpoch int64
}

// NewSessionClock captures the current instant from clock as the
// session's t=0 reference.
func NewSessionClock(c Clock) *SessionClock {
	now := c.Now()
	return &SessionClock{
		clock:            c,
		startedAt:        now,
		startedAtMsEpoch: now.UnixMilli(),
	}
}

// NowMs returns milliseconds elapsed since the session started.
func (s *SessionClock) NowMs() int64 {
	return s.clock.Now().Sub(s.startedAt).Milliseconds()
}

// StartedAtMsEpoch returns the wall-clock epoch (Unix milliseconds) the
// session started at. All t_ms fields are relative to this anchor.
func (s *SessionClock) StartedAtMsEpoch() int64 { return s.startedAtMsEpoch }

// StartedAt returns the wall-clock instant the session started at.
func (s *SessionClock) StartedAt() time.Time { return s.startedAt }

// Underlying returns the wrapped Clock, for components (Sampler,
// Marker Watcher) that need to schedule their own timers/tickers on
// the same time source.
func (s *SessionClock) Underlying() Clock { return s.clock }

// AfterFunc schedules f to run after d, relative to the real/fake
// clock driving this session.
func (s *SessionClock) AfterFunc(d time.Duration, f func()) *Timer {
	return s.clock.AfterFunc(d, f)
}
