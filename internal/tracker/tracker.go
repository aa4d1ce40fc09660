// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracker implements the Interaction Tracker (§4.1): a pure,
// timer-driven state machine that infers per-turn latency from opaque
// byte counts alone. It never receives byte content: its caller tests
// for a line terminator and recognizes the hotkey escape sequence, and
// passes the Tracker only chunk lengths, a DataScanHint, and turn
// marks.
//
// The Tracker has no I/O of its own. All scheduling flows through the
// clock.SessionClock its owner supplies, so the whole state machine is
// deterministically testable with clock.Fake.
package tracker

import (
	"github.com/ccprofiler/ccprofiler/internal/clock"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// HotkeyMode selects how turns are detected.
type HotkeyMode string

const (
	// HotkeyModeEnter treats any carriage-return or line-feed in an
	// input chunk as a turn boundary.
	HotkeyModeEnter HotkeyMode = "enter"
	// HotkeyModeHotkey treats the alt+t escape sequence (swallowed by
	// the caller before it reaches Tracker.HandleInput) as the turn
	// boundary; HandleInput's line-terminator scan is ignored.
	HotkeyModeHotkey HotkeyMode = "hotkey"
)

// DataScanHint tells HandleInput whether the input chunk the caller
// observed contains a line terminator, without exposing the chunk's
// content to the Tracker.
type DataScanHint int

const (
	ScanHintNone    DataScanHint = iota
	ScanHintNewline
)

// Config holds the Tracker's fixed timing parameters (spec §6 flags
// --burst-idle-ms and --interaction-timeout-ms).
type Config struct {
	HotkeyMode           HotkeyMode
	BurstIdleMs          int64
	InteractionTimeoutMs int64
}

// Sink receives the Tracker's emissions. on_turn for a new turn fires
// strictly before any interaction finalization that turn triggers
// (the prior turn's overlap finalization), matching §4.1's ordering
// requirement.
type Sink interface {
	OnTurn(schema.TurnEvent)
	OnInteraction(schema.Interaction)
}

// activeInteraction is the Tracker's internal, mutable representation
// of an in-flight latency window. It becomes an immutable
// schema.Interaction only once finalized.
type activeInteraction struct {
	id               int64
	kind             schema.InteractionKind
	t0Ms             int64
	turnIndex        *int
	firstOutputAtMs  *int64
	lastOutputAtMs   *int64
	inputBytes       int64
	outputBytes      int64
	idleTimer        *clock.Timer
	noOutputTimer    *clock.Timer
	finalized        bool
}

// Tracker is the Interaction Tracker state machine. Not safe for
// concurrent use — the owner (Session Runtime) must serialize all
// calls onto its single event loop, as required by §5.
type Tracker struct {
	clock  *clock.SessionClock
	config Config
	sink   Sink

	keystroke *activeInteraction
	turn      *activeInteraction

	nextTurnIndex int
	nextID        int64
}

// New creates a Tracker bound to the given session clock and sink.
func New(c *clock.SessionClock, config Config, sink Sink) *Tracker {
	return &Tracker{
		clock:         c,
		config:        config,
		sink:          sink,
		nextTurnIndex: 1,
		nextID:        1,
	}
}

// HandleInput processes a chunk of host-to-child input of byteLen
// bytes. hint reports whether the caller observed a line terminator in
// the chunk (tested only for the enter-mode turn boundary; the
// Tracker never receives the chunk itself).
func (t *Tracker) HandleInput(byteLen int64, hint DataScanHint) {
	now := t.clock.NowMs()

	if t.keystroke == nil {
		t.keystroke = t.startInteraction(schema.InteractionKindKeystroke, now, nil)
	}
	t.keystroke.inputBytes += byteLen

	if hint == ScanHintNewline && t.config.HotkeyMode == HotkeyModeEnter {
		t.beginTurn(schema.TurnSourceEnter, now)
		t.turn.inputBytes += byteLen
		return
	}

	if t.turn != nil {
		t.turn.inputBytes += byteLen
	}
}

// MarkTurn begins a turn from a source other than a line terminator
// (the alt+t hotkey). The caller is responsible for swallowing the
// hotkey escape sequence before it reaches the child or HandleInput.
func (t *Tracker) MarkTurn(source schema.TurnSource) {
	t.beginTurn(source, t.clock.NowMs())
}

// HandleOutput processes a chunk of child-to-host output of byteLen
// bytes, applying it to every currently active interaction.
func (t *Tracker) HandleOutput(byteLen int64) {
	now := t.clock.NowMs()
	if t.keystroke != nil {
		t.observeOutput(t.keystroke, now, byteLen)
	}
	if t.turn != nil {
		t.observeOutput(t.turn, now, byteLen)
	}
}

// End finalizes any still-active interactions with reason
// session_end, per §4.1 step 4. Call exactly once, from Session
// Runtime's finalize.
func (t *Tracker) End() {
	now := t.clock.NowMs()
	if t.keystroke != nil {
		t.finalize(t.keystroke, schema.EndReasonSessionEnd, now)
	}
	if t.turn != nil {
		t.finalize(t.turn, schema.EndReasonSessionEnd, now)
	}
}

func (t *Tracker) startInteraction(kind schema.InteractionKind, now int64, turnIndex *int) *activeInteraction {
	interaction := &activeInteraction{
		id:        t.nextID,
		kind:      kind,
		t0Ms:      now,
		turnIndex: turnIndex,
	}
	t.nextID++
	return interaction
}

func (t *Tracker) beginTurn(source schema.TurnSource, now int64) {
	index := t.nextTurnIndex
	t.nextTurnIndex++
	t.sink.OnTurn(schema.TurnEvent{Index: index, TMs: now, Source: source})

	if t.turn != nil {
		t.finalize(t.turn, schema.EndReasonOverlap, now)
	}

	turnIndex := index
	t.turn = t.startInteraction(schema.InteractionKindTurn, now, &turnIndex)

	interaction := t.turn
	interaction.noOutputTimer = t.clock.AfterFunc(durationMs(t.config.InteractionTimeoutMs), func() {
		if interaction.finalized || interaction.firstOutputAtMs != nil {
			return
		}
		t.finalize(interaction, schema.EndReasonTimeout, t.clock.NowMs())
	})
}

func (t *Tracker) observeOutput(interaction *activeInteraction, now int64, byteLen int64) {
	if interaction.firstOutputAtMs == nil {
		firstAt := now
		interaction.firstOutputAtMs = &firstAt
		if interaction.noOutputTimer != nil {
			interaction.noOutputTimer.Stop()
			interaction.noOutputTimer = nil
		}
	}
	lastAt := now
	interaction.lastOutputAtMs = &lastAt
	interaction.outputBytes += byteLen

	if interaction.idleTimer != nil {
		interaction.idleTimer.Stop()
	}
	captured := interaction
	interaction.idleTimer = t.clock.AfterFunc(durationMs(t.config.BurstIdleMs), func() {
		if captured.finalized {
			return
		}
		t.finalize(captured, schema.EndReasonBurstIdle, t.clock.NowMs())
	})
}

func (t *Tracker) finalize(interaction *activeInteraction, reason schema.EndReason, now int64) {
	if interaction.finalized {
		return
	}
	interaction.finalized = true

	if interaction.idleTimer != nil {
		interaction.idleTimer.Stop()
	}
	if interaction.noOutputTimer != nil {
		interaction.noOutputTimer.Stop()
	}

	if t.keystroke == interaction {
		t.keystroke = nil
	}
	if t.turn == interaction {
		t.turn = nil
	}

	finalized := schema.Interaction{
		ID:          interaction.id,
		Kind:        interaction.kind,
		T0Ms:        interaction.t0Ms,
		InputBytes:  interaction.inputBytes,
		OutputBytes: interaction.outputBytes,
		TurnIndex:   interaction.turnIndex,
		EndReason:   reason,
	}
	if interaction.firstOutputAtMs != nil {
		t1 := *interaction.firstOutputAtMs - interaction.t0Ms
		finalized.T1Ms = &t1
	}
	if interaction.lastOutputAtMs != nil {
		t2 := *interaction.lastOutputAtMs - interaction.t0Ms
		finalized.T2Ms = &t2
	}

	t.sink.OnInteraction(finalized)
}
