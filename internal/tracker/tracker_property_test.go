// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/ccprofiler/ccprofiler/internal/clock"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// trackerOp is one step of a randomly generated event sequence fed to
// the Tracker under test.
type trackerOp struct {
	kind      string // "input", "output", "advance"
	byteLen   int64
	isNewline bool
	ms        int64
}

var trackerOpGen = rapid.Custom(func(t *rapid.T) trackerOp {
	kind := rapid.SampledFrom([]string{"input", "output", "advance"}).Draw(t, "kind")
	switch kind {
	case "input":
		return trackerOp{
			kind:      kind,
			byteLen:   rapid.Int64Range(1, 64).Draw(t, "byteLen"),
			isNewline: rapid.Bool().Draw(t, "isNewline"),
		}
	case "output":
		return trackerOp{kind: kind, byteLen: rapid.Int64Range(1, 64).Draw(t, "byteLen")}
	default:
		return trackerOp{kind: kind, ms: rapid.Int64Range(1, 50).Draw(t, "ms")}
	}
})

// TestPropertyTurnIndicesAreDenseAndIncreasing verifies spec.md §8
// property 2 under arbitrary interleavings of input, output, and time
// advancement.
func TestPropertyTurnIndicesAreDenseAndIncreasing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fc := clock.Fake(time.Unix(0, 0))
		sc := clock.NewSessionClock(fc)
		sink := &recordingSink{}
		tr := New(sc, defaultConfig(), sink)

		ops := rapid.SliceOfN(trackerOpGen, 0, 200).Draw(rt, "ops")
		for _, op := range ops {
			switch op.kind {
			case "input":
				hint := ScanHintNone
				if op.isNewline {
					hint = ScanHintNewline
				}
				tr.HandleInput(op.byteLen, hint)
			case "output":
				tr.HandleOutput(op.byteLen)
			case "advance":
				fc.Advance(time.Duration(op.ms) * time.Millisecond)
			}
		}
		tr.End()

		if err := schema.ValidateTurnIndices(sink.turns); err != nil {
			rt.Fatalf("turn index invariant violated: %v", err)
		}
	})
}

// TestPropertyLatencyOrderingAndSingleFinalization verifies spec.md §8
// properties 3 and 4: every Interaction with both t1Ms and t2Ms set has
// 0 <= t1Ms <= t2Ms, every end_reason is one of the four declared
// values, and no interaction ID is emitted to the sink more than once.
func TestPropertyLatencyOrderingAndSingleFinalization(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fc := clock.Fake(time.Unix(0, 0))
		sc := clock.NewSessionClock(fc)
		sink := &recordingSink{}
		tr := New(sc, defaultConfig(), sink)

		ops := rapid.SliceOfN(trackerOpGen, 0, 200).Draw(rt, "ops")
		for _, op := range ops {
			switch op.kind {
			case "input":
				hint := ScanHintNone
				if op.isNewline {
					hint = ScanHintNewline
				}
				tr.HandleInput(op.byteLen, hint)
			case "output":
				tr.HandleOutput(op.byteLen)
			case "advance":
				fc.Advance(time.Duration(op.ms) * time.Millisecond)
			}
		}
		tr.End()

		seen := map[int64]bool{}
		for _, interaction := range sink.interactions {
			if seen[interaction.ID] {
				rt.Fatalf("interaction %d finalized more than once", interaction.ID)
			}
			seen[interaction.ID] = true
			if err := schema.ValidateInteraction(interaction); err != nil {
				rt.Fatalf("%v", err)
			}
		}
	})
}
