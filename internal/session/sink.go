// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import "github.com/ccprofiler/ccprofiler/internal/schema"

// OnTurn implements tracker.Sink. It appends the turn and, if an
// External-Log Tracker is active, best-effort samples the selected
// log's size at this turn boundary (§4.2 "on every TurnEvent,
// best-effort sample the active log's size").
func (r *Runtime) OnTurn(t schema.TurnEvent) {
	r.mu.Lock()
	r.data.Turns = append(r.data.Turns, t)
	r.mu.Unlock()

	if r.extlog != nil {
		r.extlog.SampleAtTurn(t.Index, t.TMs)
	}
}

// OnInteraction implements tracker.Sink.
func (r *Runtime) OnInteraction(i schema.Interaction) {
	r.mu.Lock()
	r.data.Interactions = append(r.data.Interactions, i)
	r.mu.Unlock()
}

// onMarker is the Marker Watcher's callback.
func (r *Runtime) onMarker(m schema.MarkerEvent) {
	r.mu.Lock()
	r.data.Markers = append(r.data.Markers, m)
	r.mu.Unlock()
}

// onSample is the Process Sampler's callback. A sample with Error set
// additionally becomes a warning, matching §7's "transient probe
// errors ... swallowed at source, recorded at most as a warning."
func (r *Runtime) onSample(s schema.ProcessSample) {
	r.mu.Lock()
	r.data.Samples = append(r.data.Samples, s)
	r.mu.Unlock()

	if s.Error != "" {
		r.addWarning(schema.WarningClassSampler, schema.WarningCodeProbeFailed, s.Error)
	}
}

// onSamplerExit is the Process Sampler's on_exit callback, fired
// exactly once when a probe failure stops it (§4.3). Finalize step 2
// calls Stop defensively regardless, so there is nothing left to do
// here beyond logging.
func (r *Runtime) onSamplerExit() {
	r.logger.Warn("process sampler stopped after a probe failure")
}

// addWarning appends a Warning, reducing Detail to a fixed short
// string unless --unsafe-store-errors is set (§7 "Propagation
// policy").
func (r *Runtime) addWarning(class schema.WarningClass, code schema.WarningCode, detail string) {
	w := schema.Warning{Class: class, Code: code}
	if r.cfg.UnsafeStoreErrors {
		w.Detail = detail
	} else {
		w.Detail = shortDetail(code)
	}

	r.mu.Lock()
	r.data.Warnings = append(r.data.Warnings, w)
	r.mu.Unlock()

	r.logger.Warn("recorded warning", "class", class, "code", code)
}

func shortDetail(code schema.WarningCode) string {
	switch code {
	case schema.WarningCodeChildExitNonZero:
		return "child exited non-zero"
	case schema.WarningCodeProbeFailed:
		return "probe failed"
	case schema.WarningCodeDurationTimeout:
		return "duration timeout"
	case schema.WarningCodeInterrupt:
		return "interrupted"
	case schema.WarningCodeReportRenderFailed:
		return "report render failed"
	case schema.WarningCodeFinalizeStepFailed:
		return "finalize step failed"
	case schema.WarningCodeExternalLogStatFailed:
		return "stat failed"
	case schema.WarningCodeExternalLogSelectionFailed:
		return "selection failed"
	case schema.WarningCodeMarkerIOFailed:
		return "io error"
	default:
		return "error"
	}
}
