// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/ccprofiler/ccprofiler/internal/activesession"
	"github.com/ccprofiler/ccprofiler/internal/correlate"
	"github.com/ccprofiler/ccprofiler/internal/extlog"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// finalize runs §4.2's strict, idempotent 13-step teardown exactly
// once, regardless of which exit path triggered it. childWaitErr is
// the error Wait() returned for the child process, if any.
func (r *Runtime) finalize(childWaitErr error) error {
	r.finalizeOnce.Do(func() {
		r.finalizeErr = r.finalizeSteps(childWaitErr)
	})
	return r.finalizeErr
}

func (r *Runtime) finalizeSteps(childWaitErr error) error {
	recordChildExit(r, childWaitErr)

	// (1) end the Tracker session.
	r.tracker.End()

	// (2) stop the Sampler.
	if r.sampler != nil {
		r.sampler.Stop()
	}

	// (3) stop the Marker Watcher.
	if r.markerWatch != nil {
		r.markerWatch.Stop()
	}

	// (4) restore terminal mode.
	r.runStep(schema.WarningClassFinalize, func() error { return r.restoreTerminal() })

	// (5) detach stdin/signal/resize handlers.
	r.detachHandlers()

	// (6) kill the child if still alive.
	r.killChild()

	// (7) delete the active-session pointer.
	if r.pointerPath != "" {
		r.runStep(schema.WarningClassFinalize, func() error { return activesession.Delete(r.pointerPath) })
	}

	// (8) release the settings overlay.
	if r.overlay != nil {
		r.runStep(schema.WarningClassFinalize, func() error { return r.overlay.Release() })
	}

	// (9) run the correlator if a path was selected and requested.
	r.maybeCorrelate()

	// (10) stamp ended_at_iso.
	r.data.EndedAtIso = nowIso()

	// copy the External-Log Tracker's accumulated size samples and
	// selection outcome into SessionData just before it is written;
	// this is the single point where that component's state crosses
	// into the owning loop's document.
	r.collectExternalLog()

	sort.SliceStable(r.data.Markers, func(i, j int) bool {
		return r.data.Markers[i].TMs < r.data.Markers[j].TMs
	})

	// (11) attempt to render the report.
	reportHTML, reportErr := r.renderReport()

	// (12) write data.json.
	if err := r.writeDataJSON(); err != nil {
		r.logger.Error("writing data.json failed", "error", err)
		return fmt.Errorf("writing data.json: %w", err)
	}

	// (13) if the report succeeded, write report.html.
	if reportErr == nil {
		if err := os.WriteFile(filepath.Join(r.cfg.Output, "report.html"), reportHTML, 0600); err != nil {
			r.logger.Warn("writing report.html failed", "error", err)
		}
	}

	return nil
}

func recordChildExit(r *Runtime, waitErr error) {
	if waitErr == nil {
		return
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ExitCode() != 0 {
		r.addWarning(schema.WarningClassChild, schema.WarningCodeChildExitNonZero, waitErr.Error())
		return
	}
	r.logger.Warn("waiting for child process ended with an error", "error", waitErr)
}

// runStep executes fn, recording a finalize warning (not aborting the
// sequence) on failure — §7's "Finalize errors are caught per step;
// the step is skipped and a warning is added so data.json still
// writes."
func (r *Runtime) runStep(class schema.WarningClass, fn func() error) {
	if err := fn(); err != nil {
		r.addWarning(class, schema.WarningCodeFinalizeStepFailed, err.Error())
	}
}

func (r *Runtime) maybeCorrelate() {
	if r.extlog == nil || !r.cfg.CorrelateJSONL {
		return
	}
	path, ok := r.extlog.SelectedPath()
	if !ok {
		return
	}
	r.mu.Lock()
	turns := append([]schema.TurnEvent{}, r.data.Turns...)
	r.mu.Unlock()

	result := correlate.Run(correlate.Input{
		Path:             path,
		StartedAtMsEpoch: r.sessionClock.StartedAtMsEpoch(),
		EndedAtMsEpoch:   r.sessionClock.StartedAtMsEpoch() + r.sessionClock.NowMs(),
		Turns:            turns,
	})
	r.data.JSONL.Correlation = &result
}

func (r *Runtime) collectExternalLog() {
	if r.extlog == nil {
		return
	}
	path, selected := r.extlog.SelectedPath()
	r.data.JSONL.Selected = selected
	if selected {
		r.data.JSONL.PathSha256 = extlog.PathSha256Hex(path)
	}
	r.data.JSONL.SizeSamples = r.extlog.Samples()
}

func (r *Runtime) renderReport() ([]byte, error) {
	html, err := r.renderer.Render(r.data)
	if err != nil {
		r.addWarning(schema.WarningClassReport, schema.WarningCodeReportRenderFailed, err.Error())
		return nil, err
	}
	return html, nil
}

func (r *Runtime) writeDataJSON() error {
	body, err := r.data.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.cfg.Output, "data.json"), body, 0600)
}
