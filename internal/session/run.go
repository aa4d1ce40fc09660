// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ccprofiler/ccprofiler/internal/activesession"
	"github.com/ccprofiler/ccprofiler/internal/ccerr"
	"github.com/ccprofiler/ccprofiler/internal/clock"
	"github.com/ccprofiler/ccprofiler/internal/config"
	"github.com/ccprofiler/ccprofiler/internal/extlog"
	"github.com/ccprofiler/ccprofiler/internal/marker"
	"github.com/ccprofiler/ccprofiler/internal/ptyproxy"
	"github.com/ccprofiler/ccprofiler/internal/sampler"
	"github.com/ccprofiler/ccprofiler/internal/schema"
	"github.com/ccprofiler/ccprofiler/internal/tracker"
)

// Run executes one full session lifecycle: create the output
// directory, spawn the child under a PTY, wire every collaborator,
// block until the child exits (or is killed by a timeout/interrupt),
// and finalize exactly once. The returned error is non-nil only for
// config/spawn failures (§7) or a failure to write data.json;
// in-session degradations become warnings inside the written
// data.json, not a returned error. On a spawn failure Run restores the
// terminal and returns; the finalize sequence does not run and no
// data.json is written.
func (r *Runtime) Run() error {
	if err := os.MkdirAll(r.cfg.Output, 0700); err != nil {
		return ccerr.NewSpawn(fmt.Errorf("creating output directory: %w", err))
	}

	logger, logFile, err := NewLogger(r.cfg.Output)
	if err != nil {
		return ccerr.NewSpawn(err)
	}
	r.logger = logger
	r.logFile = logFile
	defer r.logFile.Close()

	r.sessionClock = clock.NewSessionClock(clock.Real())

	sessionID := newSessionID()
	persistedConfig := r.buildPersistedConfig(sessionID)
	startedAtIso := nowIso()
	r.data = schema.New(persistedConfig, buildEnvironment(), startedAtIso, startedAtIso)

	hotkeyMode := tracker.HotkeyModeHotkey
	if r.cfg.TurnHotkey == config.TurnHotkeyOff {
		hotkeyMode = tracker.HotkeyModeEnter
	}
	r.tracker = tracker.New(r.sessionClock, tracker.Config{
		HotkeyMode:           hotkeyMode,
		BurstIdleMs:          r.cfg.BurstIdleMs,
		InteractionTimeoutMs: r.cfg.InteractionTimeoutMs,
	}, r)

	if err := r.enterRawMode(); err != nil {
		r.logger.Warn("entering raw terminal mode failed; continuing without it", "error", err)
	}
	cols, rows := r.initialWindowSize()

	cmd := r.buildCommand()
	pty, err := ptyproxy.Start(cmd, cols, rows)
	if err != nil {
		_ = r.restoreTerminal()
		return ccerr.NewSpawn(fmt.Errorf("starting child under pty: %w", err))
	}
	r.pty = pty

	if err := r.writeActiveSessionPointer(startedAtIso); err != nil {
		r.logger.Warn("writing active-session pointer failed", "error", err)
	}

	markersPath := filepath.Join(r.cfg.Output, "markers.jsonl")
	if err := ensureEmptyFile(markersPath); err != nil {
		r.logger.Warn("creating markers.jsonl failed", "error", err)
	}
	r.markerWatch = marker.New(r.sessionClock, marker.Config{
		Path:           markersPath,
		PollIntervalMs: 250,
	}, r.onMarker)
	r.markerWatch.Start()

	if r.cfg.JSONLPath != "" || looksLikeAssistant(r.cfg.Command[0]) {
		r.extlog = extlog.New(extlog.Config{
			OverridePath:          r.cfg.JSONLPath,
			Cwd:                   r.cfg.Cwd,
			AllowReadForSelection: false,
			StartedAtMsEpoch:      r.sessionClock.StartedAtMsEpoch(),
		})
		r.data.JSONL.AllowReadForSelection = false
	}

	r.sampler = sampler.New(r.sessionClock, sampler.Config{
		Pid:              pidOf(pty),
		SampleIntervalMs: r.cfg.SampleIntervalMs,
	}, sampler.NewLinuxBasicProbe(), sampler.LinuxExtras{}, r.onSample, r.onSamplerExit)
	r.sampler.Start()

	if r.cfg.Duration != nil {
		duration := *r.cfg.Duration
		r.durationTimer = r.sessionClock.AfterFunc(duration, func() {
			r.addWarning(schema.WarningClassDuration, schema.WarningCodeDurationTimeout, "")
			r.killChild()
		})
	}

	r.watchResize()
	r.watchInterrupt()

	stdoutDone := make(chan struct{})
	go r.copyStdout(stdoutDone)
	go r.copyStdin()

	waitErr := r.pty.Wait()

	select {
	case <-stdoutDone:
	case <-time.After(2 * time.Second):
		r.logger.Warn("timed out waiting for child pty output to drain")
	}

	return r.finalize(waitErr)
}

func pidOf(p *ptyproxy.PTY) int {
	if process := p.Process(); process != nil {
		return process.Pid
	}
	return -1
}

func ensureEmptyFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	return file.Close()
}

func (r *Runtime) writeActiveSessionPointer(startedAtIso string) error {
	stateDir := r.stateDir
	if stateDir == "" {
		dir, err := activesession.DefaultStateDir()
		if err != nil {
			return err
		}
		stateDir = dir
	}
	outputDir, err := filepath.Abs(r.cfg.Output)
	if err != nil {
		return err
	}
	r.pointerPath = activesession.PointerPath(stateDir)
	return activesession.Write(r.pointerPath, activesession.Pointer{
		SchemaVersion:    activesession.CurrentVersion,
		OutputDir:        outputDir,
		MarkersPath:      filepath.Join(outputDir, "markers.jsonl"),
		StartedAtIso:     startedAtIso,
		StartedAtMsEpoch: r.sessionClock.StartedAtMsEpoch(),
	})
}
