// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ccprofiler/ccprofiler/internal/schema"
	"golang.org/x/term"
)

// enterRawMode puts the host terminal into raw mode if stdin is a
// terminal at all (it may not be, e.g. under a test harness or when
// piped), grounded on the teacher's cmd/bureau/observe/observe.go
// term.MakeRaw/term.Restore pair.
func (r *Runtime) enterRawMode() error {
	r.stdinIsTTY = term.IsTerminal(r.stdinFd)
	if !r.stdinIsTTY {
		return nil
	}
	state, err := term.MakeRaw(r.stdinFd)
	if err != nil {
		return err
	}
	r.rawState = state
	r.rawModeEntered = true
	return nil
}

// restoreTerminal implements finalize step 4. Idempotent: safe to
// call more than once.
func (r *Runtime) restoreTerminal() error {
	if !r.rawModeEntered {
		return nil
	}
	r.rawModeEntered = false
	return term.Restore(r.stdinFd, r.rawState)
}

func (r *Runtime) initialWindowSize() (cols, rows uint16) {
	if r.stdinIsTTY {
		if width, height, err := term.GetSize(r.stdinFd); err == nil {
			return uint16(width), uint16(height)
		}
	}
	return 80, 24
}

// watchResize installs SIGWINCH handling (§4.2 "terminal resize:
// whenever the host terminal resizes, resize the child PTY"). It runs
// until winchChan is closed by detachHandlers.
func (r *Runtime) watchResize() {
	r.winchChan = make(chan os.Signal, 1)
	signal.Notify(r.winchChan, syscall.SIGWINCH)
	go func() {
		for range r.winchChan {
			cols, rows := r.initialWindowSize()
			if err := r.pty.Resize(cols, rows); err != nil {
				r.logger.Warn("resizing child pty failed", "error", err)
			}
		}
	}()
}

// watchInterrupt installs Ctrl-C/SIGTERM handling (§4.2 "interrupt:
// capture host interrupt ... record a warning, kill the child; let
// natural teardown finalize"), again grounded on observe.go's
// signal.Notify(SIGINT, SIGTERM) pattern — but unlike observe.go this
// does not os.Exit from the handler: killing the child lets Run's
// blocking Wait return normally, so finalize runs through its full
// ordered sequence exactly once.
func (r *Runtime) watchInterrupt() {
	r.sigChan = make(chan os.Signal, 1)
	signal.Notify(r.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if _, ok := <-r.sigChan; !ok {
			return
		}
		r.addWarning(schema.WarningClassInterrupt, schema.WarningCodeInterrupt, "")
		r.killChild()
	}()
}

func (r *Runtime) detachHandlers() {
	if r.sigChan != nil {
		signal.Stop(r.sigChan)
		close(r.sigChan)
		r.sigChan = nil
	}
	if r.winchChan != nil {
		signal.Stop(r.winchChan)
		close(r.winchChan)
		r.winchChan = nil
	}
}

func (r *Runtime) killChild() {
	process := r.pty.Process()
	if process == nil {
		return
	}
	_ = process.Kill()
}
