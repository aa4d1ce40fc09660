// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"os"

	"github.com/ccprofiler/ccprofiler/internal/config"
	"github.com/ccprofiler/ccprofiler/internal/ptyproxy"
	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// copyStdin implements §4.2's host-stdin path: read from the host
// terminal, swallow the hotkey escape when configured, otherwise feed
// byte counts to the Tracker and forward the chunk unchanged to the
// child. It returns once os.Stdin reaches EOF or a read error occurs;
// the caller does not wait on it, since there is no portable way to
// unblock a pending stdin Read when the session ends.
func (r *Runtime) copyStdin() {
	buf := make([]byte, 32*1024)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if r.cfg.TurnHotkey == config.TurnHotkeyAltT && isHotkeyChunk(chunk) {
				r.tracker.MarkTurn(schema.TurnSourceHotkey)
			} else {
				r.tracker.HandleInput(int64(len(chunk)), scanHint(chunk))
				if _, werr := r.pty.Writer().Write(chunk); werr != nil {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// copyStdout implements §4.2's child-stdout path and signals
// stdoutDone once the PTY master reaches EOF (the child exited and
// its slave side closed).
func (r *Runtime) copyStdout(stdoutDone chan<- struct{}) {
	defer close(stdoutDone)
	_ = ptyproxy.CopyCounting(os.Stdout, r.pty.Reader(), func(chunk []byte) {
		r.tracker.HandleOutput(int64(len(chunk)))
	})
}
