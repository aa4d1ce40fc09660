// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Command cc-profiler is the entry point for the session runtime,
// report renderer, and marker CLI described in spec.md §6. Flag
// parsing and subcommand dispatch are explicitly out of scope for
// this repository's core (§1); this package is the thin, real
// surface that exercises the core end to end.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "report":
			return runReport(args[1:])
		case "mark":
			return runMark(args[1:])
		case "run":
			return runSession(args[1:])
		}
	}
	return runSession(args)
}

// exitFor maps an error returned by one of the subcommands to a
// process exit code, per §6's "Exit codes. 0 on clean session;
// non-zero on configuration error or spawn failure." The child's own
// exit code never propagates here — it is recorded as a warning in
// data.json instead (§6).
func exitFor(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "cc-profiler:", err)
	return 1
}
