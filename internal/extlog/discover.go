// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package extlog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// candidate is one .jsonl file discovered under the scan root.
type candidate struct {
	path    string
	size    int64
	modUnix int64
}

// resolveRoot implements §4.5 step 1: replace every non-ASCII-alphanumeric
// character of the absolute cwd with '-' to get the deterministic
// project-dir name, and prefer <projectsRoot>/<projectDir> (depth 2)
// over the whole <projectsRoot> (depth 6) when the former exists.
func resolveRoot(cwd, projectsRoot string) (root string, maxDepth int) {
	if projectsRoot == "" {
		projectsRoot = defaultProjectsRoot()
	}
	if cwd == "" {
		return projectsRoot, 6
	}

	abs, err := filepath.Abs(cwd)
	if err != nil {
		abs = cwd
	}
	projectDir := sanitizeProjectDirName(abs)
	candidateRoot := filepath.Join(projectsRoot, projectDir)
	if info, err := os.Stat(candidateRoot); err == nil && info.IsDir() {
		return candidateRoot, 2
	}
	return projectsRoot, 6
}

func sanitizeProjectDirName(absCwd string) string {
	var b strings.Builder
	b.Grow(len(absCwd))
	for _, r := range absCwd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func defaultProjectsRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".claude", "projects")
	}
	return filepath.Join(home, ".claude", "projects")
}

// scanCandidates breadth-first scans root up to maxDepth, bounded by
// maxScanEntries total directory entries visited, collecting .jsonl
// files whose mtime is at least startedAtMsEpoch - 10s.
func scanCandidates(root string, maxDepth int, startedAtMsEpoch int64) []candidate {
	type queueEntry struct {
		path  string
		depth int
	}

	minModUnix := (startedAtMsEpoch - modTimeWindowMs) / 1000

	var candidates []candidate
	entriesVisited := 0
	queue := []queueEntry{{path: root, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(current.path)
		if err != nil {
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			if entriesVisited >= maxScanEntries {
				return candidates
			}
			entriesVisited++

			full := filepath.Join(current.path, entry.Name())
			if entry.IsDir() {
				if current.depth+1 <= maxDepth {
					queue = append(queue, queueEntry{path: full, depth: current.depth + 1})
				}
				continue
			}
			if !strings.HasSuffix(entry.Name(), ".jsonl") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if startedAtMsEpoch > 0 && info.ModTime().Unix() < minModUnix {
				continue
			}
			candidates = append(candidates, candidate{
				path:    full,
				size:    info.Size(),
				modUnix: info.ModTime().Unix(),
			})
		}
	}
	return candidates
}

// selectBySize implements the no-read policy: greatest size_bytes,
// ties broken by more recent mtime (§4.5 step 3, and §8 property 7).
func selectBySize(candidates []candidate) string {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.size > best.size || (c.size == best.size && c.modUnix > best.modUnix) {
			best = c
		}
	}
	return best.path
}
