// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package repl

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// lineBuiltins are handled by the pipeline itself rather than the registry.
var lineBuiltins = []string{"cd", "exit"}

// Complete returns the candidate lines for tab completion of line. The first
// word of a stage completes to command names, later words to paths.
func (s *Shell) Complete(line string) []string {
	start := strings.LastIndexAny(line, " \t") + 1
	head, word := line[:start], line[start:]

	var candidates []string
	if commandPosition(head) {
		candidates = s.commandNames(word)
	} else {
		candidates = pathNames(word)
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = head + c
	}

	return out
}

// commandPosition reports whether the next word of a line starting with head
// names a command.
func commandPosition(head string) bool {
	fields := strings.Fields(head)
	return len(fields) == 0 || fields[len(fields)-1] == "|"
}

func (s *Shell) commandNames(prefix string) []string {
	seen := make(map[string]struct{})

	add := func(n string) {
		if strings.HasPrefix(n, prefix) {
			seen[n] = struct{}{}
		}
	}

	for _, n := range lineBuiltins {
		add(n)
	}

	for _, n := range s.orch.Builtins().Names() {
		add(n)
	}

	for _, dir := range s.orch.SearchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, e := range entries {
			if !e.IsDir() {
				add(e.Name())
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}

func pathNames(prefix string) []string {
	dir, base := filepath.Split(prefix)

	readDir := dir
	if readDir == "" {
		readDir = "."
	}

	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil
	}

	var names []string

	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), base) {
			continue
		}

		if strings.HasPrefix(e.Name(), ".") && !strings.HasPrefix(base, ".") {
			continue
		}

		n := dir + e.Name()
		if e.IsDir() {
			n += "/"
		}

		names = append(names, n)
	}

	return names
}
