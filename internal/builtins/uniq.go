// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
)

var _ Builtin = Uniq{}

// exitInterrupted is the status of a builtin stopped by a signal.
const exitInterrupted = 130

// Uniq prints each distinct input line once, in order of first appearance.
// Unlike the POSIX utility the lines do not need to be adjacent.
type Uniq struct{}

// Name implements Builtin.
func (Uniq) Name() string { return "uniq" }

// Description implements Builtin.
func (Uniq) Description() string { return "print distinct lines, optionally counted" }

// Run implements Builtin.
func (u Uniq) Run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := getopt.New()
	count := opts.BoolLong("count", 'c', "prefix lines by the number of occurrences")

	if len(argv) == 0 {
		argv = []string{u.Name()}
	}

	if err := opts.Getopt(argv, nil); err != nil {
		ctxlog.Debug(ctx, "uniq", "detail", "invalid invocation", "error", err)
		fmt.Fprintf(stderr, "uniq: %s\nusage: uniq [-c|--count]\n", err) //nolint:errcheck
		opts.PrintOptions(stderr)

		return 1
	}

	data, err := io.ReadAll(stdin)
	if err != nil && ctx.Err() != nil {
		ctxlog.Debug(ctx, "uniq", "detail", "interrupted", "error", err)
		return exitInterrupted
	}

	if err != nil {
		fmt.Fprintf(stderr, "uniq: %s\n", err) //nolint:errcheck
		return 1
	}

	w := bufio.NewWriter(stdout)

	for _, e := range distinct(splitLines(string(data))) {
		if *count {
			fmt.Fprintf(w, "%7d %s\n", e.count, e.line) //nolint:errcheck
		} else {
			fmt.Fprintln(w, e.line) //nolint:errcheck
		}
	}

	if err := w.Flush(); err != nil {
		ctxlog.Debug(ctx, "uniq", "detail", "write failed", "error", err)
	}

	return 0
}

type lineCount struct {
	line  string
	count int
}

// splitLines splits s on newlines. A trailing newline does not start an
// extra line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// distinct keeps every line whose first occurrence is itself, counting the
// total number of occurrences.
func distinct(lines []string) []lineCount {
	index := make(map[string]int, len(lines))
	out := make([]lineCount, 0, len(lines))

	for _, l := range lines {
		if i, ok := index[l]; ok {
			out[i].count++
			continue
		}

		index[l] = len(out)
		out = append(out, lineCount{line: l, count: 1})
	}

	return out
}
