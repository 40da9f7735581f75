// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package repl

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
	"github.com/matt-FFFFFF/shellax/internal/spawn"
)

const maxScriptLine = 1024 * 1024

// ErrReadScript is returned when a script cannot be read.
var ErrReadScript = errors.New("failed to read script")

// RunScript runs every line of r in order until the end of input or an exit.
// Blank lines and lines starting with '#' are skipped.
func (s *Shell) RunScript(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxScriptLine)

	n := 0
	for sc.Scan() {
		n++

		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !s.RunLine(ctxlog.With(ctx, "lineNumber", n), line) {
			return nil
		}
	}

	if err := sc.Err(); err != nil {
		return errors.Join(ErrReadScript, err)
	}

	return nil
}

// StdioFor returns the stage file table for the given writers. Writers that
// are not files leave the corresponding stream inherited.
func StdioFor(out, errOut io.Writer) spawn.Stdio {
	var stdio spawn.Stdio

	if f, ok := out.(*os.File); ok {
		stdio.Stdout = f
	}

	if f, ok := errOut.(*os.File); ok {
		stdio.Stderr = f
	}

	return stdio
}
