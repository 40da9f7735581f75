// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/matt-FFFFFF/shellax/internal/color"
	"github.com/matt-FFFFFF/shellax/internal/command"
	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
	"github.com/matt-FFFFFF/shellax/internal/parser"
	"github.com/matt-FFFFFF/shellax/internal/pipeline"
)

// Shell connects a line reader to an orchestrator.
type Shell struct {
	orch   *pipeline.Orchestrator
	reader LineReader
	out    io.Writer
	errOut io.Writer
	trace  bool
	prompt func() string
	last   pipeline.Result
}

// Option configures a Shell.
type Option func(*Shell)

// WithReader sets the line reader used by Run.
func WithReader(r LineReader) Option {
	return func(s *Shell) {
		s.reader = r
	}
}

// WithOutput sets where job notices and completions are printed.
func WithOutput(out, errOut io.Writer) Option {
	return func(s *Shell) {
		s.out = out
		s.errOut = errOut
	}
}

// WithTrace prints the parsed chain to the error output before each line runs.
func WithTrace(trace bool) Option {
	return func(s *Shell) {
		s.trace = trace
	}
}

// WithPrompt replaces the prompt function.
func WithPrompt(fn func() string) Option {
	return func(s *Shell) {
		s.prompt = fn
	}
}

// NewShell returns a shell running lines on orch.
func NewShell(orch *pipeline.Orchestrator, opts ...Option) *Shell {
	s := &Shell{
		orch:   orch,
		out:    os.Stdout,
		errOut: os.Stderr,
		prompt: Prompt,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// LastResult returns the result of the most recent line.
func (s *Shell) LastResult() pipeline.Result {
	return s.last
}

// RunLine parses and runs a single line. It returns false when the
// interpreter should exit.
func (s *Shell) RunLine(ctx context.Context, line string) bool {
	chain := parser.Parse(line)

	if s.trace {
		if err := chain.Describe(s.errOut); err != nil {
			ctxlog.Debug(ctx, "trace failed", "error", err)
		}
	}

	if f := chain.Front(); f != nil && f.AutoComplete {
		s.printCompletions(chain)
		s.last = pipeline.Result{Status: pipeline.StatusSuccess}

		return true
	}

	s.last = s.orch.Execute(ctx, chain)
	ctxlog.Debug(ctx, "line done", "status", s.last.Status.String(), "error", s.last.Err)

	if s.last.Job != nil {
		fmt.Fprintf(s.out, "[%d] %s\n", s.last.Job.ID, s.last.Job.Line) //nolint:errcheck
	}

	return s.last.Status != pipeline.StatusExit
}

// Run prompts for lines until exit, end of input or a read error.
func (s *Shell) Run(ctx context.Context) error {
	if s.reader == nil {
		s.reader = NewLinerReader(s.Complete)
	}

	defer func() {
		_ = s.reader.Close()
	}()

	for {
		s.NotifyJobs()

		line, err := s.reader.Prompt(s.prompt())

		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out) //nolint:errcheck
			return nil
		case err != nil:
			return fmt.Errorf("reading line: %w", err)
		}

		if strings.TrimSpace(line) != "" {
			s.reader.AppendHistory(line)
		}

		if !s.RunLine(ctx, line) {
			break
		}
	}

	if n := s.orch.Reaper().Running(); n > 0 {
		ctxlog.Info(ctx, "exiting with background jobs running", "jobs", n)
	}

	return nil
}

// NotifyJobs prints a notice for every background job that finished since
// the last call.
func (s *Shell) NotifyJobs() {
	for _, j := range s.orch.Reaper().Finished() {
		fmt.Fprintf(s.out, "[%d] %s  %s\n", j.ID, color.Colorize("Done", color.FgGreen), j.Line) //nolint:errcheck
	}
}

func (s *Shell) printCompletions(chain command.Chain) {
	last := chain[len(chain)-1]

	candidates := s.commandNames(last.Name)
	if n := len(last.Args); n > 0 {
		candidates = pathNames(last.Args[n-1])
	}

	for _, c := range candidates {
		fmt.Fprintln(s.out, c) //nolint:errcheck
	}
}
