// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	"github.com/matt-FFFFFF/shellax/internal/builtins"
	"github.com/matt-FFFFFF/shellax/internal/command"
	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
	"github.com/matt-FFFFFF/shellax/internal/redirect"
	"github.com/matt-FFFFFF/shellax/internal/signalbroker"
	"github.com/matt-FFFFFF/shellax/internal/spawn"
)

const (
	// ErrorPrefix starts every diagnostic the interpreter prints.
	ErrorPrefix = "-shellax"

	exitBuiltin = "exit"
	cdBuiltin   = "cd"
)

// DefaultSearchDirs are the directories probed for external programs, in order.
// Each entry is joined to the command name by plain concatenation.
var DefaultSearchDirs = []string{"/usr/bin/", "/bin/"}

// Orchestrator runs command chains.
type Orchestrator struct {
	searchDirs []string
	stdio      spawn.Stdio
	builtins   builtins.Registry
	reaper     *Reaper
	sigCh      chan os.Signal // Receives signals to forward. Allows injection in test.
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSearchDirs replaces the executable search directories.
func WithSearchDirs(dirs ...string) Option {
	return func(o *Orchestrator) {
		o.searchDirs = dirs
	}
}

// WithStdio sets the streams stages inherit when not piped or redirected.
func WithStdio(stdio spawn.Stdio) Option {
	return func(o *Orchestrator) {
		o.stdio = stdio
	}
}

// WithBuiltins sets the builtin registry.
func WithBuiltins(r builtins.Registry) Option {
	return func(o *Orchestrator) {
		o.builtins = r
	}
}

// WithReaper sets the reaper that collects background jobs.
func WithReaper(r *Reaper) Option {
	return func(o *Orchestrator) {
		o.reaper = r
	}
}

// New returns an orchestrator with the default search directories, the
// default builtins and a fresh reaper.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		searchDirs: DefaultSearchDirs,
		builtins:   builtins.Default(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.reaper == nil {
		o.reaper = NewReaper()
	}

	return o
}

// Reaper returns the reaper background jobs are handed to.
func (o *Orchestrator) Reaper() *Reaper {
	return o.reaper
}

// Builtins returns the builtin registry.
func (o *Orchestrator) Builtins() builtins.Registry {
	return o.builtins
}

// SearchDirs returns the executable search directories.
func (o *Orchestrator) SearchDirs() []string {
	return o.searchDirs
}

type stage struct {
	cmd    *command.Command
	index  int
	handle spawn.Handle
	result StageResult
}

// Execute runs chain and reports the outcome. It never panics on bad input.
func (o *Orchestrator) Execute(ctx context.Context, chain command.Chain) Result {
	ctx = ctxlog.With(ctx, "line", chain.String())

	if chain.Empty() {
		ctxlog.Debug(ctx, "empty line")
		return Result{Status: StatusSuccess}
	}

	front := chain.Front()
	switch front.Name {
	case exitBuiltin:
		ctxlog.Debug(ctx, "exit requested")
		return Result{Status: StatusExit}
	case cdBuiltin:
		return o.cd(ctx, front)
	}

	var errs *multierror.Error

	status := StatusSuccess
	resolver := redirect.NewResolver()
	stages := make([]*stage, 0, len(chain))

	var pipeIn *os.File

	for i, c := range chain {
		st := &stage{cmd: c, index: i, result: StageResult{Index: i, Name: c.Name, ExitCode: -1}}

		var pipeOut, nextIn *os.File

		if i < len(chain)-1 {
			r, w, err := os.Pipe()
			if err != nil {
				closeFiles(pipeIn)
				st.result.Err = errors.Join(ErrCreatePipe, err)
				errs = multierror.Append(errs, st.result.Err)
				stages = append(stages, st)
				status = StatusUnknown

				o.report("%s", err)

				break
			}

			nextIn, pipeOut = r, w
		}

		o.startStage(ctx, resolver, st, pipeIn, pipeOut)
		stages = append(stages, st)
		pipeIn = nextIn

		if st.result.Err != nil {
			errs = multierror.Append(errs, fmt.Errorf("stage %d: %w", i, st.result.Err))
		}

		if errors.Is(st.result.Err, ErrCommandNotFound) {
			status = StatusUnknown
		}
	}

	res := Result{Status: status}

	if chain.Background() {
		res.Stages = collect(stages)
		res.Job = o.reaper.Track(ctx, chain.String(), stages)
		res.Err = errs.ErrorOrNil()
		ctxlog.Debug(ctx, "job sent to background", "job", res.Job.ID)

		return res
	}

	o.wait(ctx, stages)

	for _, st := range stages {
		if st.handle != nil && st.result.Err != nil {
			errs = multierror.Append(errs, fmt.Errorf("stage %d: %w", st.index, st.result.Err))
		}
	}

	res.Stages = collect(stages)
	res.Err = errs.ErrorOrNil()

	return res
}

// startStage opens the redirections of st, wires its pipe ends and starts
// it. Every file passed in is owned by the stage from here on.
func (o *Orchestrator) startStage(ctx context.Context, resolver *redirect.Resolver, st *stage, pipeIn, pipeOut *os.File) {
	c := st.cmd
	logger := ctxlog.Logger(ctx).With("stage", st.index, "name", c.Name)

	streams, err := resolver.Resolve(c.Redirects)
	if err != nil {
		closeFiles(pipeIn, pipeOut)
		st.result.Err = err
		o.report("%s", err)

		return
	}

	in, out, err := streams.OSFiles()
	if err != nil {
		_ = streams.Close()
		closeFiles(pipeIn, pipeOut)
		st.result.Err = err
		o.report("%s", err)

		return
	}

	var redirections []spawn.Redirection

	// File redirections first so that pipe ends take precedence.
	for _, r := range []spawn.Redirection{
		{Stream: spawn.Stdin, File: in},
		{Stream: spawn.Stdout, File: out},
		{Stream: spawn.Stdin, File: pipeIn},
		{Stream: spawn.Stdout, File: pipeOut},
	} {
		if r.File != nil {
			redirections = append(redirections, r)
		}
	}

	var h spawn.Handle

	switch b, isBuiltin := o.builtins.Lookup(c.Name); {
	case c.Name == "":
		logger.Debug("starting pass-through stage")
		h, err = spawn.Go(ctx, "", passThrough, o.stdio, redirections)
		st.result.Builtin = true
	case isBuiltin:
		logger.Debug("starting builtin")
		argv := c.Argv()
		h, err = spawn.Go(ctx, c.Name, func(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
			return b.Run(ctx, argv, stdin, stdout, stderr)
		}, o.stdio, redirections)
		st.result.Builtin = true
	default:
		paths := o.candidates(c.Name)
		if len(paths) == 0 {
			closeRedirections(redirections)
			o.notFound(st, nil)

			return
		}

		logger.Debug("starting process", "paths", paths)
		h, err = spawn.Start(ctx, spawn.Spec{
			Path:         paths[0],
			Fallbacks:    paths[1:],
			Args:         c.Argv(),
			Stdio:        o.stdio,
			Redirections: redirections,
		})

		if errors.Is(err, spawn.ErrCouldNotStartProcess) {
			logger.Debug("no candidate could be started", "error", err)
			o.notFound(st, err)

			return
		}
	}

	if err != nil {
		st.result.Err = err
		o.report("%s: %s", c.Name, err)

		return
	}

	st.handle = h
	st.result.Started = true
	st.result.Pid = h.Pid()
}

// notFound records st as a command that could not be found, with cause as
// the underlying start error if there was one.
func (o *Orchestrator) notFound(st *stage, cause error) {
	st.result.Err = fmt.Errorf("%w: %s", ErrCommandNotFound, st.cmd.Name)
	if cause != nil {
		st.result.Err = fmt.Errorf("%w: %s: %w", ErrCommandNotFound, st.cmd.Name, cause)
	}

	st.result.ExitCode = exitCodeNotFound
	o.report("%s: command not found", st.cmd.Name)
}

// candidates returns every search directory entry for name that is a regular
// file the interpreter may execute, in search order.
func (o *Orchestrator) candidates(name string) []string {
	var paths []string

	for _, dir := range o.searchDirs {
		p := dir + name

		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if unix.Access(p, unix.X_OK) == nil {
			paths = append(paths, p)
		}
	}

	return paths
}

// wait waits for every started stage, last stage first. While waiting,
// terminating signals are forwarded to the stages and cancelling ctx kills
// them.
func (o *Orchestrator) wait(ctx context.Context, stages []*stage) {
	handles := handlesOf(stages)
	if len(handles) == 0 {
		return
	}

	sigCh := o.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	done := make(chan struct{})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for {
			select {
			case sig := <-sigCh:
				ctxlog.Info(ctx, "forwarding signal", "signal", sig.String())

				for _, h := range handles {
					if err := h.Signal(sig); err != nil {
						ctxlog.Debug(ctx, "failed to send signal", "name", h.Name(), "error", err)
					}
				}
			case <-ctx.Done():
				ctxlog.Info(ctx, "context done, killing pipeline")

				for _, h := range handles {
					if err := h.Kill(); err != nil {
						ctxlog.Error(ctx, "kill failed", "name", h.Name(), "error", err)
					}
				}

				return
			case <-done:
				return
			}
		}
	}()

	for i := len(stages) - 1; i >= 0; i-- {
		waitStage(ctx, stages[i])
	}

	close(done)
	wg.Wait()
}

func waitStage(ctx context.Context, st *stage) {
	if st.handle == nil {
		return
	}

	code, err := st.handle.Wait()
	st.result.ExitCode = code

	if err != nil {
		st.result.Err = err
	}

	ctxlog.Debug(ctx, "stage finished", "stage", st.index, "name", st.cmd.Name, "exitCode", code)
}

// cd changes the working directory of the interpreter itself.
func (o *Orchestrator) cd(ctx context.Context, c *command.Command) Result {
	res := Result{Status: StatusSuccess}

	if len(c.Args) == 0 {
		o.report("cd: %s", ErrMissingOperand)
		res.Err = ErrMissingOperand

		return res
	}

	if err := os.Chdir(c.Args[0]); err != nil {
		msg := err.Error()

		var pe *fs.PathError
		if errors.As(err, &pe) {
			msg = fmt.Sprintf("%s: %s", pe.Path, pe.Err)
		}

		o.report("cd: %s", msg)
		res.Err = errors.Join(ErrChdir, err)

		return res
	}

	ctxlog.Debug(ctx, "changed directory", "dir", c.Args[0])

	return res
}

// report prints a diagnostic on the interpreter's stderr.
func (o *Orchestrator) report(format string, args ...any) {
	w := o.stdio.Stderr
	if w == nil {
		w = os.Stderr
	}

	fmt.Fprintf(w, ErrorPrefix+": "+format+"\n", args...) //nolint:errcheck
}

func passThrough(ctx context.Context, stdin io.Reader, stdout, _ io.Writer) int {
	if _, err := io.Copy(stdout, stdin); err != nil {
		if ctx.Err() != nil {
			return exitCodeInterrupted
		}

		return 1
	}

	return 0
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

func closeRedirections(redirections []spawn.Redirection) {
	for _, r := range redirections {
		closeFiles(r.File)
	}
}

func handlesOf(stages []*stage) []spawn.Handle {
	var hs []spawn.Handle

	for _, st := range stages {
		if st.handle != nil {
			hs = append(hs, st.handle)
		}
	}

	return hs
}

func collect(stages []*stage) []StageResult {
	out := make([]StageResult, len(stages))
	for i, st := range stages {
		out[i] = st.result
	}

	return out
}
