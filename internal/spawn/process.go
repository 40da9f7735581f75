// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package spawn

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
)

var _ Handle = (*process)(nil)

// ErrCouldNotStartProcess is returned when the process could not be started.
var ErrCouldNotStartProcess = errors.New("could not start process")

// Spec describes an operating system process to start.
type Spec struct {
	Path         string        // Full path of the executable.
	Fallbacks    []string      // Tried in order when Path cannot be started.
	Args         []string      // Argument vector, including argv[0].
	Dir          string        // Working directory. Empty means the interpreter's.
	Env          []string      // Environment. Nil means the interpreter's.
	Stdio        Stdio         // Starting file table.
	Redirections []Redirection // Applied in order on top of Stdio.
}

type process struct {
	name string
	ps   *os.Process

	once  sync.Once
	code  int
	err   error
	state *os.ProcessState
}

// Start starts the process described by spec, trying spec.Path and then each
// fallback until one starts. The files in spec.Redirections are closed once
// the child has started, or once every path has failed.
func Start(ctx context.Context, spec Spec) (Handle, error) {
	logger := ctxlog.Logger(ctx).With("path", spec.Path)

	table, err := files(spec.Stdio, spec.Redirections)
	if err != nil {
		_ = closeOwned(spec.Redirections)
		return nil, err
	}

	args := spec.Args
	if len(args) == 0 {
		args = []string{filepath.Base(spec.Path)}
	}

	env := spec.Env
	if env == nil {
		env = os.Environ()
	}

	attr := &os.ProcAttr{
		Dir:   spec.Dir,
		Env:   env,
		Files: table,
	}

	var (
		ps   *os.Process
		errs []error
	)

	for _, path := range slices.Concat([]string{spec.Path}, spec.Fallbacks) {
		logger.Debug("starting process", "candidate", path, "args", args, "dir", spec.Dir)

		ps, err = os.StartProcess(path, args, attr)
		if err == nil {
			break
		}

		errs = append(errs, err)
	}

	if cerr := closeOwned(spec.Redirections); cerr != nil {
		logger.Debug("closing forwarded files", "error", cerr)
	}

	if ps == nil {
		return nil, errors.Join(append([]error{ErrCouldNotStartProcess}, errs...)...)
	}

	logger.Debug("process started", "pid", ps.Pid)

	return &process{name: args[0], ps: ps}, nil
}

func (p *process) Name() string { return p.name }

func (p *process) Pid() int { return p.ps.Pid }

func (p *process) Wait() (int, error) {
	p.once.Do(func() {
		p.state, p.err = p.ps.Wait()
		if p.state != nil {
			p.code = p.state.ExitCode()
		} else {
			p.code = -1
		}
	})

	return p.code, p.err
}

func (p *process) Signal(sig os.Signal) error {
	if err := p.ps.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}

	return nil
}

func (p *process) Kill() error {
	if err := p.ps.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}

	return nil
}
