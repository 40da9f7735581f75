// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import "errors"

// Status is the outcome of running a line.
type Status int

const (
	// StatusSuccess means the line ran. Stages may still have exited non-zero.
	StatusSuccess Status = iota
	// StatusExit means the interpreter should terminate.
	StatusExit
	// StatusUnknown means a stage could not be started at all.
	StatusUnknown
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusExit:
		return "exit"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

const (
	// Exit code reported for a stage whose command could not be found.
	exitCodeNotFound = 127
	// Exit code of an in-process stage stopped by a signal.
	exitCodeInterrupted = 130
)

var (
	// ErrCommandNotFound is returned when no search directory holds the command.
	ErrCommandNotFound = errors.New("command not found")
	// ErrCreatePipe is returned when an operating system pipe could not be created.
	ErrCreatePipe = errors.New("failed to create pipe")
	// ErrMissingOperand is returned when cd is given no directory.
	ErrMissingOperand = errors.New("missing directory operand")
	// ErrChdir is returned when cd could not change directory.
	ErrChdir = errors.New("could not change directory")
)

// StageResult describes how one stage ended.
type StageResult struct {
	Index    int    // Position in the chain.
	Name     string // Command name.
	Pid      int    // Process id, 0 for in-process stages and stages that never started.
	Builtin  bool   // Ran in-process.
	Started  bool   // A process or task was started.
	ExitCode int    // Exit status, -1 when unknown.
	Err      error  // Why the stage failed, if it did.
}

// Result is the outcome of Execute.
type Result struct {
	Status Status
	Stages []StageResult
	Job    *Job  // Set when the chain was sent to the background.
	Err    error // All stage errors, as a *multierror.Error.
}

// NotFound reports whether any stage failed because its command was not found.
func (r Result) NotFound() bool {
	return errors.Is(r.Err, ErrCommandNotFound)
}
