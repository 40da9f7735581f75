// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package spawn

import (
	"errors"
	"os"
)

// Stream is the index of a standard stream in the file table of a stage.
type Stream int

const (
	Stdin  Stream = iota // Stdin is file descriptor 0.
	Stdout               // Stdout is file descriptor 1.
	Stderr               // Stderr is file descriptor 2.

	numStreams
)

// String returns the conventional name of the stream.
func (s Stream) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// ErrInvalidStream is returned when a redirection names a stream other than stdin, stdout or stderr.
var ErrInvalidStream = errors.New("invalid stream")

// Redirection binds a stream to a file.
type Redirection struct {
	Stream Stream
	File   *os.File
}

// Stdio is the file table a stage starts from before redirections apply.
// Nil entries fall back to the interpreter's own streams.
type Stdio struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Handle is a started stage.
type Handle interface {
	// Name is the program or task name.
	Name() string
	// Pid is the process id, or 0 for an in-process task.
	Pid() int
	// Wait blocks until the stage has finished and returns its exit status.
	// It may be called more than once and always returns the same result.
	Wait() (int, error)
	// Signal delivers sig to the stage.
	Signal(sig os.Signal) error
	// Kill stops the stage immediately.
	Kill() error
}

// files applies redirections in order to base and returns the file table.
func files(base Stdio, redirections []Redirection) ([]*os.File, error) {
	table := []*os.File{
		orDefault(base.Stdin, os.Stdin),
		orDefault(base.Stdout, os.Stdout),
		orDefault(base.Stderr, os.Stderr),
	}

	for _, r := range redirections {
		if r.Stream < 0 || r.Stream >= numStreams {
			return nil, ErrInvalidStream
		}

		if r.File != nil {
			table[r.Stream] = r.File
		}
	}

	return table, nil
}

func orDefault(f, def *os.File) *os.File {
	if f == nil {
		return def
	}

	return f
}

// closeOwned closes every distinct file in redirections.
func closeOwned(redirections []Redirection) error {
	seen := make(map[*os.File]struct{}, len(redirections))

	var errs []error

	for _, r := range redirections {
		if r.File == nil {
			continue
		}

		if _, ok := seen[r.File]; ok {
			continue
		}

		seen[r.File] = struct{}{}

		if err := r.File.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
