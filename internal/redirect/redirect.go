// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package redirect opens the files named by a command's redirection slots.
//
// Paths are relative to the working directory of the interpreter. APPEND
// takes priority over OUT when both are present. On failure every file that
// was already opened is closed again and the stage must not run.
package redirect

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/matt-FFFFFF/shellax/internal/command"
)

const outputPerm = 0o644

var (
	// ErrReadInput is returned when the IN file cannot be opened.
	ErrReadInput = errors.New("file could not be read")
	// ErrCreateOutput is returned when the OUT file cannot be created or truncated.
	ErrCreateOutput = errors.New("file could not be created or truncated")
	// ErrAppendOutput is returned when the APPEND file does not exist or cannot be opened.
	ErrAppendOutput = errors.New("file could not be found")
	// ErrNotOSFile is returned when a stream is not backed by an operating system file.
	ErrNotOSFile = errors.New("stream is not an operating system file")
)

// Error describes a redirection that could not be opened.
type Error struct {
	Slot  command.Slot
	Path  string
	Err   error // One of the sentinel errors of this package.
	Cause error // The error returned by the filesystem.
}

// Error renders the failure as "<reason>: <path>".
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Path)
}

// Unwrap exposes both the sentinel and the filesystem error.
func (e *Error) Unwrap() []error {
	return []error{e.Err, e.Cause}
}

// Streams are the files opened for a stage. A nil field means the stream is
// inherited.
type Streams struct {
	Stdin      afero.File
	Stdout     afero.File
	StdoutSlot command.Slot // SlotOut or SlotAppend, meaningful when Stdout is set.
}

// Close closes every opened file.
func (s *Streams) Close() error {
	if s == nil {
		return nil
	}

	var errs []error

	for _, f := range []afero.File{s.Stdin, s.Stdout} {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}

	return errors.Join(errs...)
}

// OSFiles returns the streams as operating system files so that they can be
// handed to a child process. Unset streams are returned as nil.
func (s *Streams) OSFiles() (stdin, stdout *os.File, err error) {
	if s == nil {
		return nil, nil, nil
	}

	if stdin, err = asOSFile(s.Stdin); err != nil {
		return nil, nil, err
	}

	if stdout, err = asOSFile(s.Stdout); err != nil {
		return nil, nil, err
	}

	return stdin, stdout, nil
}

func asOSFile(f afero.File) (*os.File, error) {
	if f == nil {
		return nil, nil
	}

	osf, ok := f.(*os.File)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOSFile, f.Name())
	}

	return osf, nil
}

// Resolver opens redirection targets on a filesystem.
type Resolver struct {
	fs afero.Fs
}

// NewResolver returns a resolver over the filesystem given by FsFactory.
func NewResolver() *Resolver {
	return &Resolver{fs: FsFactory()}
}

// Resolve opens the files named in r. The caller owns the returned streams.
func (rs *Resolver) Resolve(r command.Redirects) (*Streams, error) {
	s := &Streams{}

	if p := r.Input(); p != "" {
		f, err := rs.fs.OpenFile(p, os.O_RDONLY, 0)
		if err != nil {
			return nil, &Error{Slot: command.SlotIn, Path: p, Err: ErrReadInput, Cause: err}
		}

		s.Stdin = f
	}

	slot, p, ok := r.Output()
	if !ok {
		return s, nil
	}

	var (
		f   afero.File
		err error
	)

	switch slot {
	case command.SlotAppend:
		f, err = rs.fs.OpenFile(p, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			err = &Error{Slot: slot, Path: p, Err: ErrAppendOutput, Cause: err}
		}
	default:
		f, err = rs.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, outputPerm)
		if err != nil {
			err = &Error{Slot: slot, Path: p, Err: ErrCreateOutput, Cause: err}
		}
	}

	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Stdout = f
	s.StdoutSlot = slot

	return s, nil
}
