// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ErrDuplicateBuiltin is returned when a name is registered twice.
var ErrDuplicateBuiltin = errors.New("builtin already registered")

// Builtin is a command executed in-process.
type Builtin interface {
	// Name is the command name the builtin answers to.
	Name() string
	// Description is a one line summary.
	Description() string
	// Run executes the builtin. argv includes the command name. The return
	// value is the exit status.
	Run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int
}

// Registry maps command names to builtins.
type Registry map[string]Builtin

// Default returns a registry holding every builtin of this package.
func Default() Registry {
	r := make(Registry)
	_ = r.Register(Uniq{})

	return r
}

// Register adds b to the registry.
func (r Registry) Register(b Builtin) error {
	if _, ok := r[b.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBuiltin, b.Name())
	}

	r[b.Name()] = b

	return nil
}

// Lookup returns the builtin registered under name.
func (r Registry) Lookup(name string) (Builtin, bool) {
	b, ok := r[name]
	return b, ok
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}
