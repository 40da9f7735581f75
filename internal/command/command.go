// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"slices"
	"strings"
)

// Slot identifies one of the redirection slots of a command.
type Slot int

const (
	SlotIn     Slot = iota // SlotIn is `<path`.
	SlotOut                // SlotOut is `>path`.
	SlotAppend             // SlotAppend is `>>path`.

	numSlots
)

// String returns the operator that fills the slot.
func (s Slot) String() string {
	switch s {
	case SlotIn:
		return "<"
	case SlotOut:
		return ">"
	case SlotAppend:
		return ">>"
	default:
		return "?"
	}
}

// Slots lists every slot in display order.
func Slots() []Slot {
	return []Slot{SlotIn, SlotOut, SlotAppend}
}

// Redirects holds a path per slot. An empty string means the slot is unused.
type Redirects [numSlots]string

// Set stores path in slot s, replacing any earlier value.
func (r *Redirects) Set(s Slot, path string) {
	if s < 0 || s >= numSlots {
		return
	}

	r[s] = path
}

// Get returns the path in slot s.
func (r Redirects) Get(s Slot) string {
	if s < 0 || s >= numSlots {
		return ""
	}

	return r[s]
}

// Input returns the input path, if any.
func (r Redirects) Input() string {
	return r[SlotIn]
}

// Output returns the slot and path that decide where stdout goes.
// APPEND takes priority over OUT. ok is false when neither is set.
func (r Redirects) Output() (slot Slot, path string, ok bool) {
	if r[SlotAppend] != "" {
		return SlotAppend, r[SlotAppend], true
	}

	if r[SlotOut] != "" {
		return SlotOut, r[SlotOut], true
	}

	return SlotOut, "", false
}

// Empty reports whether no slot is set.
func (r Redirects) Empty() bool {
	return r == Redirects{}
}

// Command is one stage of a pipeline.
type Command struct {
	Name         string    // Program or builtin name. Empty means no-op.
	Args         []string  // Arguments, not including the name.
	Background   bool      // Trailing `&` on the line.
	AutoComplete bool      // Trailing `?` on the line.
	Redirects    Redirects // Redirection slots.
}

// Argv returns the argument vector handed to a program: the name followed by
// the arguments.
func (c *Command) Argv() []string {
	return slices.Concat([]string{c.Name}, c.Args)
}

// String renders the command back to a line fragment.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+4)
	if c.Name != "" {
		parts = append(parts, c.Name)
	}

	for _, a := range c.Args {
		if strings.ContainsAny(a, " \t") {
			a = "'" + a + "'"
		}

		parts = append(parts, a)
	}

	for _, s := range Slots() {
		if p := c.Redirects.Get(s); p != "" {
			parts = append(parts, s.String()+p)
		}
	}

	return strings.Join(parts, " ")
}
