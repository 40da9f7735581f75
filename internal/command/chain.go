// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"fmt"
	"io"
	"strings"
)

// Chain is an ordered pipeline of commands. Stage i writes to stage i+1.
type Chain []*Command

// Front returns the first stage, or nil for an empty chain.
func (ch Chain) Front() *Command {
	if len(ch) == 0 {
		return nil
	}

	return ch[0]
}

// Background reports whether the chain runs detached. Only the frontmost
// stage is consulted.
func (ch Chain) Background() bool {
	f := ch.Front()

	return f != nil && f.Background
}

// Empty reports whether running the chain does nothing at all.
func (ch Chain) Empty() bool {
	return len(ch) == 0 || (len(ch) == 1 && ch[0].Name == "")
}

// Names returns the name of every stage.
func (ch Chain) Names() []string {
	names := make([]string, len(ch))
	for i, c := range ch {
		names[i] = c.Name
	}

	return names
}

// String renders the chain back to a line.
func (ch Chain) String() string {
	parts := make([]string, len(ch))
	for i, c := range ch {
		parts[i] = c.String()
	}

	s := strings.Join(parts, " | ")

	switch {
	case len(ch) == 0:
	case ch[0].AutoComplete:
		s += " ?"
	case ch[0].Background:
		s += " &"
	}

	return s
}

// Describe writes a human-readable dump of every stage to w.
func (ch Chain) Describe(w io.Writer) error {
	for i, c := range ch {
		if _, err := fmt.Fprintf(w, "stage %d\n", i); err != nil {
			return err
		}

		lines := []string{
			fmt.Sprintf("  name: %q", c.Name),
			fmt.Sprintf("  argc: %d", len(c.Args)),
		}

		for j, a := range c.Args {
			lines = append(lines, fmt.Sprintf("  arg[%d]: %q", j, a))
		}

		for _, s := range Slots() {
			if p := c.Redirects.Get(s); p != "" {
				lines = append(lines, fmt.Sprintf("  %-3s %q", s.String(), p))
			}
		}

		lines = append(lines,
			fmt.Sprintf("  background: %t", c.Background),
			fmt.Sprintf("  autocomplete: %t", c.AutoComplete),
		)

		for _, l := range lines {
			if _, err := fmt.Fprintln(w, l); err != nil {
				return err
			}
		}
	}

	return nil
}
