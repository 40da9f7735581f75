// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package repl

import (
	"github.com/peterh/liner"
)

// LineReader reads one edited line at a time.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

var _ LineReader = (*liner.State)(nil)

// NewLinerReader returns a terminal line editor with in-memory history.
// complete, if not nil, is called on tab.
func NewLinerReader(complete func(line string) []string) LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)

	if complete != nil {
		line.SetCompleter(complete)
	}

	return line
}
