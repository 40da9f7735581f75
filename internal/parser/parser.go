// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package parser turns an input line into a command.Chain.
//
// Parsing is total: every line yields a chain with at least one stage, and
// malformed input is resolved silently. There are no escapes, no nesting and
// no expansion of any kind. A redirection given more than once keeps the last
// value.
package parser

import (
	"strings"

	"github.com/matt-FFFFFF/shellax/internal/command"
)

const (
	splitters = " \t"

	pipeToken       = "|"
	backgroundToken = "&"

	backgroundMarker   = '&'
	autoCompleteMarker = '?'
)

// Parse parses line into a chain of one or more stages.
func Parse(line string) command.Chain {
	line = strings.Trim(line, splitters)

	var background, autoComplete bool

	if n := len(line); n > 0 {
		switch line[n-1] {
		case autoCompleteMarker:
			autoComplete = true
			line = strings.TrimRight(line[:n-1], splitters)
		case backgroundMarker:
			background = true
			line = strings.TrimRight(line[:n-1], splitters)
		}
	}

	tokens := Tokenize(line)

	newStage := func() *command.Command {
		return &command.Command{Background: background, AutoComplete: autoComplete}
	}

	cur := newStage()
	chain := command.Chain{cur}
	wantName := true

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if tok == pipeToken {
			cur = newStage()
			chain = append(chain, cur)
			wantName = true

			continue
		}

		if wantName {
			cur.Name = tok
			wantName = false

			continue
		}

		if tok == backgroundToken {
			continue
		}

		if slot, path, ok := redirection(tok); ok {
			if path == "" && i+1 < len(tokens) && tokens[i+1] != pipeToken {
				i++
				path = unquote(tokens[i])
			}

			if path != "" {
				cur.Redirects.Set(slot, path)
			}

			continue
		}

		cur.Args = append(cur.Args, unquote(tok))
	}

	return chain
}

// Tokenize splits line on runs of spaces and tabs. A token that starts with a
// quote runs to the first matching quote followed by whitespace or the end of
// the line, so quoted arguments may contain whitespace. A quote that is never
// closed this way is an ordinary character.
func Tokenize(line string) []string {
	var tokens []string

	i := 0
	for i < len(line) {
		if isSplitter(line[i]) {
			i++
			continue
		}

		start := i
		end := -1

		if q := line[i]; q == '"' || q == '\'' {
			for j := i + 1; j < len(line); j++ {
				if line[j] == q && (j+1 == len(line) || isSplitter(line[j+1])) {
					end = j + 1
					break
				}
			}
		}

		if end < 0 {
			end = start
			for end < len(line) && !isSplitter(line[end]) {
				end++
			}
		}

		tokens = append(tokens, line[start:end])
		i = end
	}

	return tokens
}

func isSplitter(b byte) bool {
	return b == ' ' || b == '\t'
}

// redirection reports whether tok is a redirection operator and returns its
// slot and the attached path, which may be empty.
func redirection(tok string) (command.Slot, string, bool) {
	switch {
	case strings.HasPrefix(tok, "<"):
		return command.SlotIn, unquote(tok[1:]), true
	case strings.HasPrefix(tok, ">>"):
		return command.SlotAppend, unquote(tok[2:]), true
	case strings.HasPrefix(tok, ">"):
		return command.SlotOut, unquote(tok[1:]), true
	default:
		return 0, "", false
	}
}

// unquote strips one matching pair of quotes from s when s is longer than the
// pair itself.
func unquote(s string) string {
	if len(s) > 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}

	return s
}
