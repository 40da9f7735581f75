// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repl is the interactive loop around the pipeline: it prompts for a
// line, runs it and reports finished background jobs before the next prompt.
package repl
