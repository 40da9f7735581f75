// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package command holds the data model produced by the parser and consumed by
// the pipeline: a Chain of Command stages, each with its arguments, flags and
// redirection slots.
//
// A Chain is built once per input line and dropped after the pipeline has run.
package command
