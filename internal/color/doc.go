// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color colours strings with ANSI escape codes for the prompt and the
// log handler.
//
// Colour is off when NO_COLOR is set, on when FORCE_COLOR is set, and
// otherwise depends on whether the destination file is a terminal, as
// reported by golang.org/x/term.
package color
