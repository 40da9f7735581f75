// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline runs a parsed command.Chain.
//
// Every stage is connected to its successor with an operating system pipe.
// Redirections are applied before the pipe ends, so a pipe always overrides
// a redirection of the same stream. External programs are searched for in a
// fixed list of directories; builtins and empty stages run in-process.
//
// A foreground chain is waited for in reverse start order. A background chain
// is handed to a Reaper and Execute returns at once.
package pipeline
