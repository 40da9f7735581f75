// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package spawn starts the units of work that make up a pipeline stage.
//
// Start runs an operating system process, Go runs a function in-process.
// Both take an ordered list of redirections that is applied on top of the
// standard streams: a later entry for the same stream replaces an earlier
// one. Both take ownership of every file in that list. Start closes them in
// the parent once the child holds its own copies, Go closes them when the
// function returns. Readers on the other end of a pipe therefore see EOF as
// soon as the writer is finished.
package spawn
