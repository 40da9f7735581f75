// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package builtins provides the commands that run inside the interpreter
// instead of being looked up on disk, and the registry the pipeline consults
// before searching for an executable.
package builtins
