// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// Loggers write to standard error so that diagnostics never mix with the
// output of a pipeline. The level is read from SHELLAX_LOG_LEVEL
// (DEBUG, INFO, WARN or ERROR; anything else means WARN).
package ctxlog
