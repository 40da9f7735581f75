// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker subscribes to the OS signals that should reach the
// processes of a running pipeline instead of terminating the interpreter.
// By default it listens for SIGINT, SIGTERM and SIGQUIT.
//
// It also contains a watchdog that cancels a context when the same signal
// arrives twice, used when the interpreter runs a single line non-interactively.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// New returns a channel notified of sigs, or of the terminating signals when
// sigs is empty. Call Stop when the channel is no longer read.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "subscribing", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes ch. Signals already buffered in ch are left there.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
