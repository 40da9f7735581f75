// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
)

// Watch reads sigCh until it is closed or ctx is done. The first signal of a
// kind is left to the running pipeline; the second one of the same kind
// cancels the context.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog", "detail", "second signal of type, cancelling", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Info(ctx, "watchdog", "detail", "first signal of type, forwarded to pipeline", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
