// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package spawn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
)

var _ Handle = (*task)(nil)

// ErrTaskPanic is returned by Wait when a task panicked. It is constructed
// with the value that caused the panic.
type ErrTaskPanic struct {
	v any
}

// Error implements the error interface for ErrTaskPanic.
func (e *ErrTaskPanic) Error() string {
	prefix := "task panic:"

	switch x := e.v.(type) {
	case string:
		return fmt.Sprintf("%s %s", prefix, x)
	case error:
		return fmt.Sprintf("%s %s", prefix, x.Error())
	default:
		return fmt.Sprintf("%s %v", prefix, x)
	}
}

// KillGrace is how long Wait waits for a signalled or killed task to return
// before giving up on it.
var KillGrace = 200 * time.Millisecond

// TaskFunc is the body of an in-process stage. The context is cancelled when
// the task is signalled or killed, and pending reads and writes on pollable
// files such as pipes fail with os.ErrDeadlineExceeded. The return value is
// the exit status.
type TaskFunc func(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int

type task struct {
	name     string
	cancel   context.CancelFunc
	done     chan struct{}
	killed   chan struct{}
	killOnce sync.Once

	mu       sync.Mutex
	finished bool
	code     int
	err      error
}

// Go runs fn in a new goroutine over the file table built from stdio and
// redirections. The files in redirections are closed when fn returns.
func Go(ctx context.Context, name string, fn TaskFunc, stdio Stdio, redirections []Redirection) (Handle, error) {
	table, err := files(stdio, redirections)
	if err != nil {
		_ = closeOwned(redirections)
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &task{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
		killed: make(chan struct{}),
	}

	logger := ctxlog.Logger(ctx).With("task", name)
	logger.Debug("starting task")

	go func() {
		defer close(t.done)
		defer cancel()

		defer func() {
			if cerr := closeOwned(redirections); cerr != nil {
				logger.Debug("closing task files", "error", cerr)
			}
		}()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("task panicked", "panic", r)
				t.finish(-1, &ErrTaskPanic{v: r})
			}
		}()

		returned := make(chan struct{})
		interrupted := interruptOnDone(ctx, table, returned)

		defer func() {
			close(returned)

			if <-interrupted {
				setDeadlines(table, time.Time{})
			}
		}()

		code := fn(ctx, table[Stdin], table[Stdout], table[Stderr])
		logger.Debug("task finished", "exitCode", code)
		t.finish(code, nil)
	}()

	return t, nil
}

// interruptOnDone expires the deadlines of table once ctx is done, unless
// returned is closed first. The result channel reports whether deadlines were
// set, after which they must be cleared again.
func interruptOnDone(ctx context.Context, table []*os.File, returned <-chan struct{}) <-chan bool {
	interrupted := make(chan bool, 1)

	go func() {
		select {
		case <-ctx.Done():
			setDeadlines(table, time.Now())
			interrupted <- true
		case <-returned:
			interrupted <- false
		}
	}()

	return interrupted
}

// setDeadlines sets the read deadline of stdin and the write deadlines of
// stdout and stderr. Files that cannot be polled are left alone.
func setDeadlines(table []*os.File, t time.Time) {
	_ = table[Stdin].SetReadDeadline(t)
	_ = table[Stdout].SetWriteDeadline(t)
	_ = table[Stderr].SetWriteDeadline(t)
}

func (t *task) finish(code int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return
	}

	t.finished = true
	t.code, t.err = code, err
}

func (t *task) Name() string { return t.name }

func (t *task) Pid() int { return 0 }

// Wait returns once the task has returned. After a signal or kill it gives
// the task KillGrace to return and otherwise reports it as killed, with exit
// status -1, leaving the goroutine blocked on a file that cannot be polled.
func (t *task) Wait() (int, error) {
	select {
	case <-t.done:
	case <-t.killed:
		select {
		case <-t.done:
		case <-time.After(KillGrace):
			t.finish(-1, nil)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.code, t.err
}

func (t *task) Signal(os.Signal) error {
	t.stop()
	return nil
}

func (t *task) Kill() error {
	t.stop()
	return nil
}

func (t *task) stop() {
	t.killOnce.Do(func() { close(t.killed) })
	t.cancel()
}

// IsPanic reports whether err was caused by a panicking task.
func IsPanic(err error) bool {
	var p *ErrTaskPanic
	return errors.As(err, &p)
}
