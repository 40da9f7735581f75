// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package spawn

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func findExecutable(t *testing.T, name string) string {
	t.Helper()

	for _, dir := range []string{"/usr/bin", "/bin"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Skipf("%s not found", name)

	return ""
}

func TestStart_StdoutToPipe(t *testing.T) {
	echo := findExecutable(t, "echo")

	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer r.Close() //nolint:errcheck

	h, err := Start(context.Background(), Spec{
		Path:         echo,
		Args:         []string{"echo", "hello", "world"},
		Redirections: []Redirection{{Stream: Stdout, File: w}},
	})
	require.NoError(t, err)
	assert.Positive(t, h.Pid())
	assert.Equal(t, "echo", h.Name())

	// The write end was handed over, so EOF arrives once echo exits.
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(out))

	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code2, err2 := h.Wait()
	assert.Equal(t, code, code2, "wait is repeatable")
	assert.Equal(t, err, err2)
}

func TestStart_LaterRedirectionWins(t *testing.T) {
	echo := findExecutable(t, "echo")
	dir := t.TempDir()

	file, err := os.Create(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)

	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer r.Close() //nolint:errcheck

	h, err := Start(context.Background(), Spec{
		Path: echo,
		Args: []string{"echo", "piped"},
		Redirections: []Redirection{
			{Stream: Stdout, File: file},
			{Stream: Stdout, File: w},
		},
	})
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "piped\n", string(out))

	_, err = h.Wait()
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Empty(t, b)

	assert.ErrorIs(t, file.Close(), os.ErrClosed, "start closes every forwarded file")
}

func TestStart_ExitCode(t *testing.T) {
	sh := findExecutable(t, "sh")

	h, err := Start(context.Background(), Spec{Path: sh, Args: []string{"sh", "-c", "exit 3"}})
	require.NoError(t, err)

	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestStart_NotFound(t *testing.T) {
	_, w, err := os.Pipe()
	require.NoError(t, err)

	_, err = Start(context.Background(), Spec{
		Path:         "/definitely/not/here",
		Redirections: []Redirection{{Stream: Stdout, File: w}},
	})
	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	assert.ErrorIs(t, w.Close(), os.ErrClosed, "files are closed on failure too")
}

func TestStart_Fallbacks(t *testing.T) {
	echo := findExecutable(t, "echo")

	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer r.Close() //nolint:errcheck

	h, err := Start(context.Background(), Spec{
		Path:         "/definitely/not/here",
		Fallbacks:    []string{echo},
		Args:         []string{"echo", "second"},
		Redirections: []Redirection{{Stream: Stdout, File: w}},
	})
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(out))

	_, err = h.Wait()
	require.NoError(t, err)
}

func TestStart_InvalidStream(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer r.Close() //nolint:errcheck

	_, err = Start(context.Background(), Spec{
		Path:         "/bin/true",
		Redirections: []Redirection{{Stream: Stream(7), File: w}},
	})
	assert.ErrorIs(t, err, ErrInvalidStream)
}

func TestStart_Signal(t *testing.T) {
	sleep := findExecutable(t, "sleep")

	h, err := Start(context.Background(), Spec{Path: sleep, Args: []string{"sleep", "30"}})
	require.NoError(t, err)
	require.NoError(t, h.Signal(syscall.SIGTERM))

	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, -1, code, "signalled processes have no exit code")

	assert.NoError(t, h.Signal(syscall.SIGTERM), "signalling a finished process is not an error")
	assert.NoError(t, h.Kill())
}

func TestGo_CopiesAndClosesPipe(t *testing.T) {
	inR, inW, err := os.Pipe()
	require.NoError(t, err)

	outR, outW, err := os.Pipe()
	require.NoError(t, err)

	defer outR.Close() //nolint:errcheck

	upper := func(_ context.Context, stdin io.Reader, stdout, _ io.Writer) int {
		b, _ := io.ReadAll(stdin)
		_, _ = io.WriteString(stdout, strings.ToUpper(string(b)))

		return 0
	}

	h, err := Go(context.Background(), "upper", upper, Stdio{}, []Redirection{
		{Stream: Stdin, File: inR},
		{Stream: Stdout, File: outW},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, h.Pid())
	assert.Equal(t, "upper", h.Name())

	_, err = io.WriteString(inW, "abc\n")
	require.NoError(t, err)
	require.NoError(t, inW.Close())

	out, err := io.ReadAll(outR)
	require.NoError(t, err)
	assert.Equal(t, "ABC\n", string(out))

	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestGo_Panic(t *testing.T) {
	h, err := Go(context.Background(), "boom", func(context.Context, io.Reader, io.Writer, io.Writer) int {
		panic("boom")
	}, Stdio{}, nil)
	require.NoError(t, err)

	code, err := h.Wait()
	assert.Equal(t, -1, code)
	require.Error(t, err)
	assert.True(t, IsPanic(err))
	assert.Equal(t, "task panic: boom", err.Error())
}

func TestGo_SignalCancelsContext(t *testing.T) {
	started := make(chan struct{})

	h, err := Go(context.Background(), "wait", func(ctx context.Context, _ io.Reader, _, _ io.Writer) int {
		close(started)
		<-ctx.Done()

		return 130
	}, Stdio{}, nil)
	require.NoError(t, err)

	<-started
	require.NoError(t, h.Signal(os.Interrupt))

	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, 130, code)
}

func TestGo_KillInterruptsPipeRead(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer w.Close() //nolint:errcheck
	defer r.Close() //nolint:errcheck

	started := make(chan struct{})

	h, err := Go(context.Background(), "read", func(ctx context.Context, stdin io.Reader, _, _ io.Writer) int {
		close(started)

		if _, err := io.ReadAll(stdin); errors.Is(err, os.ErrDeadlineExceeded) && ctx.Err() != nil {
			return 130
		}

		return 0
	}, Stdio{Stdin: r}, nil)
	require.NoError(t, err)

	<-started
	require.NoError(t, h.Kill())

	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, 130, code)

	// The deadline is cleared once the task has returned.
	_, err = w.WriteString("ok")
	require.NoError(t, err)

	buf := make([]byte, 2)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(buf))
}

func TestGo_KillGivesUpAfterGrace(t *testing.T) {
	stub := gostub.Stub(&KillGrace, 10*time.Millisecond)
	defer stub.Reset()

	release := make(chan struct{})

	h, err := Go(context.Background(), "stuck", func(context.Context, io.Reader, io.Writer, io.Writer) int {
		<-release
		return 0
	}, Stdio{}, nil)
	require.NoError(t, err)
	require.NoError(t, h.Kill())

	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, -1, code)

	close(release)
	<-h.(*task).done

	code, _ = h.Wait()
	assert.Equal(t, -1, code, "the result does not change once reported")
}

func TestStream_String(t *testing.T) {
	assert.Equal(t, "stdin", Stdin.String())
	assert.Equal(t, "stdout", Stdout.String())
	assert.Equal(t, "stderr", Stderr.String())
	assert.Equal(t, "unknown", Stream(9).String())
}
