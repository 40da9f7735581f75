// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		setupContext  func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			setupContext: func() context.Context {
				return New(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			},
		},
		{
			name:          "context without logger",
			setupContext:  context.Background,
			expectDefault: true,
		},
		{
			name: "context with nil logger",
			setupContext: func() context.Context {
				return New(context.Background(), nil)
			},
			expectDefault: true,
		},
		{
			name: "context with wrong type value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, "not a logger")
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.setupContext())
			if tt.expectDefault {
				assert.Same(t, DefaultLogger, logger)
				return
			}

			assert.NotSame(t, DefaultLogger, logger)
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	ctx := New(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	tests := []struct {
		name     string
		logFunc  func(context.Context, string, ...any)
		expected string
	}{
		{name: "info", logFunc: Info, expected: "level=INFO"},
		{name: "debug", logFunc: Debug, expected: "level=DEBUG"},
		{name: "warn", logFunc: Warn, expected: "level=WARN"},
		{name: "error", logFunc: Error, expected: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, "stage started", "stage", 1)

			assert.Contains(t, buf.String(), tt.expected)
			assert.Contains(t, buf.String(), "stage started")
			assert.Contains(t, buf.String(), "stage=1")
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer

	ctx := New(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	ctx = With(ctx, "line", "ls | wc")

	Info(ctx, "executing")
	assert.Contains(t, buf.String(), `line="ls | wc"`)
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{value: "DEBUG", want: slog.LevelDebug},
		{value: "debug", want: slog.LevelDebug},
		{value: "INFO", want: slog.LevelInfo},
		{value: "WARN", want: slog.LevelWarn},
		{value: "ERROR", want: slog.LevelError},
		{value: "bogus", want: slog.LevelWarn},
		{value: "", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(LogLevelEnvVar, tt.value)
			assert.Equal(t, tt.want, logLevelFromEnv())
		})
	}
}
