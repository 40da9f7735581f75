// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniq(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		want  string
		code  int
	}{
		{
			name:  "distinct lines in first appearance order",
			args:  []string{"uniq"},
			input: "x\ny\nx\nz\n",
			want:  "x\ny\nz\n",
		},
		{
			name:  "count short flag",
			args:  []string{"uniq", "-c"},
			input: "x\ny\nx\nz\n",
			want:  "      2 x\n      1 y\n      1 z\n",
		},
		{
			name:  "count long flag",
			args:  []string{"uniq", "--count"},
			input: "a\na\na\n",
			want:  "      3 a\n",
		},
		{
			name:  "missing trailing newline",
			args:  []string{"uniq"},
			input: "b\na\nb",
			want:  "b\na\n",
		},
		{
			name:  "empty lines between content are lines",
			args:  []string{"uniq", "-c"},
			input: "a\n\nb\n\n",
			want:  "      1 a\n      2 \n      1 b\n",
		},
		{
			name:  "empty input",
			args:  []string{"uniq"},
			input: "",
			want:  "",
		},
		{
			name:  "nil argv behaves like no options",
			input: "q\nq\n",
			want:  "q\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := Uniq{}.Run(context.Background(), tc.args, strings.NewReader(tc.input), &stdout, &stderr)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.want, stdout.String())
			assert.Empty(t, stderr.String())
		})
	}
}

func TestUniq_UnknownOption(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := Uniq{}.Run(context.Background(), []string{"uniq", "-z"}, strings.NewReader("a\n"), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "usage: uniq")
	assert.Contains(t, stderr.String(), "--count")
}

func TestUniq_LargeInput(t *testing.T) {
	var in strings.Builder
	for range 100000 {
		in.WriteString("same line\n")
	}

	var stdout, stderr bytes.Buffer

	code := Uniq{}.Run(context.Background(), []string{"uniq", "-c"}, strings.NewReader(in.String()), &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, " 100000 same line\n", stdout.String())
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestUniq_Interrupted(t *testing.T) {
	var stdout, stderr bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := Uniq{}.Run(ctx, []string{"uniq"}, errReader{err: os.ErrDeadlineExceeded}, &stdout, &stderr)
	assert.Equal(t, exitInterrupted, code)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}
