// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package parse

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/matt-FFFFFF/shellax/internal/parser"
)

func TestWrite_TextGolden(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	tests := map[string]string{
		"empty":        "",
		"simple":       "ls -l /tmp",
		"quoted":       `grep "hello world" notes.txt`,
		"redirects":    "sort <in.txt >out.txt >>log.txt",
		"pipeline":     `printf 'x\ny\nx\n' | uniq -c > counts.txt &`,
		"autocomplete": "gre?",
	}

	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, parser.Parse(line), formatText))
			g.Assert(t, name, buf.Bytes())
		})
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, parser.Parse("cat <in | sort -r >>out &"), formatYAML))

	var got []Stage
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	want := []Stage{
		{Name: "cat", Stdin: "in", Background: true},
		{Name: "sort", Args: []string{"-r"}, Append: "out", Background: true},
	}
	assert.Equal(t, want, got)
	assert.NotContains(t, buf.String(), "stdout:", "empty slots are omitted")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, parser.Parse("ls"), "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseCmd(t *testing.T) {
	var buf bytes.Buffer

	root := &cli.Command{
		Name:     "shellax",
		Writer:   &buf,
		Commands: []*cli.Command{ParseCmd},
	}

	require.NoError(t, root.Run(context.Background(), []string{"shellax", "parse", "--format", "yaml", "echo", "hi", "|", "uniq"}))
	assert.Contains(t, buf.String(), "name: echo")
	assert.Contains(t, buf.String(), "name: uniq")
}
