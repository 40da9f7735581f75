// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run subcommand, which executes the lines of a
// file one after the other.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/urfave/cli/v3"

	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
	"github.com/matt-FFFFFF/shellax/internal/pipeline"
	"github.com/matt-FFFFFF/shellax/internal/repl"
)

const (
	fileArg   = "file"
	traceFlag = "trace"

	scriptFile = "script"
	sourceDir  = "src"
)

// ErrGetScript is returned when the script cannot be fetched.
var ErrGetScript = errors.New("failed to get script")

// RunCmd is the command that runs every line of a file.
var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "shellax run FILE|URL",
	Description: `Run each line of a file as if it had been typed at the prompt.
Blank lines and lines starting with '#' are skipped, and an exit line stops the run.

The file may be given as a go-getter URL, which allows fetching it from various sources.
See https://github.com/hashicorp/go-getter.`,
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      fileArg,
			UsageText: "FILE|URL",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:        traceFlag,
			Usage:       "Print each parsed line to stderr before running it",
			DefaultText: "false",
			Value:       false,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg(fileArg)
	if url == "" {
		return cli.Exit("Please provide a file to run", 1)
	}

	script, err := fetchScript(ctx, url)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to get %s: %s", url, err.Error()), 1)
	}

	root := cmd.Root()
	orch := pipeline.New(pipeline.WithStdio(repl.StdioFor(root.Writer, root.ErrWriter)))
	sh := repl.NewShell(orch,
		repl.WithOutput(root.Writer, root.ErrWriter),
		repl.WithTrace(cmd.Bool(traceFlag)),
	)

	ctxlog.Debug(ctx, "running script", "url", url, "bytes", len(script))

	if err := sh.RunScript(ctx, bytes.NewReader(script)); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return nil
}

// fetchScript returns the content of the script at src. Local paths are read
// in place. Anything else is fetched with go-getter into a temporary
// directory: a source of the form repo//path/to/script fetches repo and reads
// the script from it, any other source is fetched as a single file.
func fetchScript(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, ErrGetScript
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetScript, err)
	}

	isLocal, err := local(src, wd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGetScript, src, err)
	}

	if isLocal {
		return readScript(src)
	}

	tmpDir, err := os.MkdirTemp("", "shellax-script-*")
	if err != nil {
		return nil, errors.Join(ErrGetScript, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, scriptFile),
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}
	script := req.Dst

	if repo, sub := getter.SourceDirSubdir(src); sub != "" {
		req.Src = repo
		req.Dst = filepath.Join(tmpDir, sourceDir)
		req.GetMode = getter.ModeDir
		script = filepath.Join(req.Dst, filepath.FromSlash(sub))
	}

	ctxlog.Debug(ctx, "fetching script", "src", req.Src, "mode", req.GetMode)

	client := getter.Client{
		DisableSymlinks: true,
	}

	if _, err := client.Get(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGetScript, src, err)
	}

	return readScript(script)
}

// local reports whether src names a file on this machine. Sources with a URL
// scheme or a forced getter are remote.
func local(src, wd string) (bool, error) {
	if strings.Contains(src, "::") || strings.Contains(src, "://") {
		return false, nil
	}

	return getter.Detect(&getter.Request{Src: src, Pwd: wd}, &getter.FileGetter{})
}

func readScript(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrGetScript, err)
	}

	return b, nil
}
