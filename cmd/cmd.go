// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/matt-FFFFFF/shellax/cmd/parse"
	"github.com/matt-FFFFFF/shellax/cmd/run"
	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
	"github.com/matt-FFFFFF/shellax/internal/pipeline"
	"github.com/matt-FFFFFF/shellax/internal/repl"
	"github.com/matt-FFFFFF/shellax/internal/signalbroker"
)

const (
	commandFlag   = "command"
	traceFlag     = "trace"
	logFormatFlag = "log-format"

	logFormatPretty = "pretty"
	logFormatJSON   = "json"

	exitCodeNotFound = 127
)

// NewRootCmd returns the root command for the CLI.
func NewRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			parse.ParseCmd,
			run.RunCmd,
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "shellax",
		Description: `shellax is a small line-oriented command interpreter. It runs pipelines of
external programs and builtins, with input, output and append redirection
and background jobs.`,
		Usage:     "shellax [-c LINE]",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    commandFlag,
				Aliases: []string{"c"},
				Usage:   "Run a single line and exit",
			},
			&cli.BoolFlag{
				Name:        traceFlag,
				Usage:       "Print each parsed line to stderr before running it",
				DefaultText: "false",
				Value:       false,
			},
			&cli.StringFlag{
				Name:  logFormatFlag,
				Usage: "Log format, one of: pretty, json",
				Value: logFormatPretty,
				Validator: func(s string) error {
					if s != logFormatPretty && s != logFormatJSON {
						return fmt.Errorf("invalid log format %q", s)
					}

					return nil
				},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.String(logFormatFlag) == logFormatJSON {
				return ctxlog.New(ctx, ctxlog.JSONLogger), nil
			}

			return ctx, nil
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	orch := pipeline.New(pipeline.WithStdio(repl.StdioFor(cmd.Writer, cmd.ErrWriter)))

	opts := []repl.Option{
		repl.WithTrace(cmd.Bool(traceFlag)),
		repl.WithOutput(cmd.Writer, cmd.ErrWriter),
	}

	if cmd.IsSet(commandFlag) {
		return runOnce(ctx, repl.NewShell(orch, opts...), cmd.String(commandFlag))
	}

	ctxlog.Debug(ctx, "starting interactive session")

	return repl.NewShell(orch, opts...).Run(ctx)
}

// runOnce runs line and turns a missing command into exit status 127.
// A second identical signal cancels the line.
func runOnce(ctx context.Context, sh *repl.Shell, line string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	sh.RunLine(ctx, line)

	if sh.LastResult().NotFound() {
		return cli.Exit("", exitCodeNotFound)
	}

	return nil
}
