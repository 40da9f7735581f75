// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package parse implements the parse subcommand, which prints how a line is
// split into pipeline stages without running it.
package parse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/urfave/cli/v3"

	"github.com/matt-FFFFFF/shellax/internal/command"
	"github.com/matt-FFFFFF/shellax/internal/parser"
)

const (
	formatFlag = "format"
	formatText = "text"
	formatYAML = "yaml"
)

var (
	// ErrUnknownFormat is returned when the output format is not supported.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrWriteOutput is returned when the parsed line cannot be written.
	ErrWriteOutput = errors.New("failed to write output")
)

// ParseCmd is the command that prints the parsed form of a line.
var ParseCmd = &cli.Command{
	Name:        "parse",
	Usage:       "shellax parse [--format text|yaml] LINE",
	Description: "Print the pipeline stages a line parses to, without running it.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    formatFlag,
			Aliases: []string{"f"},
			Usage:   "Output format, one of: text, yaml",
			Value:   formatText,
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		line := strings.Join(cmd.Args().Slice(), " ")
		if err := Write(cmd.Root().Writer, parser.Parse(line), cmd.String(formatFlag)); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		return nil
	},
}

// Stage is the serialised form of a command.
type Stage struct {
	Name         string   `yaml:"name"`
	Args         []string `yaml:"args,omitempty"`
	Stdin        string   `yaml:"stdin,omitempty"`
	Stdout       string   `yaml:"stdout,omitempty"`
	Append       string   `yaml:"append,omitempty"`
	Background   bool     `yaml:"background,omitempty"`
	AutoComplete bool     `yaml:"autocomplete,omitempty"`
}

// Stages converts a chain to its serialised form.
func Stages(chain command.Chain) []Stage {
	out := make([]Stage, len(chain))
	for i, c := range chain {
		out[i] = Stage{
			Name:         c.Name,
			Args:         c.Args,
			Stdin:        c.Redirects.Get(command.SlotIn),
			Stdout:       c.Redirects.Get(command.SlotOut),
			Append:       c.Redirects.Get(command.SlotAppend),
			Background:   c.Background,
			AutoComplete: c.AutoComplete,
		}
	}

	return out
}

// Write prints chain to w in the given format.
func Write(w io.Writer, chain command.Chain, format string) error {
	switch format {
	case formatText, "":
		if err := chain.Describe(w); err != nil {
			return errors.Join(ErrWriteOutput, err)
		}
	case formatYAML:
		b, err := yaml.Marshal(Stages(chain))
		if err != nil {
			return errors.Join(ErrWriteOutput, err)
		}

		if _, err := w.Write(b); err != nil {
			return errors.Join(ErrWriteOutput, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return nil
}
