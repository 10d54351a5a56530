// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/stacklok/bender/cel"
	"github.com/stacklok/bender/document"
	"github.com/stacklok/bender/env"
	"github.com/stacklok/bender/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	logLevel       string
	celCostLimit   uint64
	celMaxExprSize int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "bender",
		Short: "Reshape structured data with declarative mapping documents",
		Long: `bender compiles YAML or JSON mapping documents and bends input data through them.

Logging is configured with BENDER_LOG_LEVEL and BENDER_LOG_FORMAT, or --log-level.`,
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides BENDER_LOG_LEVEL")
	flags.Uint64Var(&opts.celCostLimit, "cel-cost-limit", cel.DefaultCostLimit, "Runtime cost limit for each $cel and $where evaluation")
	flags.IntVar(&opts.celMaxExprSize, "cel-max-expression-length", cel.DefaultMaxExpressionLength, "Maximum length of a $cel or $where expression")

	root.AddCommand(
		newBendCmd(opts),
		newValidateCmd(opts),
		newOperatorsCmd(),
	)
	return root
}

// documentOptions builds the logger and CEL engine that loading a mapping
// document uses.
func (o *rootOptions) documentOptions(cmd *cobra.Command) ([]document.Option, error) {
	logOpts := logging.FromEnv(&env.OSReader{})
	if o.logLevel != "" {
		lvl, err := logging.ParseLevel(o.logLevel)
		if err != nil {
			return nil, err
		}
		logOpts = append(logOpts, logging.WithLevel(lvl))
	}
	logOpts = append(logOpts, logging.WithOutput(cmd.ErrOrStderr()))

	engine := cel.NewBenderEngine().
		WithCostLimit(o.celCostLimit).
		WithMaxExpressionLength(o.celMaxExprSize)

	return []document.Option{
		document.WithLogger(logging.New(logOpts...)),
		document.WithCELEngine(engine),
	}, nil
}
