// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/bender/bender"
	"github.com/stacklok/bender/document"
)

type bendFlags struct {
	context     map[string]string
	contextFile string
	output      string
	indent      bool
}

func newBendCmd(root *rootOptions) *cobra.Command {
	flags := &bendFlags{}

	cmd := &cobra.Command{
		Use:   "bend MAPPING [INPUT]",
		Short: "Bend input data through a mapping document",
		Long: `Bend reads the mapping document MAPPING and applies it to INPUT, a YAML or JSON
file. Without INPUT, or with "-", the input is read from stdin.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docOpts, err := root.documentOptions(cmd)
			if err != nil {
				return err
			}
			return runBend(cmd, args, flags, docOpts)
		},
	}

	cmd.Flags().StringToStringVarP(&flags.context, "context", "c", nil, "Context entries as key=value, merged over --context-file")
	cmd.Flags().StringVar(&flags.contextFile, "context-file", "", "YAML or JSON file holding the bend context")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "json", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&flags.indent, "indent", false, "Indent JSON output")
	return cmd
}

func runBend(cmd *cobra.Command, args []string, flags *bendFlags, docOpts []document.Option) error {
	doc, err := document.LoadFile(args[0], docOpts...)
	if err != nil {
		return err
	}

	inputPath := "-"
	if len(args) > 1 {
		inputPath = args[1]
	}
	source, err := readValue(cmd.InOrStdin(), inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var opts []bender.Option
	ctx, err := bendContext(flags, doc.Context)
	if err != nil {
		return err
	}
	if ctx != nil {
		opts = append(opts, bender.WithContext(ctx))
	}

	out, err := doc.Bend(source, opts...)
	if err != nil {
		return err
	}
	return writeValue(cmd.OutOrStdout(), out, flags)
}

// bendContext layers --context over --context-file over the document context.
// It returns nil when neither flag is set.
func bendContext(flags *bendFlags, base map[string]any) (map[string]any, error) {
	if flags.contextFile == "" && len(flags.context) == 0 {
		return nil, nil
	}
	ctx := make(map[string]any, len(base))
	for k, v := range base {
		ctx[k] = v
	}
	if flags.contextFile != "" {
		v, err := readValue(nil, flags.contextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		fileCtx, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("context file %s must hold a mapping, got %T", flags.contextFile, v)
		}
		for k, val := range fileCtx {
			ctx[k] = val
		}
	}
	for k, v := range flags.context {
		ctx[k] = v
	}
	return ctx, nil
}

func readValue(stdin io.Reader, path string) (any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //#nosec G304 -- path is given on the command line
	}
	if err != nil {
		return nil, err
	}
	return document.Unmarshal(data)
}

func writeValue(w io.Writer, v any, flags *bendFlags) error {
	switch flags.output {
	case "json":
		enc := json.NewEncoder(w)
		if flags.indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", flags.output)
}
