// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/bender/cel"
	"github.com/stacklok/bender/document"
)

// validationResult is the JSON report for one mapping document.
type validationResult struct {
	Path    string          `json:"path"`
	Valid   bool            `json:"valid"`
	Error   string          `json:"error,omitempty"`
	Pointer string          `json:"pointer,omitempty"`
	CEL     json.RawMessage `json:"cel,omitempty"`
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate MAPPING...",
		Short: "Check mapping documents without bending anything",
		Long: `Validate parses and compiles every MAPPING, reporting schema violations and
operator errors with the location of the offending node. With --output json,
a report is printed for every MAPPING, including line and column details for
CEL expressions that fail to compile.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("unknown output format %q", output)
			}
			docOpts, err := root.documentOptions(cmd)
			if err != nil {
				return err
			}

			results := make([]validationResult, 0, len(args))
			failed := 0
			for _, path := range args {
				result := validateFile(path, docOpts)
				if !result.Valid {
					failed++
				}
				results = append(results, result)
				if output == "text" {
					if result.Valid {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
					} else {
						fmt.Fprintln(cmd.ErrOrStderr(), result.Error)
					}
				}
			}

			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			}
			if failed > 0 {
				return errors.New("validation failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

func validateFile(path string, docOpts []document.Option) validationResult {
	_, err := document.LoadFile(path, docOpts...)
	if err == nil {
		return validationResult{Path: path, Valid: true}
	}

	result := validationResult{Path: path, Error: err.Error()}
	var compileErr *document.CompileError
	if errors.As(err, &compileErr) {
		result.Pointer = compileErr.Pointer
	}
	if details, ok := cel.DetailsOf(err); ok {
		result.CEL = json.RawMessage(details.AsJSON())
	}
	return result
}

func newOperatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "List the operators mapping documents can use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, op := range document.Operators() {
				fmt.Fprintln(cmd.OutOrStdout(), op)
			}
		},
	}
}
