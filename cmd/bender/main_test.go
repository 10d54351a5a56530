// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetingDocument = `
name: greeting
context:
  salutation: Hello
mapping:
  message:
    $format:
      template: "{}, {}!"
      args: [{$context: salutation}, {$select: name}]
  upper: {$cel: 'value.name.upperAscii()'}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBendCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapping := writeFile(t, dir, "greeting.yaml", greetingDocument)
	input := writeFile(t, dir, "input.json", `{"name": "ada"}`)
	contextFile := writeFile(t, dir, "context.yaml", "salutation: Howdy\n")

	tests := []struct {
		name     string
		stdin    string
		args     []string
		expected map[string]any
	}{
		{
			name:     "input file",
			args:     []string{"bend", mapping, input},
			expected: map[string]any{"message": "Hello, ada!", "upper": "ADA"},
		},
		{
			name:     "stdin input",
			stdin:    "name: grace",
			args:     []string{"bend", mapping},
			expected: map[string]any{"message": "Hello, grace!", "upper": "GRACE"},
		},
		{
			name:     "context file",
			args:     []string{"bend", mapping, input, "--context-file", contextFile},
			expected: map[string]any{"message": "Howdy, ada!", "upper": "ADA"},
		},
		{
			name:     "context flag wins",
			args:     []string{"bend", mapping, input, "--context-file", contextFile, "-c", "salutation=Hi"},
			expected: map[string]any{"message": "Hi, ada!", "upper": "ADA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stdout, _, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBendCommand_YAMLOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapping := writeFile(t, dir, "greeting.yaml", greetingDocument)

	stdout, _, err := execute(t, `{"name": "ada"}`, "bend", mapping, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "message:")
	assert.Contains(t, stdout, "Hello, ada!")
	assert.Contains(t, stdout, "upper: ADA")
}

func TestBendCommand_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapping := writeFile(t, dir, "greeting.yaml", greetingDocument)

	t.Run("missing field", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, `{}`, "bend", mapping)
		assert.ErrorContains(t, err, `error for key "message"`)
	})

	t.Run("unknown output format", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, `{"name": "ada"}`, "bend", mapping, "-o", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, `{}`, "bend", mapping, "--log-level", "loud")
		assert.ErrorContains(t, err, "unknown log level")
	})

	t.Run("cel cost limit", func(t *testing.T) {
		t.Parallel()
		doubled := writeFile(t, t.TempDir(), "doubled.yaml", "mapping: {$cel: 'value.map(x, x * 2)'}")
		_, _, err := execute(t, `[1, 2, 3, 4, 5, 6, 7, 8]`, "bend", doubled, "--cel-cost-limit", "1")
		assert.ErrorContains(t, err, "cost limit")
	})

	t.Run("cel expression length", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, `{"name": "ada"}`, "bend", mapping, "--cel-max-expression-length", "4")
		assert.ErrorContains(t, err, "exceeds maximum of 4")
	})

	t.Run("missing mapping argument", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, "", "bend")
		assert.Error(t, err)
	})
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", greetingDocument)
	bad := writeFile(t, dir, "bad.yaml", "mapping: {a: {$nope: 1}}")

	stdout, _, err := execute(t, "", "validate", good)
	require.NoError(t, err)
	assert.Equal(t, good+": ok\n", stdout)

	stdout, stderr, err := execute(t, "", "validate", good, bad)
	assert.EqualError(t, err, "validation failed")
	assert.Contains(t, stdout, good+": ok")
	assert.Contains(t, stderr, "/mapping/a/$nope")
}

func TestValidateCommand_JSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", greetingDocument)
	badCEL := writeFile(t, dir, "cel.yaml", "mapping:\n  a: {$cel: 'value.'}\n")

	stdout, _, err := execute(t, "", "validate", "-o", "json", good, badCEL)
	assert.EqualError(t, err, "validation failed")

	var results []struct {
		Path    string `json:"path"`
		Valid   bool   `json:"valid"`
		Error   string `json:"error"`
		Pointer string `json:"pointer"`
		CEL     struct {
			Source string `json:"source"`
			Errors []struct {
				Line int    `json:"line"`
				Msg  string `json:"msg"`
			} `json:"errors"`
		} `json:"cel"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)

	assert.Equal(t, good, results[0].Path)
	assert.True(t, results[0].Valid)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, badCEL, results[1].Path)
	assert.False(t, results[1].Valid)
	assert.Equal(t, "/mapping/a/$cel", results[1].Pointer)
	assert.Equal(t, "value.", results[1].CEL.Source)
	assert.NotEmpty(t, results[1].CEL.Errors)
}

func TestValidateCommand_UnknownOutput(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "", "validate", "-o", "xml", "any.yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestOperatorsCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "operators")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Contains(t, lines, "$select")
	assert.Contains(t, lines, "$protectedFormat")
	assert.Contains(t, lines, "$where")
}
