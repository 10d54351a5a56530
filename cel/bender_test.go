// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/bender/bender"
	"github.com/stacklok/bender/cel"
)

func TestEngine_Bender(t *testing.T) {
	t.Parallel()

	engine := cel.NewBenderEngine()
	source := map[string]any{
		"first":  "Ada",
		"last":   "Lovelace",
		"scores": []any{3, 4, 5},
		"nested": map[string]any{"ok": true},
	}

	tests := []struct {
		name     string
		expr     string
		expected any
	}{
		{"string concatenation", `value.first + " " + value.last`, "Ada Lovelace"},
		{"arithmetic", `value.scores[0] * 2`, int64(6)},
		{"macro", `value.scores.filter(s, s > 3)`, []any{int64(4), int64(5)}},
		{"map literal", `{"name": value.first}`, map[string]any{"name": "Ada"}},
		{"nested map", `value.nested`, map[string]any{"ok": true}},
		{"string extension", `value.last.upperAscii()`, "LOVELACE"},
		{"null", `null`, nil},
		{"context", `context.greeting + ", " + value.first`, "Hello, Ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := engine.Bender(tt.expr)
			require.NoError(t, err)

			got, err := bender.Bend(b, source, bender.WithContext(map[string]any{"greeting": "Hello"}))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEngine_Bender_Errors(t *testing.T) {
	t.Parallel()

	engine := cel.NewBenderEngine()

	t.Run("compile error", func(t *testing.T) {
		t.Parallel()
		_, err := engine.Bender(`value.first +`)
		var parseErr *cel.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("missing key is a lookup failure", func(t *testing.T) {
		t.Parallel()
		b, err := engine.Bender(`value.missing`)
		require.NoError(t, err)

		_, err = b.Apply(map[string]any{})
		assert.True(t, bender.IsLookupFailure(err))
		assert.ErrorIs(t, err, cel.ErrEvaluation)
	})

	t.Run("missing key falls through alternation", func(t *testing.T) {
		t.Parallel()
		b, err := engine.Bender(`value.missing`)
		require.NoError(t, err)

		got, err := bender.Alternation(b, bender.K("fallback")).Apply(map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "fallback", got)
	})

	t.Run("type error is not a lookup failure", func(t *testing.T) {
		t.Parallel()
		b, err := engine.Bender(`value.n + "x"`)
		require.NoError(t, err)

		_, err = b.Apply(map[string]any{"n": 1})
		require.Error(t, err)
		assert.False(t, bender.IsLookupFailure(err))
	})
}

func TestCompiledExpression_Bender_Composes(t *testing.T) {
	t.Parallel()

	engine := cel.NewBenderEngine()
	expr, err := engine.Compile(`value * 10`)
	require.NoError(t, err)

	got, err := bender.S("items").Then(bender.Forall(func(v any) (any, error) {
		return expr.Bender().Apply(v)
	})).Apply(map[string]any{"items": []any{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(20)}, got)
}

func TestEvaluationError_MissingKey(t *testing.T) {
	t.Parallel()

	engine := cel.NewBenderEngine()
	activation := map[string]any{
		cel.ValueVariable:   map[string]any{"items": []any{1, 2}, "n": 1},
		cel.ContextVariable: map[string]any{},
	}

	tests := []struct {
		name        string
		expr        string
		wantMissing bool
		wantKey     string
	}{
		{"missing map key", `value.absent`, true, "absent"},
		{"missing index key", `value["absent"]`, true, "absent"},
		{"list index out of range", `value.items[5]`, true, ""},
		{"division by zero", `value.n / 0`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			expr, err := engine.Compile(tt.expr)
			require.NoError(t, err)

			_, err = expr.Evaluate(activation)
			var evalErr *cel.EvaluationError
			require.ErrorAs(t, err, &evalErr)

			key, ok := evalErr.MissingKey()
			assert.Equal(t, tt.wantMissing, ok, "runtime message: %v", evalErr.Unwrap())
			if tt.wantKey != "" {
				assert.Equal(t, tt.wantKey, key)
			}
		})
	}
}

func TestEngine_Where(t *testing.T) {
	t.Parallel()

	engine := cel.NewBenderEngine()
	people := []any{
		map[string]any{"name": "ada", "age": 36, "country": "uk"},
		map[string]any{"name": "kid", "age": 9, "country": "uk"},
		map[string]any{"name": "grace", "age": 85, "country": "us"},
	}

	t.Run("keeps matching elements", func(t *testing.T) {
		t.Parallel()
		b, err := engine.Where(`value.age >= 18 && value.country == context.country`)
		require.NoError(t, err)

		got, err := bender.Bend(b, people, bender.WithContext(map[string]any{"country": "uk"}))
		require.NoError(t, err)
		assert.Equal(t, []any{people[0]}, got)
	})

	t.Run("non-bool result", func(t *testing.T) {
		t.Parallel()
		b, err := engine.Where(`value.name`)
		require.NoError(t, err)

		_, err = b.Apply(people)
		assert.ErrorIs(t, err, cel.ErrInvalidResult)
	})

	t.Run("missing field is a lookup failure", func(t *testing.T) {
		t.Parallel()
		b, err := engine.Where(`value.height > 1`)
		require.NoError(t, err)

		_, err = b.Apply(people)
		assert.True(t, bender.IsLookupFailure(err))
	})

	t.Run("input must be a sequence", func(t *testing.T) {
		t.Parallel()
		b, err := engine.Where(`true`)
		require.NoError(t, err)

		_, err = b.Apply(map[string]any{})
		assert.ErrorIs(t, err, bender.ErrNotSequence)
	})
}

func TestDetailsOf(t *testing.T) {
	t.Parallel()

	engine := cel.NewBenderEngine()

	_, parseErr := engine.Compile(`value.first +`)
	details, ok := cel.DetailsOf(fmt.Errorf("wrapped: %w", parseErr))
	require.True(t, ok)
	assert.Equal(t, `value.first +`, details.Source)
	assert.NotEmpty(t, details.Errors)

	_, checkErr := engine.Compile(`unknown_var == 1`)
	details, ok = cel.DetailsOf(checkErr)
	require.True(t, ok)
	assert.Contains(t, details.AsJSON(), `"source":"unknown_var == 1"`)

	_, ok = cel.DetailsOf(cel.ErrEvaluation)
	assert.False(t, ok)
}
