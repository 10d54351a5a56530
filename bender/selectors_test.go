// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/bender/bender"
)

func TestSelectors(t *testing.T) {
	t.Parallel()

	source := map[string]any{"a": map[string]any{"b": []any{"x", "y"}}}

	tests := []struct {
		name     string
		bender   *bender.Bender
		expected any
	}{
		{"nested path", bender.S("a", "b", 1), "y"},
		{"identity", bender.S(), source},
		{"optional present", bender.OptionalS("a", "b", 0), "x"},
		{"optional missing", bender.OptionalS("a", "c"), nil},
		{"optional with fallback", bender.OptionalSOr("none", "a", "b", 5), "none"},
		{"get item", bender.GetItem("a"), map[string]any{"b": []any{"x", "y"}}},
		{"function", bender.F(func(v any) (any, error) { return len(v.(map[string]any)), nil }), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.bender.Apply(source)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("optional does not hide type errors", func(t *testing.T) {
		t.Parallel()
		_, err := bender.OptionalS("a", "b", "key").Apply(source)
		assert.ErrorIs(t, err, bender.ErrNotIndexable)
	})

	t.Run("constant is not benderified", func(t *testing.T) {
		t.Parallel()
		value := map[string]any{"s": bender.S("a")}
		got, err := bender.K(value).Apply(source)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})
}
