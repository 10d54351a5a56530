// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/bender/document"
)

func TestValidateSchema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     any
		wantErr string
	}{
		{
			name: "minimal document",
			raw:  map[string]any{"mapping": nil},
		},
		{
			name: "full header",
			raw: map[string]any{
				"version":     1,
				"name":        "profile",
				"description": "flattens users",
				"context":     map[string]any{"greeting": "Hello"},
				"mapping":     map[string]any{"a": "b"},
			},
		},
		{
			name:    "single violation",
			raw:     map[string]any{"mapping": 1, "name": ""},
			wantErr: "document schema validation failed: name",
		},
		{
			name:    "several violations",
			raw:     map[string]any{"version": "2"},
			wantErr: "document schema validation failed with 2 errors:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := document.ValidateSchema(tt.raw)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
