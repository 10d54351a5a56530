// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed data/document.schema.json
var documentSchema []byte

const schemaErrPrefix = "document schema validation failed"

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
})

// ValidateSchema validates a decoded document against the document schema.
// raw must hold only JSON-compatible values, as produced by Parse.
func ValidateSchema(raw any) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("failed to load document schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", schemaErrPrefix, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return formatNumberedErrors(msgs)
}

// formatNumberedErrors formats a list of messages as a single error with a numbered list.
func formatNumberedErrors(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) == 1 {
		return fmt.Errorf("%s: %s", schemaErrPrefix, msgs[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s with %d errors:\n", schemaErrPrefix, len(msgs))
	for i, msg := range msgs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, msg)
	}
	return errors.New(strings.TrimSuffix(b.String(), "\n"))
}
