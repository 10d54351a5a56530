// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/bender/bender"
	"github.com/stacklok/bender/validation/identifier"
)

// Document is a parsed and compiled mapping document.
type Document struct {
	Version     string
	Name        string
	Description string
	// Context is the default bend context, replaced by bender.WithContext.
	Context map[string]any
	// Mapping is the decoded mapping node as it appears in the document.
	Mapping any

	root   *bender.Bender
	logger *slog.Logger
}

// Parse decodes a YAML or JSON mapping document, validates it and compiles
// its mapping.
func Parse(data []byte, opts ...Option) (*Document, error) {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	for name := range cfg.functions {
		if err := identifier.ValidateFunctionName(name); err != nil {
			return nil, fmt.Errorf("invalid function registration: %w", err)
		}
	}

	raw, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := ValidateSchema(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	top := raw.(map[string]any)

	doc := &Document{
		Version: "1",
		Mapping: top["mapping"],
		logger:  cfg.logger,
	}
	if v, ok := top["version"]; ok {
		doc.Version = fmt.Sprint(v)
	}
	if name, ok := top["name"].(string); ok {
		if err := identifier.ValidateName(name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		doc.Name = name
	}
	doc.Description, _ = top["description"].(string)
	doc.Context, _ = top["context"].(map[string]any)

	c := &compiler{engine: cfg.engine, functions: cfg.functions}
	root, err := c.compile(doc.Mapping, pointer{"mapping"})
	if err != nil {
		return nil, err
	}
	doc.root = root

	if cfg.logger != nil {
		cfg.logger.Debug("compiled mapping document", "name", doc.Name, "kind", root.Kind())
	}
	return doc, nil
}

// Read parses a mapping document from r.
func Read(r io.Reader, opts ...Option) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping document: %w", err)
	}
	return Parse(data, opts...)
}

// LoadFile parses the mapping document stored at path.
func LoadFile(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping document %s: %w", path, err)
	}
	doc, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Bender returns the compiled mapping.
func (d *Document) Bender() *bender.Bender {
	return d.root
}

// Bend evaluates the mapping against source. The document context and
// logger apply unless opts set their own.
func (d *Document) Bend(source any, opts ...bender.Option) (any, error) {
	base := make([]bender.Option, 0, 2+len(opts))
	if d.Context != nil {
		base = append(base, bender.WithContext(d.Context))
	}
	if d.logger != nil {
		base = append(base, bender.WithLogger(d.logger))
	}
	return bender.Bend(d.root, source, append(base, opts...)...)
}

// BendInto runs Bend and decodes the result into target with bender.Decode.
func (d *Document) BendInto(source, target any, opts ...bender.Option) error {
	out, err := d.Bend(source, opts...)
	if err != nil {
		return err
	}
	return bender.Decode(out, target)
}

// Unmarshal decodes YAML or JSON into plain values: map[string]any, []any
// and scalars. It is how documents are read and suits bend sources too.
func Unmarshal(data []byte) (any, error) {
	var decoded any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return normalize(decoded), nil
}

// normalize converts YAML-decoded values into JSON-compatible ones: mappings
// with non-string keys become map[string]any keyed by the printed key.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}
