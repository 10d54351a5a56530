// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"
)

// options holds the resolved configuration of a Bend call.
type options struct {
	context map[string]any
	logger  *slog.Logger
}

// Option configures a Bend call.
type Option func(*options)

// WithContext sets the context every node of the tree can read through
// Context. The default is an empty mapping.
func WithContext(context map[string]any) Option {
	return func(o *options) {
		o.context = context
	}
}

// WithLogger attaches a logger for evaluation diagnostics. Field failures and
// recovered lookup failures are logged at DEBUG. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Bend benderifies mapping, evaluates it against source and returns the
// resulting value. mapping may mix literal values, sequences, mappings and
// benders freely.
//
//	out, err := bender.Bend(map[string]any{
//	    "name":  bender.S("user", "name"),
//	    "const": "wow",
//	}, source)
func Bend(mapping, source any, opts ...Option) (any, error) {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}

	t := FromSource(source)
	if cfg.context != nil {
		t = t.WithContext(cfg.context)
	}
	if cfg.logger != nil {
		t = t.WithLogger(cfg.logger)
	}

	out, err := Benderify(mapping).Evaluate(t)
	if err != nil {
		t.Logger().Debug("bend failed", "path", keyPath(err), "error", err)
		return nil, err
	}
	return out.Value, nil
}

// BendInto runs Bend and decodes the result into target, which must be a
// pointer. Struct fields are matched by their `mapstructure` tag or, without
// one, case-insensitively by name.
func BendInto(mapping, source, target any, opts ...Option) error {
	out, err := Bend(mapping, source, opts...)
	if err != nil {
		return err
	}
	return Decode(out, target)
}

// Decode decodes a bent value into target, which must be a pointer.
func Decode(value, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("failed to decode bent value: %w", err)
	}
	return nil
}
