// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"io"
	"log/slog"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Transport is the value and context pair threaded through every evaluation.
// Nodes never mutate a Transport; they derive new ones with WithValue.
type Transport struct {
	// Value is the value being bent.
	Value any
	// Context is established once per Bend call and passed unchanged down the tree.
	Context map[string]any

	logger *slog.Logger
}

// NewTransport creates a Transport. A nil context is replaced with an empty one.
func NewTransport(value any, context map[string]any) Transport {
	if context == nil {
		context = map[string]any{}
	}
	return Transport{Value: value, Context: context}
}

// FromSource returns source unchanged if it already is a Transport, otherwise
// it wraps source in a Transport with an empty context.
func FromSource(source any) Transport {
	switch s := source.(type) {
	case Transport:
		if s.Context == nil {
			s.Context = map[string]any{}
		}
		return s
	case *Transport:
		if s != nil {
			return FromSource(*s)
		}
	}
	return NewTransport(source, nil)
}

// WithValue returns a copy of t carrying value. Context and logger are kept.
func (t Transport) WithValue(value any) Transport {
	t.Value = value
	return t
}

// WithContext returns a copy of t carrying context.
func (t Transport) WithContext(context map[string]any) Transport {
	if context == nil {
		context = map[string]any{}
	}
	t.Context = context
	return t
}

// WithLogger returns a copy of t whose evaluation diagnostics go to logger.
func (t Transport) WithLogger(logger *slog.Logger) Transport {
	t.logger = logger
	return t
}

// Logger returns the logger attached to t, or a logger that discards everything.
func (t Transport) Logger() *slog.Logger {
	if t.logger == nil {
		return discardLogger
	}
	return t.logger
}
