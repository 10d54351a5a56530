// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"log/slog"

	"github.com/stacklok/bender/cel"
)

// Function is a Go function a document can call through $call, $map,
// $filter, $flatMap and $reduce.
type Function func(args ...any) (any, error)

type options struct {
	engine    *cel.Engine
	functions map[string]Function
	logger    *slog.Logger
}

// Option configures Parse and LoadFile.
type Option func(*options)

// WithCELEngine sets the engine compiling $cel expressions. It must declare
// the variables of cel.NewBenderEngine. By default a cel.NewBenderEngine is
// created the first time a document uses $cel.
func WithCELEngine(engine *cel.Engine) Option {
	return func(o *options) {
		o.engine = engine
	}
}

// WithFunctions registers functions callable from the document by name.
// It may be given several times; later registrations win.
func WithFunctions(functions map[string]Function) Option {
	return func(o *options) {
		if o.functions == nil {
			o.functions = make(map[string]Function, len(functions))
		}
		for name, fn := range functions {
			o.functions[name] = fn
		}
	}
}

// WithLogger sets the logger used while compiling and, unless a bend
// overrides it, while bending.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
