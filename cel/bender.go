// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/stacklok/bender/bender"
)

const (
	// ValueVariable is the variable holding the value being bent.
	ValueVariable = "value"
	// ContextVariable is the variable holding the bend context.
	ContextVariable = "context"
)

// NewBenderEngine creates an engine whose expressions can read the value
// being bent as `value` and the bend context as `context`. The CEL string
// extension library is enabled. Additional options are appended to the
// environment.
func NewBenderEngine(options ...cel.EnvOption) *Engine {
	opts := append([]cel.EnvOption{
		cel.Variable(ValueVariable, cel.DynType),
		cel.Variable(ContextVariable, cel.MapType(cel.StringType, cel.DynType)),
		ext.Strings(),
	}, options...)
	return NewEngine(opts...)
}

// Bender compiles expr and returns a bender evaluating it. The engine must
// declare the variables of NewBenderEngine.
//
//	b, err := engine.Bender(`value.first + " " + value.last`)
func (e *Engine) Bender(expr string) (*bender.Bender, error) {
	compiled, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	return compiled.Bender(), nil
}

// Bender returns a bender evaluating the compiled expression against the
// current value and context. A missing map key or list index surfaces as a
// bender.LookupError, so Alternation and OptionalS-style fallbacks apply.
func (ce *CompiledExpression) Bender() *bender.Bender {
	return bender.FromFunc(fmt.Sprintf("CEL(%q)", ce.source), func(t bender.Transport) (any, error) {
		out, err := ce.Evaluate(activation(t.Value, t.Context))
		if err != nil {
			return nil, lookupFailure(err)
		}
		return out, nil
	})
}

// Where compiles expr and returns a bender filtering its sequence input.
// An element is kept when expr, evaluated with the element as `value`,
// yields true.
//
//	adults, err := engine.Where(`value.age >= 18`)
func (e *Engine) Where(expr string) (*bender.Bender, error) {
	compiled, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	return compiled.Where(), nil
}

// Where returns a bender keeping the elements of its sequence input for
// which the compiled expression is true. A result that is not a bool fails
// with ErrInvalidResult.
func (ce *CompiledExpression) Where() *bender.Bender {
	return bender.FromFunc(fmt.Sprintf("Where(%q)", ce.source), func(t bender.Transport) (any, error) {
		keep := bender.Filter(func(v any) (bool, error) {
			ok, err := ce.EvaluateBool(activation(v, t.Context))
			if err != nil {
				return false, lookupFailure(err)
			}
			return ok, nil
		})
		out, err := keep.Evaluate(t)
		if err != nil {
			return nil, err
		}
		return out.Value, nil
	})
}

func activation(value any, context map[string]any) map[string]any {
	if context == nil {
		context = map[string]any{}
	}
	return map[string]any{
		ValueVariable:   value,
		ContextVariable: context,
	}
}

// lookupFailure turns missing keys and indices into bender.LookupError.
func lookupFailure(err error) error {
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if key, ok := evalErr.MissingKey(); ok {
			return &bender.LookupError{Key: key, Err: err}
		}
	}
	return err
}
