// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package cel provides a CEL expression engine for compiling and evaluating
expressions against the values being bent.

The engine provides lazy-initialized, thread-safe environment caching, expression
compilation with structured parse and type-check error reporting, boolean and
generic value evaluation, and safeguards via configurable expression
length and runtime cost limits. Results are converted to plain Go values.

# Bender Expressions

NewBenderEngine declares the variables `value` (the value being bent) and
`context` (the bend context). Engine.Bender compiles an expression into a
bender that composes with the rest of a mapping:

	engine := cel.NewBenderEngine()

	fullName, err := engine.Bender(`value.first + " " + value.last`)
	if err != nil {
	    // handle compilation error
	}

	out, err := bender.Bend(map[string]any{"name": fullName}, source)

A missing map key or list index at evaluation time is reported as a
bender.LookupError, so the expression can take part in Alternation.

Engine.Where compiles a boolean expression into a filter over a sequence,
evaluated once per element:

	adults, err := engine.Where(`value.age >= 18 && value.country == context.country`)

# Basic Usage

Engines with other variables are built with NewEngine:

	engine := cel.NewEngine(
	    celgo.Variable("value", celgo.MapType(celgo.StringType, celgo.DynType)),
	)

	expr, err := engine.Compile(`value["name"] == "user123"`)
	if err != nil {
	    // handle compilation error
	}

	result, err := expr.EvaluateBool(map[string]any{"value": map[string]any{"name": "user123"}})
	// result == true

# Error Handling

Compilation errors are returned as structured types with location information:

	expr, err := engine.Compile(`value["name"`)
	var parseErr *cel.ParseError
	if errors.As(err, &parseErr) {
	    fmt.Println(parseErr.Source)  // the original expression
	    fmt.Println(parseErr.Errors) // line/column/message details
	}

	expr, err = engine.Compile(`undefined_var == "test"`)
	var checkErr *cel.CheckError
	if errors.As(err, &checkErr) {
	    fmt.Println(checkErr.AsJSON()) // structured JSON error details
	}

DetailsOf finds either kind in a wrapped chain.

Runtime failures are returned as *EvaluationError and match ErrEvaluation.

# Limits

	engine := cel.NewBenderEngine(opts...).
	    WithMaxExpressionLength(5000). // reject overly long expressions
	    WithCostLimit(500000)          // limit runtime evaluation cost

# Concurrency

The Engine and CompiledExpression types are safe for concurrent use. A compiled
expression can be evaluated from multiple goroutines simultaneously.
*/
package cel
