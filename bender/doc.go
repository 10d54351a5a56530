// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package bender provides a declarative transformation engine: trees of
composable bender nodes that derive a new value from a source value,
typically a nested structure of maps and slices such as decoded JSON.

# Basic Usage

Describe the output shape with a mapping that mixes literals and benders,
then bend a source with it:

	mapping := map[string]any{
	    "name":    bender.S("user", "name"),
	    "country": bender.OptionalSOr("unknown", "user", "address", "country"),
	    "kind":    "person",
	}

	out, err := bender.Bend(mapping, source)

Literal values become constants, slices become List nodes and string-keyed
maps become Dict nodes (see Benderify). A tree is built once and can be
evaluated any number of times, concurrently, against different sources.

# Transport and Context

Every node consumes and produces a Transport: the current value plus a
context mapping established once per Bend call. Only the Context node reads
the context:

	out, err := bender.Bend(bender.Context().Index("tenant"), source,
	    bender.WithContext(map[string]any{"tenant": "acme"}))

# Operators

Go has no operator overloading, so operators are methods and free functions
returning new nodes. The full table is documented on Operator:

	total := bender.S("price").Mul(bender.S("quantity"))
	ratio := bender.Div(bender.S("done"), bender.S("total")) // always float64
	first := bender.S("items").Index(0)
	tail := bender.S("items").Slice(bender.Slice{Start: bender.Bound(1)})
	name := bender.S("user").Then(bender.S("name"))

# Control Flow

  - If evaluates a condition and only the selected branch
  - Alternation returns the first alternative that does not fail with a lookup failure
  - Switch dispatches on a key to a table of benders, with an optional default

# List Operations

Forall, Filter, Reduce and FlatForall apply plain Go functions to the
sequence produced by the previous node of a composition chain. ForallBend
bends every element with a nested mapping:

	bender.S("users").Then(bender.ForallBend(map[string]any{
	    "id": bender.S("uid"),
	}, nil))

# Formatting

Format and FormatNamed interpolate bender results into a brace template.
ProtectedFormat produces nil instead when any argument is nil, which
propagates missing optional fields selected with OptionalS.

# Error Handling

Errors are inspected with errors.Is and errors.As:

  - ErrLookup / *LookupError: missing key or index; recovered by Alternation and Switch
  - *BendingError: a Dict field failed; Key and Path name the field
  - ErrEmptyReduce: Reduce over an empty sequence
  - ErrNotIndexable, ErrNotSequence, ErrOperand, ErrDivisionByZero, ErrFormat

Dict attributes failures to keys; List does not attribute failures to
element positions.

# Limits

Evaluation is a synchronous recursive walk. Cyclic source values are not
supported.
*/
package bender
