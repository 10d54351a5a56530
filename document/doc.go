// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package document loads declarative mapping documents written in YAML or JSON
and compiles them into bender trees.

A document has a required mapping and optional metadata:

	version: "1"
	name: user-profile
	context:
	  greeting: Hello
	mapping:
	  fullName:
	    $format:
	      template: "{} {}"
	      args: [{$select: [user, first]}, {$select: [user, last]}]
	  greeting:
	    $cel: 'context.greeting + ", " + value.user.first'

The document header is validated against an embedded JSON Schema and the
name with the identifier package.

# Mapping Nodes

Scalars, lists and mappings are literals; lists and mappings are bent element
by element. A mapping with a single key starting with `$` is an operator:

	$const            literal value, not interpreted
	$select           path (list or single key) selected from the value
	$optional         path, or {path, default}; missing paths yield default
	$context          path selected from the bend context
	$cel              CEL expression over `value` and `context`
	$where            boolean CEL expression keeping list elements
	$format           template, or {template, args, named}
	$protectedFormat  like $format, nil if any argument is nil
	$if               [condition, then, else?]
	$alt              [alternatives...], first without a lookup failure wins
	$switch           {key, cases, default?}, cases matched by printed key
	$each             {source?, mapping, context?}, bends every element
	$pipe             [stages...], each stage bends the previous result
	$call             name, or {name, args}, calls a registered Function
	$map, $filter, $flatMap, $reduce
	                  registered Function applied over a list
	$add $sub $mul $div $eq $ne $and $or
	                  [left, right]
	$neg $not         operand

A key starting with `$$` is a literal key with one `$` removed.

# Usage

	doc, err := document.LoadFile("profile.yaml",
	    document.WithFunctions(map[string]document.Function{"upper": upper}),
	)
	if err != nil {
	    // ErrInvalidDocument or *CompileError
	}
	out, err := doc.Bend(source)

Errors in the mapping are reported as *CompileError with a JSON Pointer to
the offending node, for example "/mapping/fullName/$format/args/0".
*/
package document
