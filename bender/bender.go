// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"fmt"
)

// Kind identifies the variant of a bender node.
type Kind string

// Node kinds.
const (
	KindConst       Kind = "const"
	KindSelect      Kind = "select"
	KindItem        Kind = "item"
	KindContext     Kind = "context"
	KindFunc        Kind = "func"
	KindList        Kind = "list"
	KindDict        Kind = "dict"
	KindUnary       Kind = "unary"
	KindBinary      Kind = "binary"
	KindCompose     Kind = "compose"
	KindIf          Kind = "if"
	KindAlternation Kind = "alternation"
	KindSwitch      Kind = "switch"
	KindListOp      Kind = "listop"
	KindForallBend  Kind = "forallbend"
	KindFormat      Kind = "format"
)

// Bender is a node of a transformation expression tree. A Bender is built
// once, holds no evaluation state and is safe for concurrent use.
//
// The zero value is not usable; build benders with the constructors in this
// package (K, S, Dict, If, ...) or with Benderify.
type Bender struct {
	n node
}

// node is the closed set of bender variants. Every implementation lives in
// this package and is handled by evaluate.
type node interface {
	kind() Kind
}

func newBender(n node) *Bender {
	return &Bender{n: n}
}

// Kind returns the variant of b.
func (b *Bender) Kind() Kind {
	return b.n.kind()
}

// String returns a short description of b for diagnostics.
func (b *Bender) String() string {
	if s, ok := b.n.(fmt.Stringer); ok {
		return s.String()
	}
	return string(b.n.kind())
}

// Evaluate runs b against t and returns the resulting Transport.
func (b *Bender) Evaluate(t Transport) (Transport, error) {
	if t.Context == nil {
		t.Context = map[string]any{}
	}
	return evaluate(b.n, t)
}

// Apply evaluates b against source and returns only the resulting value.
// If source is not a Transport it is wrapped in one with an empty context.
func (b *Bender) Apply(source any) (any, error) {
	out, err := b.Evaluate(FromSource(source))
	if err != nil {
		return nil, err
	}
	return out.Value, nil
}

// evaluate is the single evaluation function for every node kind.
func evaluate(n node, t Transport) (Transport, error) {
	switch n := n.(type) {
	case *constNode:
		return t.WithValue(n.value), nil
	case *selectNode:
		return evalSelect(n, t)
	case *itemNode:
		v, err := getItem(t.Value, n.index)
		if err != nil {
			return t, err
		}
		return t.WithValue(v), nil
	case *contextNode:
		return t.WithValue(t.Context), nil
	case *funcNode:
		return evalFunc(n, t)
	case *listNode:
		return evalList(n, t)
	case *dictNode:
		return evalDict(n, t)
	case *unaryNode:
		return evalUnary(n, t)
	case *binaryNode:
		return evalBinary(n, t)
	case *composeNode:
		mid, err := evaluate(n.first.n, t)
		if err != nil {
			return t, err
		}
		return evaluate(n.second.n, mid)
	case *ifNode:
		return evalIf(n, t)
	case *alternationNode:
		return evalAlternation(n, t)
	case *switchNode:
		return evalSwitch(n, t)
	case *listOpNode:
		return evalListOp(n, t)
	case *forallBendNode:
		return evalForallBend(n, t)
	case *formatNode:
		return evalFormat(n, t)
	default:
		return t, fmt.Errorf("unknown bender node %T", n)
	}
}
