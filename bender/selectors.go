// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"fmt"
	"strings"

	"github.com/stacklok/bender/recovery"
)

type constNode struct {
	value any
}

func (*constNode) kind() Kind { return KindConst }

func (n *constNode) String() string { return fmt.Sprintf("K(%v)", n.value) }

type selectNode struct {
	path     []any
	optional bool
	fallback any
}

func (*selectNode) kind() Kind { return KindSelect }

func (n *selectNode) String() string {
	parts := make([]string, len(n.path))
	for i, p := range n.path {
		parts[i] = formatKey(p)
	}
	name := "S"
	if n.optional {
		name = "OptionalS"
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

type itemNode struct {
	index any
}

func (*itemNode) kind() Kind { return KindItem }

func (n *itemNode) String() string { return fmt.Sprintf("[%s]", formatKey(n.index)) }

type contextNode struct{}

func (*contextNode) kind() Kind { return KindContext }

type funcNode struct {
	name string
	fn   func(Transport) (any, error)
}

func (*funcNode) kind() Kind { return KindFunc }

func (n *funcNode) String() string { return n.name }

// K returns a bender that always produces value, whatever its input.
// value is kept verbatim: it is not benderified.
func K(value any) *Bender {
	return newBender(&constNode{value: value})
}

// S returns a bender selecting a nested item by successive keys or indices.
// A missing key or out-of-range index fails with a LookupError. S with no
// path returns its input.
func S(path ...any) *Bender {
	return newBender(&selectNode{path: path})
}

// OptionalS is S that produces nil instead of failing when the path is missing.
func OptionalS(path ...any) *Bender {
	return OptionalSOr(nil, path...)
}

// OptionalSOr is S that produces fallback instead of failing when the path is missing.
func OptionalSOr(fallback any, path ...any) *Bender {
	return newBender(&selectNode{path: path, optional: true, fallback: fallback})
}

// GetItem returns a bender selecting index from its input. index may be a
// mapping key, an integer position (negative counts from the end) or a Slice.
func GetItem(index any) *Bender {
	if p, ok := index.(*Slice); ok && p != nil {
		index = *p
	}
	return newBender(&itemNode{index: index})
}

// Context returns a bender producing the context of the current Transport.
func Context() *Bender {
	return newBender(&contextNode{})
}

// F lifts a plain function into a bender. Panics in fn are returned as errors.
func F(fn func(any) (any, error)) *Bender {
	return FromFunc("F", func(t Transport) (any, error) {
		return fn(t.Value)
	})
}

// FromFunc builds a bender from a function of the whole Transport. It is the
// extension point for node kinds implemented outside this package. Panics
// in fn are returned as errors.
func FromFunc(name string, fn func(Transport) (any, error)) *Bender {
	return newBender(&funcNode{name: name, fn: fn})
}

func evalSelect(n *selectNode, t Transport) (Transport, error) {
	v := t.Value
	for _, key := range n.path {
		next, err := getItem(v, key)
		if err != nil {
			if n.optional && IsLookupFailure(err) {
				return t.WithValue(n.fallback), nil
			}
			return t, err
		}
		v = next
	}
	return t.WithValue(v), nil
}

func evalFunc(n *funcNode, t Transport) (Transport, error) {
	v, err := recovery.Call(func() (any, error) {
		return n.fn(t)
	})
	if err != nil {
		return t, err
	}
	return t.WithValue(v), nil
}
