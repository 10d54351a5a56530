// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"fmt"

	"github.com/stacklok/bender/recovery"
)

type listOpNode struct {
	name  string
	apply func([]any) (any, error)
	// source is only set by the deprecated two-argument constructors.
	source *Bender
}

func (*listOpNode) kind() Kind { return KindListOp }

func (n *listOpNode) String() string { return n.name }

type forallBendNode struct {
	mapping *Bender
	context map[string]any
}

func (*forallBendNode) kind() Kind { return KindForallBend }

// Forall maps fn over every element of its sequence input.
//
//	S("items").Then(Forall(func(v any) (any, error) { ... }))
func Forall(fn func(any) (any, error)) *Bender {
	return newBender(forall(fn))
}

// Filter keeps the elements of its sequence input for which fn returns true.
func Filter(fn func(any) (bool, error)) *Bender {
	return newBender(filter(fn))
}

// Reduce folds its sequence input from the left, seeding the accumulator with
// the first element. An empty input fails with ErrEmptyReduce.
func Reduce(fn func(acc, v any) (any, error)) *Bender {
	return newBender(reduce(fn))
}

// FlatForall maps fn over every element of its sequence input and flattens
// the returned sequences by one level.
func FlatForall(fn func(any) ([]any, error)) *Bender {
	return newBender(flatForall(fn))
}

// ForallBend bends every element of its sequence input with mapping, as a
// separate Bend call with context. A nil context is an empty one; the
// enclosing context is not visible inside mapping.
func ForallBend(mapping any, context map[string]any) *Bender {
	return newBender(&forallBendNode{mapping: Benderify(mapping), context: context})
}

func forall(fn func(any) (any, error)) *listOpNode {
	return &listOpNode{name: "Forall", apply: func(vals []any) (any, error) {
		out := make([]any, len(vals))
		for i, v := range vals {
			r, err := recovery.Call(func() (any, error) { return fn(v) })
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}}
}

func filter(fn func(any) (bool, error)) *listOpNode {
	return &listOpNode{name: "Filter", apply: func(vals []any) (any, error) {
		out := make([]any, 0, len(vals))
		for _, v := range vals {
			keep, err := recovery.Call(func() (bool, error) { return fn(v) })
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, v)
			}
		}
		return out, nil
	}}
}

func reduce(fn func(acc, v any) (any, error)) *listOpNode {
	return &listOpNode{name: "Reduce", apply: func(vals []any) (any, error) {
		if len(vals) == 0 {
			return nil, ErrEmptyReduce
		}
		acc := vals[0]
		for _, v := range vals[1:] {
			next, err := recovery.Call(func() (any, error) { return fn(acc, v) })
			if err != nil {
				return nil, err
			}
			acc = next
		}
		return acc, nil
	}}
}

func flatForall(fn func(any) ([]any, error)) *listOpNode {
	return &listOpNode{name: "FlatForall", apply: func(vals []any) (any, error) {
		out := make([]any, 0, len(vals))
		for _, v := range vals {
			items, err := recovery.Call(func() ([]any, error) { return fn(v) })
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		}
		return out, nil
	}}
}

func evalListOp(n *listOpNode, t Transport) (Transport, error) {
	in := t
	if n.source != nil {
		var err error
		if in, err = n.source.Evaluate(t); err != nil {
			return t, err
		}
	}
	vals, err := toSequence(in.Value)
	if err != nil {
		return t, fmt.Errorf("%s: %w", n.name, err)
	}
	out, err := n.apply(vals)
	if err != nil {
		return t, err
	}
	return t.WithValue(out), nil
}

func evalForallBend(n *forallBendNode, t Transport) (Transport, error) {
	vals, err := toSequence(t.Value)
	if err != nil {
		return t, fmt.Errorf("ForallBend: %w", err)
	}
	context := n.context
	if context == nil {
		context = map[string]any{}
	}
	elem := t.WithContext(context)
	out := make([]any, len(vals))
	for i, v := range vals {
		r, err := n.mapping.Evaluate(elem.WithValue(v))
		if err != nil {
			return t, err
		}
		out[i] = r.Value
	}
	return t.WithValue(out), nil
}
