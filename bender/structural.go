// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"reflect"
	"slices"
)

type listNode struct {
	items []*Bender
}

func (*listNode) kind() Kind { return KindList }

type dictNode struct {
	// keys is sorted so evaluation order and error attribution are deterministic.
	keys   []string
	fields map[string]*Bender
}

func (*dictNode) kind() Kind { return KindDict }

// Benderify recursively converts x into a bender tree. Benders are returned
// unchanged, sequences become List nodes, string-keyed mappings become Dict
// nodes and everything else becomes a constant. Benderify is idempotent.
func Benderify(x any) *Bender {
	switch v := x.(type) {
	case *Bender:
		if v == nil {
			return K(nil)
		}
		return v
	case []any:
		return List(v...)
	case map[string]any:
		return Dict(v)
	case []byte, string, nil:
		return K(x)
	}
	if seq, ok := asSequence(x); ok {
		return List(seq...)
	}
	if m, ok := asMapping(x); ok {
		return Dict(m)
	}
	if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return K(nil)
	}
	return K(x)
}

// List builds a bender evaluating every item against the same input and
// collecting the results in order. A failing item fails the whole List
// without key attribution.
func List(items ...any) *Bender {
	children := make([]*Bender, len(items))
	for i, item := range items {
		children[i] = Benderify(item)
	}
	return newBender(&listNode{items: children})
}

// Dict builds a bender evaluating every field against the same input. A
// field failure is returned as a BendingError naming the field.
func Dict(fields map[string]any) *Bender {
	n := &dictNode{
		keys:   make([]string, 0, len(fields)),
		fields: make(map[string]*Bender, len(fields)),
	}
	for k, v := range fields {
		n.keys = append(n.keys, k)
		n.fields[k] = Benderify(v)
	}
	slices.Sort(n.keys)
	return newBender(n)
}

func evalList(n *listNode, t Transport) (Transport, error) {
	out := make([]any, len(n.items))
	for i, item := range n.items {
		v, err := item.Evaluate(t)
		if err != nil {
			return t, err
		}
		out[i] = v.Value
	}
	return t.WithValue(out), nil
}

func evalDict(n *dictNode, t Transport) (Transport, error) {
	out := make(map[string]any, len(n.keys))
	for _, k := range n.keys {
		v, err := n.fields[k].Evaluate(t)
		if err != nil {
			t.Logger().Debug("bending field failed", "key", k, "error", err)
			return t, &BendingError{Key: k, Err: err}
		}
		out[k] = v.Value
	}
	return t.WithValue(out), nil
}
