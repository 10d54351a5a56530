// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"fmt"
	"reflect"
)

type ifNode struct {
	condition, whenTrue, whenFalse *Bender
}

func (*ifNode) kind() Kind { return KindIf }

type alternationNode struct {
	benders []*Bender
}

func (*alternationNode) kind() Kind { return KindAlternation }

type switchNode struct {
	key        *Bender
	cases      map[any]*Bender
	fallback   *Bender
	hasDefault bool
}

func (*switchNode) kind() Kind { return KindSwitch }

// If evaluates condition and then only the selected branch: whenTrue when the
// condition is truthy, whenFalse otherwise. A nil branch produces nil.
//
//	If(S("country").Eq("China"), S("first_name"), S("last_name"))
func If(condition, whenTrue, whenFalse any) *Bender {
	return newBender(&ifNode{
		condition: Benderify(condition),
		whenTrue:  Benderify(whenTrue),
		whenFalse: Benderify(whenFalse),
	})
}

// Alternation returns the result of the first bender that does not fail with
// a lookup failure. If every bender fails that way, the last failure is
// returned. Any other error is returned immediately.
func Alternation(benders ...any) *Bender {
	n := &alternationNode{benders: make([]*Bender, len(benders))}
	for i, b := range benders {
		n.benders[i] = Benderify(b)
	}
	return newBender(n)
}

// Switch evaluates key and then the bender registered for the result in
// cases. An unmatched key fails with a LookupError.
func Switch(key any, cases map[any]any) *Bender {
	return newBender(newSwitchNode(key, cases))
}

// SwitchDefault is Switch with a fallback bender for unmatched keys.
func SwitchDefault(key any, cases map[any]any, fallback any) *Bender {
	n := newSwitchNode(key, cases)
	n.fallback = Benderify(fallback)
	n.hasDefault = true
	return newBender(n)
}

func newSwitchNode(key any, cases map[any]any) *switchNode {
	n := &switchNode{key: Benderify(key), cases: make(map[any]*Bender, len(cases))}
	for k, v := range cases {
		n.cases[k] = Benderify(v)
	}
	return n
}

func evalIf(n *ifNode, t Transport) (Transport, error) {
	cond, err := n.condition.Evaluate(t)
	if err != nil {
		return t, err
	}
	if Truthy(cond.Value) {
		return n.whenTrue.Evaluate(t)
	}
	return n.whenFalse.Evaluate(t)
}

func evalAlternation(n *alternationNode, t Transport) (Transport, error) {
	lastErr := ErrNoAlternatives
	for i, b := range n.benders {
		out, err := b.Evaluate(t)
		if err == nil {
			return out, nil
		}
		if !IsLookupFailure(err) {
			return t, err
		}
		t.Logger().Debug("alternative failed, trying next", "index", i, "error", err)
		lastErr = err
	}
	return t, lastErr
}

func evalSwitch(n *switchNode, t Transport) (Transport, error) {
	k, err := n.key.Evaluate(t)
	if err != nil {
		return t, err
	}
	b, err := n.lookup(k.Value)
	if err != nil {
		if !n.hasDefault || !IsLookupFailure(err) {
			return t, err
		}
		b = n.fallback
	}
	return b.Evaluate(t)
}

// lookup finds the case for key. Numeric keys match across Go numeric types.
func (n *switchNode) lookup(key any) (*Bender, error) {
	if key != nil && !reflect.ValueOf(key).Comparable() {
		return nil, fmt.Errorf("%w: unhashable switch key type %T", ErrNotIndexable, key)
	}
	if b, ok := n.cases[key]; ok {
		return b, nil
	}
	if _, ok := toNumber(key); ok {
		for k, b := range n.cases {
			if Equal(k, key) {
				return b, nil
			}
		}
	}
	return nil, &LookupError{Key: key}
}
