// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

// Compatibility constructors for list operations that take their source
// bender as an argument. They evaluate source and apply the list operation
// to its result, exactly like source.Then(Forall(fn)).

// ForallOf is Forall applied to the result of source.
//
// Deprecated: use Forall in a composition chain: source.Then(Forall(fn)).
func ForallOf(source any, fn func(any) (any, error)) *Bender {
	n := forall(fn)
	n.source = Benderify(source)
	return newBender(n)
}

// FilterOf is Filter applied to the result of source.
//
// Deprecated: use Filter in a composition chain: source.Then(Filter(fn)).
func FilterOf(source any, fn func(any) (bool, error)) *Bender {
	n := filter(fn)
	n.source = Benderify(source)
	return newBender(n)
}

// ReduceOf is Reduce applied to the result of source.
//
// Deprecated: use Reduce in a composition chain: source.Then(Reduce(fn)).
func ReduceOf(source any, fn func(acc, v any) (any, error)) *Bender {
	n := reduce(fn)
	n.source = Benderify(source)
	return newBender(n)
}

// FlatForallOf is FlatForall applied to the result of source.
//
// Deprecated: use FlatForall in a composition chain: source.Then(FlatForall(fn)).
func FlatForallOf(source any, fn func(any) ([]any, error)) *Bender {
	n := flatForall(fn)
	n.source = Benderify(source)
	return newBender(n)
}
