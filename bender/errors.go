// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for bender evaluation.
var (
	// ErrLookup is returned when a selector or index cannot find its target in
	// the current value. It is the only error class that Alternation and Switch
	// treat as recoverable.
	ErrLookup = errors.New("lookup failed")

	// ErrEmptyReduce is returned by Reduce when its input sequence is empty.
	ErrEmptyReduce = errors.New("cannot reduce empty sequence")

	// ErrNotIndexable is returned when a value cannot be indexed by the given key type.
	ErrNotIndexable = errors.New("value is not indexable")

	// ErrNotSequence is returned when a list operation receives a non-sequence value.
	ErrNotSequence = errors.New("value is not a sequence")

	// ErrOperand is returned when an operator is applied to unsupported operand types.
	ErrOperand = errors.New("unsupported operand type")

	// ErrDivisionByZero is returned by Div when the divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrFormat is returned when a format template is malformed or a value
	// cannot be rendered with the requested format spec.
	ErrFormat = errors.New("invalid format")

	// ErrNoAlternatives is returned by an Alternation built without benders.
	ErrNoAlternatives = errors.New("alternation has no benders")
)

// LookupError reports a missing key or an out-of-range index.
type LookupError struct {
	// Key is the key or index that could not be found.
	Key any
	// Err optionally carries the underlying cause.
	Err error
}

// Error implements the error interface for LookupError.
func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %s", ErrLookup, formatKey(e.Key), e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrLookup, formatKey(e.Key))
}

// Is reports whether target is ErrLookup so that errors.Is works without
// exposing ErrLookup through Unwrap.
func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}

// Unwrap returns the underlying cause, if any.
func (e *LookupError) Unwrap() error {
	return e.Err
}

// BendingError wraps a failure that happened while bending a named Dict field.
type BendingError struct {
	// Key is the Dict key whose bender failed.
	Key string
	// Err is the original failure.
	Err error
}

// Error implements the error interface for BendingError.
func (e *BendingError) Error() string {
	return fmt.Sprintf("error for key %q: %s", e.Key, e.Err)
}

// Unwrap returns the original failure.
func (e *BendingError) Unwrap() error {
	return e.Err
}

// Path returns the chain of Dict keys leading to the innermost failure,
// outermost first.
func (e *BendingError) Path() []string {
	path := []string{e.Key}
	var inner *BendingError
	if errors.As(e.Err, &inner) {
		path = append(path, inner.Path()...)
	}
	return path
}

// IsLookupFailure reports whether err is a lookup failure that combinators may
// recover from. A lookup failure already attributed to a Dict key is not
// recoverable: the BendingError marks it as a genuine failure of that field.
func IsLookupFailure(err error) bool {
	if err == nil {
		return false
	}
	var bendingErr *BendingError
	if errors.As(err, &bendingErr) {
		return false
	}
	return errors.Is(err, ErrLookup)
}

func formatKey(key any) string {
	switch k := key.(type) {
	case string:
		return fmt.Sprintf("%q", k)
	case Slice:
		return k.String()
	default:
		return fmt.Sprintf("%v", k)
	}
}

// keyPath renders a BendingError path for log output.
func keyPath(err error) string {
	var bendingErr *BendingError
	if !errors.As(err, &bendingErr) {
		return ""
	}
	return strings.Join(bendingErr.Path(), ".")
}
