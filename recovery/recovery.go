// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package recovery

import (
	"errors"
	"fmt"
)

// ErrPanic is wrapped by errors returned for recovered panics.
var ErrPanic = errors.New("callback panicked")

// PanicError carries the value a callback panicked with.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPanic, e.Value)
}

// Unwrap returns ErrPanic, or the panic value itself when it is an error.
func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrPanic, err}
	}
	return []error{ErrPanic}
}

// Call runs fn and returns its results. If fn panics, Call returns the zero
// value and a *PanicError.
func Call[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}
