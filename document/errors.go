// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDocument is returned when a document cannot be parsed or does
	// not match the document schema.
	ErrInvalidDocument = errors.New("invalid mapping document")

	// ErrUnknownOperator is returned for a `$` key that names no operator.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrUnknownFunction is returned when a document calls a function that
	// was not registered with WithFunctions.
	ErrUnknownFunction = errors.New("unknown function")
)

// CompileError reports an operator that cannot be turned into a bender.
// Pointer locates it in the document, JSON Pointer style ("/mapping/name/$select").
type CompileError struct {
	Pointer string
	Err     error
}

// Error implements the error interface for CompileError.
func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error at %s: %s", e.Pointer, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// pointer is a location inside the document being compiled.
type pointer []string

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func (p pointer) child(token any) pointer {
	next := make(pointer, len(p), len(p)+1)
	copy(next, p)
	return append(next, fmt.Sprint(token))
}

func (p pointer) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, token := range p {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(token))
	}
	return b.String()
}

func (p pointer) errorf(format string, args ...any) error {
	return &CompileError{Pointer: p.String(), Err: fmt.Errorf(format, args...)}
}
