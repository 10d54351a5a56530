// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package recovery converts panics raised by user-supplied callbacks into
// errors.
//
// Benders call plain Go functions supplied by the caller (F, Forall, Filter,
// Reduce, ...). A panic in one of them is recovered and returned as an error
// wrapping ErrPanic, so a single bad callback fails one evaluation instead of
// crashing the process.
//
// # Basic Usage
//
//	v, err := recovery.Call(func() (any, error) {
//	    return userFunc(value)
//	})
//	if errors.Is(err, recovery.ErrPanic) {
//	    // the callback panicked
//	}
//
// # Stability
//
// This package is Beta stability. The API may have minor changes before
// reaching stable status in v1.0.0.
package recovery
