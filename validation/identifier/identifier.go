// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package identifier

import (
	"fmt"
	"regexp"
	"strings"
)

const maxLength = 128

var (
	validNameRegex     = regexp.MustCompile(`^[a-z0-9][a-z0-9_.\-]*$`)
	validFunctionRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// ValidateName validates a mapping document name: lowercase alphanumeric,
// underscore, dash and dot, starting with a letter or digit.
// It disallows null bytes and names longer than 128 bytes.
func ValidateName(name string) error {
	if name == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("document name cannot be empty or consist only of whitespace")
	}

	// Check for null bytes explicitly
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("document name cannot contain null bytes")
	}

	if len(name) > maxLength {
		return fmt.Errorf("document name exceeds maximum length of %d bytes", maxLength)
	}

	if name != strings.ToLower(name) {
		return fmt.Errorf("document name must be lowercase: %q", name)
	}

	if !validNameRegex.MatchString(name) {
		return fmt.Errorf("document name can only contain lowercase alphanumeric characters, underscores, dashes, and dots: %q", name)
	}

	return nil
}

// ValidateFunctionName validates the name a Go function is registered under
// for use from mapping documents: identifiers, optionally dot-separated
// ("strings.upper").
func ValidateFunctionName(name string) error {
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}

	if len(name) > maxLength {
		return fmt.Errorf("function name exceeds maximum length of %d bytes", maxLength)
	}

	if !validFunctionRegex.MatchString(name) {
		return fmt.Errorf("function name must be a dot-separated identifier: %q", name)
	}

	return nil
}
