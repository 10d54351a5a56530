// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package identifier provides validation functions for the names used in
mapping documents.

# Document Names

	if err := identifier.ValidateName("user-profile.v2"); err != nil {
		// Handle invalid document name
	}

Valid document names must:
  - Be non-empty
  - Start with a lowercase letter or digit
  - Contain only lowercase alphanumeric characters, underscores, dashes, and dots
  - Not contain null bytes
  - Be at most 128 bytes long

# Function Names

Functions registered for the $call operator are named with dot-separated
identifiers:

	"upper"
	"strings.upper"
	"_internal2"

Invalid function names:

	""              // empty
	"2upper"        // leading digit
	"strings..trim" // empty segment
	"to-upper"      // dash
*/
package identifier
