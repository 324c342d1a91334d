// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for identifiers that flow
// into parameter addressing and configuration files.
//
// Model components and shape parameters are addressed as
// "component.parameter" strings, so names must never contain dots or
// whitespace; a name that broke that rule would make fixed-parameter
// lists ambiguous. Using these validators at construction time keeps the
// addressing scheme unambiguous everywhere downstream.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// namePattern matches valid component and parameter names.
// Allows: letters, digits, underscores; must start with a letter.
// Max length: 64 characters.
var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// ValidateName validates a component or parameter name.
//
// Valid names:
//   - 1-64 characters
//   - Letters A-Z, a-z
//   - Digits 0-9 and underscores after the first character
//
// Dots are rejected because they separate the component and parameter
// parts of an address like "signal.mean".
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateName(comp.Name); err != nil {
//	    return nil, fmt.Errorf("invalid component name: %w", err)
//	}
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q (must be 1-64 characters: letters, digits, underscores, starting with a letter)", name)
	}

	return nil
}

// ValidateNames validates multiple names.
// Returns an error listing all invalid names if any fail validation.
func ValidateNames(names []string) error {
	var invalid []string
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			invalid = append(invalid, name)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid names: %s", strings.Join(invalid, ", "))
	}

	return nil
}

// SplitAddress splits a "component.parameter" address into its parts.
//
// The component part must be a valid name; the parameter part must be a
// valid name as well. Returns an error for anything else, including
// addresses with more than one dot.
func SplitAddress(addr string) (component, parameter string, err error) {
	parts := strings.Split(addr, ".")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("address %q must have the form component.parameter", addr)
	}
	if err := ValidateName(parts[0]); err != nil {
		return "", "", fmt.Errorf("address %q: %w", addr, err)
	}
	if err := ValidateName(parts[1]); err != nil {
		return "", "", fmt.Errorf("address %q: %w", addr, err)
	}
	return parts[0], parts[1], nil
}
