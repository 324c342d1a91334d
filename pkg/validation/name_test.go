// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"strings"
	"testing"
)

func TestValidateName_Valid(t *testing.T) {
	valid := []string{
		"signal",
		"background",
		"bkg_comb",
		"B0",
		"cb2",
		"Signal_Peak",
		strings.Repeat("a", 64),
	}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
}

func TestValidateName_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"signal.yield",
		"2signal",
		"_signal",
		"signal peak",
		"signal-peak",
		"signal\t",
		strings.Repeat("a", 65),
	}
	for _, name := range invalid {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", name)
		}
	}
}

func TestValidateNames(t *testing.T) {
	if err := ValidateNames([]string{"signal", "background"}); err != nil {
		t.Errorf("ValidateNames(valid) = %v, want nil", err)
	}

	err := ValidateNames([]string{"signal", "bad name", "also.bad"})
	if err == nil {
		t.Fatal("ValidateNames(invalid) = nil, want error")
	}
	if !strings.Contains(err.Error(), "bad name") || !strings.Contains(err.Error(), "also.bad") {
		t.Errorf("error should list all offenders, got %v", err)
	}
}

func TestSplitAddress(t *testing.T) {
	comp, param, err := SplitAddress("signal.mean")
	if err != nil {
		t.Fatalf("SplitAddress(signal.mean) = %v, want nil", err)
	}
	if comp != "signal" || param != "mean" {
		t.Errorf("SplitAddress(signal.mean) = (%q, %q)", comp, param)
	}

	bad := []string{
		"signal",
		"signal.mean.sigma",
		".mean",
		"signal.",
		"sig nal.mean",
	}
	for _, addr := range bad {
		if _, _, err := SplitAddress(addr); err == nil {
			t.Errorf("SplitAddress(%q) = nil, want error", addr)
		}
	}
}
