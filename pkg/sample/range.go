// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sample holds observable data for maximum-likelihood fits.
//
// The package provides three value types:
//
//   - Range: an inclusive observable window [Lo, Hi]
//   - Sample: an immutable ordered sequence of measurements
//   - Histogram: counts of a sample over a uniform Binning
//
// All types are immutable after construction, so they are safe to share
// across concurrent fits without synchronization. Constructors copy their
// inputs; accessors that return slices return copies.
package sample

import (
	"fmt"
	"math"
)

// Range is an inclusive observable window [Lo, Hi].
//
// Both endpoints belong to the range. A point x is inside the range when
// Lo <= x <= Hi; NaN compares false on both sides and is never contained.
type Range struct {
	// Lo is the lower edge of the window.
	Lo float64

	// Hi is the upper edge of the window.
	Hi float64
}

// NewRange creates a Range after validating its endpoints.
//
// Inputs:
//   - lo: Lower edge. Must be finite.
//   - hi: Upper edge. Must be finite and strictly greater than lo.
//
// Outputs:
//   - Range: The validated window.
//   - error: Non-nil if the endpoints are non-finite or not ordered.
func NewRange(lo, hi float64) (Range, error) {
	r := Range{Lo: lo, Hi: hi}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks that the range endpoints are finite and ordered.
//
// A Range built as a struct literal bypasses NewRange, so consumers that
// receive a Range from a caller should validate it before use.
func (r Range) Validate() error {
	if math.IsNaN(r.Lo) || math.IsInf(r.Lo, 0) {
		return fmt.Errorf("range lower edge must be finite, got %v", r.Lo)
	}
	if math.IsNaN(r.Hi) || math.IsInf(r.Hi, 0) {
		return fmt.Errorf("range upper edge must be finite, got %v", r.Hi)
	}
	if r.Lo >= r.Hi {
		return fmt.Errorf("range must satisfy lo < hi, got [%v, %v]", r.Lo, r.Hi)
	}
	return nil
}

// Contains reports whether x lies inside the window.
//
// Both edges are inclusive. NaN is never contained.
func (r Range) Contains(x float64) bool {
	return x >= r.Lo && x <= r.Hi
}

// Width returns Hi - Lo.
func (r Range) Width() float64 {
	return r.Hi - r.Lo
}

// Mid returns the midpoint of the window.
func (r Range) Mid() float64 {
	return r.Lo + 0.5*(r.Hi-r.Lo)
}

// String returns the window in interval notation.
func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Lo, r.Hi)
}
