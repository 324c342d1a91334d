// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sample

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Sample is an immutable ordered sequence of scalar measurements.
//
// Description:
//
//	Sample wraps a slice of float64 observations of a single observable,
//	for example reconstructed candidate masses. The constructor copies
//	the input slice, so later mutation of the caller's slice does not
//	affect the sample. Point order is preserved but carries no meaning:
//	every consumer in this repository is order-invariant.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Sample struct {
	values []float64
}

// New creates a Sample from a slice of measurements.
//
// The input is copied. NaN and infinite entries are kept as-is; range
// filtering treats them as outside every window.
//
// Inputs:
//   - values: The measurements. May be empty or nil.
//
// Outputs:
//   - *Sample: The new sample. Never nil.
func New(values []float64) *Sample {
	vs := make([]float64, len(values))
	copy(vs, values)
	return &Sample{values: vs}
}

// Len returns the number of measurements.
func (s *Sample) Len() int {
	return len(s.values)
}

// At returns the i-th measurement.
func (s *Sample) At(i int) float64 {
	return s.values[i]
}

// Values returns a copy of all measurements.
func (s *Sample) Values() []float64 {
	vs := make([]float64, len(s.values))
	copy(vs, s.values)
	return vs
}

// Within returns a new Sample containing only the measurements inside r,
// preserving their original order.
//
// NaN and infinite measurements are dropped because no finite window
// contains them.
func (s *Sample) Within(r Range) *Sample {
	vs := make([]float64, 0, len(s.values))
	for _, x := range s.values {
		if r.Contains(x) {
			vs = append(vs, x)
		}
	}
	return &Sample{values: vs}
}

// CountWithin returns the number of measurements inside r.
func (s *Sample) CountWithin(r Range) int {
	n := 0
	for _, x := range s.values {
		if r.Contains(x) {
			n++
		}
	}
	return n
}

// Mean returns the arithmetic mean, or NaN for an empty sample.
func (s *Sample) Mean() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	return stat.Mean(s.values, nil)
}

// StdDev returns the corrected sample standard deviation, or NaN when
// fewer than two measurements are present.
func (s *Sample) StdDev() float64 {
	if len(s.values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(s.values, nil)
}

// Min returns the smallest measurement, or NaN for an empty sample.
func (s *Sample) Min() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	min := s.values[0]
	for _, x := range s.values[1:] {
		if x < min {
			min = x
		}
	}
	return min
}

// Max returns the largest measurement, or NaN for an empty sample.
func (s *Sample) Max() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	max := s.values[0]
	for _, x := range s.values[1:] {
		if x > max {
			max = x
		}
	}
	return max
}
