// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shape

import (
	"math"
	"math/rand/v2"

	"github.com/openhep/sigfit/pkg/sample"
)

// Exponential is a monotone density exp(slope * x).
//
// Parameter: "slope". Negative slopes fall with x, positive slopes rise,
// and a slope of exactly zero degenerates to a flat density.
type Exponential struct {
	// Slope is the default initial slope.
	Slope float64
}

// NewExponential creates an Exponential template with the given initial slope.
func NewExponential(slope float64) *Exponential {
	return &Exponential{Slope: slope}
}

// Kind returns "exponential".
func (e *Exponential) Kind() string { return "exponential" }

// Params returns the declared parameters: slope.
func (e *Exponential) Params() []Param {
	return []Param{{Name: "slope", Value: e.Slope}}
}

// Density returns exp(slope * x).
func (e *Exponential) Density(x float64, p []float64) float64 {
	return math.Exp(p[0] * x)
}

// Integral returns the closed-form integral of exp(slope*x) over [lo, hi],
// computed through expm1 so that near-zero slopes stay accurate.
func (e *Exponential) Integral(lo, hi float64, p []float64) float64 {
	c := p[0]
	if c == 0 {
		return hi - lo
	}
	return math.Exp(c*lo) * math.Expm1(c*(hi-lo)) / c
}

// SampleIn draws one value inside r by inverting the truncated CDF.
// It always succeeds for finite slopes.
func (e *Exponential) SampleIn(r sample.Range, p []float64, rng *rand.Rand) (float64, bool) {
	c := p[0]
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, false
	}
	w := r.Width()
	u := rng.Float64()
	if c == 0 {
		return r.Lo + u*w, true
	}
	// CDF over [Lo, Hi] is (exp(c(x-Lo))-1) / (exp(cW)-1).
	x := r.Lo + math.Log1p(u*math.Expm1(c*w))/c
	if !r.Contains(x) {
		// Round-off at the window edges.
		x = math.Min(math.Max(x, r.Lo), r.Hi)
	}
	return x, true
}

var (
	_ Template   = (*Exponential)(nil)
	_ Integrable = (*Exponential)(nil)
)
