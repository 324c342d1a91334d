// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shape

import (
	"math/rand/v2"

	"github.com/openhep/sigfit/pkg/sample"
)

// Uniform is a flat density with no parameters.
type Uniform struct{}

// NewUniform creates a Uniform template.
func NewUniform() *Uniform { return &Uniform{} }

// Kind returns "uniform".
func (u *Uniform) Kind() string { return "uniform" }

// Params returns nil: the shape has no parameters.
func (u *Uniform) Params() []Param { return nil }

// Density returns 1 everywhere.
func (u *Uniform) Density(x float64, p []float64) float64 { return 1 }

// Integral returns hi - lo.
func (u *Uniform) Integral(lo, hi float64, p []float64) float64 { return hi - lo }

// SampleIn draws one value uniformly inside r.
func (u *Uniform) SampleIn(r sample.Range, p []float64, rng *rand.Rand) (float64, bool) {
	return r.Lo + rng.Float64()*r.Width(), true
}

var (
	_ Template   = (*Uniform)(nil)
	_ Integrable = (*Uniform)(nil)
)
