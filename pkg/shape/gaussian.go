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

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/openhep/sigfit/pkg/sample"
)

// sqrtHalfPi is sqrt(pi/2), the Gaussian integral prefactor.
var sqrtHalfPi = math.Sqrt(math.Pi / 2)

// Gaussian is a symmetric peak exp(-(x-mean)^2 / (2 sigma^2)).
//
// Parameters: "mean", "sigma". Sigma enters through its absolute value;
// a sigma of exactly zero yields zero density everywhere.
type Gaussian struct {
	// Mean is the default initial peak position.
	Mean float64

	// Sigma is the default initial peak width.
	Sigma float64
}

// NewGaussian creates a Gaussian template with the given initial values.
func NewGaussian(mean, sigma float64) *Gaussian {
	return &Gaussian{Mean: mean, Sigma: sigma}
}

// Kind returns "gaussian".
func (g *Gaussian) Kind() string { return "gaussian" }

// Params returns the declared parameters: mean, sigma.
func (g *Gaussian) Params() []Param {
	return []Param{
		{Name: "mean", Value: g.Mean},
		{Name: "sigma", Value: g.Sigma},
	}
}

// Density returns exp(-(x-mean)^2 / (2 sigma^2)).
func (g *Gaussian) Density(x float64, p []float64) float64 {
	mean, sigma := p[0], math.Abs(p[1])
	if sigma == 0 {
		return 0
	}
	t := (x - mean) / sigma
	return math.Exp(-0.5 * t * t)
}

// Integral returns the closed-form integral of the un-normalized density,
// sigma*sqrt(pi/2)*(erf(b) - erf(a)) with the usual erf arguments.
func (g *Gaussian) Integral(lo, hi float64, p []float64) float64 {
	mean, sigma := p[0], math.Abs(p[1])
	if sigma == 0 {
		return 0
	}
	s := sigma * math.Sqrt2
	return sigma * sqrtHalfPi * (math.Erf((hi-mean)/s) - math.Erf((lo-mean)/s))
}

// SampleIn draws one value inside r by rejection from the untruncated
// Gaussian. Returns false when the window holds too little probability
// mass for rejection to land, in which case the caller should fall back
// to its generic sampler.
func (g *Gaussian) SampleIn(r sample.Range, p []float64, rng *rand.Rand) (float64, bool) {
	mean, sigma := p[0], math.Abs(p[1])
	if sigma == 0 {
		return 0, false
	}
	dist := distuv.Normal{Mu: mean, Sigma: sigma, Src: rng}
	for i := 0; i < 1000; i++ {
		if x := dist.Rand(); r.Contains(x) {
			return x, true
		}
	}
	return 0, false
}

var (
	_ Template   = (*Gaussian)(nil)
	_ Integrable = (*Gaussian)(nil)
)
