// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shape

import "math"

// CrystalBall is a Gaussian core with a power-law tail on the low side,
// the standard description of a resolution peak with radiative losses.
//
// Parameters: "mean", "sigma", "alpha", "n". The tail takes over below
// mean - alpha*sigma; n is the tail exponent and must be positive.
// Sigma and alpha enter through their absolute values.
type CrystalBall struct {
	// Mean is the default initial peak position.
	Mean float64

	// Sigma is the default initial core width.
	Sigma float64

	// Alpha is the default initial tail transition point in units of sigma.
	Alpha float64

	// N is the default initial tail exponent.
	N float64
}

// NewCrystalBall creates a CrystalBall template with the given initial values.
func NewCrystalBall(mean, sigma, alpha, n float64) *CrystalBall {
	return &CrystalBall{Mean: mean, Sigma: sigma, Alpha: alpha, N: n}
}

// Kind returns "crystalball".
func (c *CrystalBall) Kind() string { return "crystalball" }

// Params returns the declared parameters: mean, sigma, alpha, n.
func (c *CrystalBall) Params() []Param {
	return []Param{
		{Name: "mean", Value: c.Mean},
		{Name: "sigma", Value: c.Sigma},
		{Name: "alpha", Value: c.Alpha},
		{Name: "n", Value: c.N},
	}
}

// Density returns the piecewise Crystal Ball density.
//
// For t = (x-mean)/sigma above -alpha this is the Gaussian exp(-t^2/2);
// below it the power-law continuation A*(B-t)^-n, with A and B fixed by
// continuity of the density and its first derivative.
func (c *CrystalBall) Density(x float64, p []float64) float64 {
	mean, sigma := p[0], math.Abs(p[1])
	alpha, n := math.Abs(p[2]), p[3]
	if sigma == 0 || alpha == 0 || n <= 0 {
		return 0
	}
	t := (x - mean) / sigma
	if t > -alpha {
		return math.Exp(-0.5 * t * t)
	}
	a := math.Pow(n/alpha, n) * math.Exp(-0.5*alpha*alpha)
	b := n/alpha - alpha
	return a * math.Pow(b-t, -n)
}

var _ Template = (*CrystalBall)(nil)
