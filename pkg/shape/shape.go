// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package shape provides the density templates composite fit models are
// built from.
//
// A Template describes one un-normalized density family over a scalar
// observable: its parameter declarations and a pointwise Density. The
// fitter normalizes every template to unit integral over the fit range,
// either through the optional Integrable fast path or by Gauss-Legendre
// quadrature, so Density implementations never need to carry their own
// normalization constants.
//
// Shipped templates:
//
//   - Gaussian: symmetric peak (mean, sigma)
//   - Exponential: monotone background with signed slope
//   - CrystalBall: Gaussian core with a power-law low-side tail
//   - Argus: kinematic background vanishing at an endpoint
//   - Chebyshev: polynomial background over a fixed domain
//   - Uniform: flat density
//   - HistogramTemplate: step density from a binned control sample
//
// Templates are stateless value objects: Density is a pure function of
// (x, p), so every template is safe for concurrent use.
package shape

// Param declares one shape parameter: its name within the shape and its
// default initial value.
type Param struct {
	// Name identifies the parameter within its shape, e.g. "mean".
	Name string

	// Value is the default initial value used when the caller does not
	// override it.
	Value float64
}

// Template is one un-normalized density family over a scalar observable.
//
// Density must be a pure function: no stored state, no randomness. It is
// expected to be non-negative over the fit range; the fitter verifies this
// at the initial parameter point and penalizes excursions during
// minimization. Implementations return 0 (or a non-finite value) rather
// than panicking for parameter values outside their meaningful region.
type Template interface {
	// Kind returns the shape family name, e.g. "gaussian".
	Kind() string

	// Params returns the declared parameters in their canonical order.
	// The p slice passed to Density uses this order.
	Params() []Param

	// Density returns the un-normalized density at x for parameter
	// values p, where len(p) equals len(Params()).
	Density(x float64, p []float64) float64
}

// Integrable is implemented by templates whose un-normalized density has a
// closed-form integral. The fitter prefers it over quadrature.
type Integrable interface {
	// Integral returns the integral of the un-normalized density over
	// [lo, hi] for parameter values p.
	Integral(lo, hi float64, p []float64) float64
}

// NumParams returns the number of declared parameters of t.
func NumParams(t Template) int {
	return len(t.Params())
}
