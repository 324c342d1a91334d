// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shape

import (
	"fmt"

	"github.com/openhep/sigfit/pkg/sample"
)

// Chebyshev is the polynomial background density
// 1 + c1*T1(u) + ... + ck*Tk(u), where Tk are Chebyshev polynomials of the
// first kind and u maps the construction-time domain linearly onto [-1, 1].
//
// Parameters: "c1" .. "ck". Chebyshev terms are nearly orthogonal over the
// domain, which keeps the coefficients weakly correlated in a fit, unlike
// plain monomials. Large coefficients can push the density negative; the
// fitter rejects that at the initial point and penalizes it during
// minimization.
type Chebyshev struct {
	domain sample.Range
	coeffs []float64
}

// NewChebyshev creates a Chebyshev template over the given domain with
// initial coefficients c1..ck. At least one coefficient is required; use
// Uniform for a flat density.
func NewChebyshev(domain sample.Range, coeffs ...float64) (*Chebyshev, error) {
	if err := domain.Validate(); err != nil {
		return nil, fmt.Errorf("chebyshev domain: %w", err)
	}
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("chebyshev needs at least one coefficient")
	}
	cs := make([]float64, len(coeffs))
	copy(cs, coeffs)
	return &Chebyshev{domain: domain, coeffs: cs}, nil
}

// Kind returns "chebyshev".
func (c *Chebyshev) Kind() string { return "chebyshev" }

// Domain returns the window mapped onto [-1, 1].
func (c *Chebyshev) Domain() sample.Range { return c.domain }

// Order returns the polynomial order (the number of coefficients).
func (c *Chebyshev) Order() int { return len(c.coeffs) }

// Params returns the declared parameters c1..ck.
func (c *Chebyshev) Params() []Param {
	ps := make([]Param, len(c.coeffs))
	for i, v := range c.coeffs {
		ps[i] = Param{Name: fmt.Sprintf("c%d", i+1), Value: v}
	}
	return ps
}

// Density returns 1 + sum of p[k-1]*Tk(u) at u mapped from x.
func (c *Chebyshev) Density(x float64, p []float64) float64 {
	u := c.mapU(x)
	d := 1.0
	tPrev, tCur := 1.0, u // T0, T1
	for k := 1; k <= len(p); k++ {
		d += p[k-1] * tCur
		tPrev, tCur = tCur, 2*u*tCur-tPrev
	}
	return d
}

// Integral returns the closed-form integral over [lo, hi], using the
// antiderivative of Tk:
//
//	int T1 du = u^2/2
//	int Tk du = (T(k+1)/(k+1) - T(k-1)/(k-1)) / 2   for k >= 2
func (c *Chebyshev) Integral(lo, hi float64, p []float64) float64 {
	jacobian := c.domain.Width() / 2
	return jacobian * (c.antiderivative(c.mapU(hi), p) - c.antiderivative(c.mapU(lo), p))
}

// mapU maps x from the domain onto [-1, 1].
func (c *Chebyshev) mapU(x float64) float64 {
	return 2*(x-c.domain.Lo)/c.domain.Width() - 1
}

// antiderivative evaluates the u-space antiderivative of the density at u.
func (c *Chebyshev) antiderivative(u float64, p []float64) float64 {
	// T0..T(K+1) at u.
	ts := make([]float64, len(p)+2)
	ts[0] = 1
	ts[1] = u
	for k := 2; k < len(ts); k++ {
		ts[k] = 2*u*ts[k-1] - ts[k-2]
	}
	f := u
	for k := 1; k <= len(p); k++ {
		if k == 1 {
			f += p[0] * 0.5 * u * u
			continue
		}
		f += p[k-1] * 0.5 * (ts[k+1]/float64(k+1) - ts[k-1]/float64(k-1))
	}
	return f
}

var (
	_ Template   = (*Chebyshev)(nil)
	_ Integrable = (*Chebyshev)(nil)
)
