// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shape

import "math"

// Argus is the kinematic background density
// x * sqrt(1 - (x/m0)^2) * exp(c * (1 - (x/m0)^2)), zero at and above the
// endpoint m0. It describes combinatorial background below a kinematic
// limit, e.g. the beam-energy bound of a B-candidate mass spectrum.
//
// Parameters: "m0" (endpoint, must be positive), "c" (curvature, negative
// for the usual falling spectrum).
type Argus struct {
	// Endpoint is the default initial kinematic endpoint m0.
	Endpoint float64

	// Curvature is the default initial curvature c.
	Curvature float64
}

// NewArgus creates an Argus template with the given initial values.
func NewArgus(endpoint, curvature float64) *Argus {
	return &Argus{Endpoint: endpoint, Curvature: curvature}
}

// Kind returns "argus".
func (a *Argus) Kind() string { return "argus" }

// Params returns the declared parameters: m0, c.
func (a *Argus) Params() []Param {
	return []Param{
		{Name: "m0", Value: a.Endpoint},
		{Name: "c", Value: a.Curvature},
	}
}

// Density returns the Argus density, zero outside (0, m0).
func (a *Argus) Density(x float64, p []float64) float64 {
	m0, c := p[0], p[1]
	if m0 <= 0 || x <= 0 || x >= m0 {
		return 0
	}
	y := 1 - (x/m0)*(x/m0)
	return x * math.Sqrt(y) * math.Exp(c*y)
}

var _ Template = (*Argus)(nil)
