// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fit

import (
	"fmt"
	"math"
)

// Method selects the numerical minimizer.
type Method string

const (
	// MethodBFGS is the quasi-Newton default. It uses finite-difference
	// gradients and converges fast on the smooth likelihoods produced
	// by the shipped templates.
	MethodBFGS Method = "bfgs"

	// MethodNelderMead is a derivative-free simplex fallback for
	// likelihoods whose gradients are unreliable.
	MethodNelderMead Method = "nelder-mead"
)

// Config controls one likelihood minimization.
//
// The zero value is not usable; start from DefaultConfig and override
// fields as needed.
type Config struct {
	// MaxIterations caps the number of optimizer iterations. A fit that
	// exhausts the cap fails with ErrNonConvergence.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// Tolerance is the absolute negative-log-likelihood improvement
	// below which the fit counts as converged.
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`

	// FixedParams lists parameters held at their initial values during
	// minimization, addressed as "component.parameter". The yield of a
	// component is addressed as "component.yield". Unknown names fail
	// with ErrInvalidParameter.
	FixedParams []string `json:"fixed_parameters" yaml:"fixed_parameters"`

	// Method selects the minimizer. Empty means MethodBFGS.
	Method Method `json:"method" yaml:"method"`
}

// DefaultConfig returns the default fit configuration.
//
// Outputs:
//   - Config: MaxIterations 500, Tolerance 1e-9, no fixed parameters,
//     BFGS minimizer.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 500,
		Tolerance:     1e-9,
		Method:        MethodBFGS,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be >= 1, got %d", ErrInvalidParameter, c.MaxIterations)
	}
	if math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0) || c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be > 0, got %v", ErrInvalidParameter, c.Tolerance)
	}
	switch c.Method {
	case "", MethodBFGS, MethodNelderMead:
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidParameter, c.Method)
	}
	return nil
}

// method returns the effective minimizer, resolving the empty default.
func (c Config) method() Method {
	if c.Method == "" {
		return MethodBFGS
	}
	return c.Method
}
