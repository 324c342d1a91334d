// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// convergeWindow is the iteration window over which the likelihood must
// improve by less than Tolerance for the fit to count as converged.
const convergeWindow = 10

// minimization is the raw outcome of one optimizer run, kept in the
// scaled coordinates so the Hessian can be evaluated on the same surface.
type minimization struct {
	freeOpt    []float64
	nll        float64
	iterations int
	funcEvals  int
	gradEvals  int
	scaledObj  func([]float64) float64
	zOpt       []float64
	scale      []float64
}

// minimize runs the configured method over the objective's free subspace.
//
// The minimizer works in scaled coordinates z = p/s with s the
// per-parameter magnitude, so yields of order 10^3 and widths of order
// 10^-2 condition equally well. The scales depend only on the initial
// values, which keeps the whole procedure deterministic.
func minimize(o *objective, cfg Config) (*minimization, error) {
	free0 := o.lay.freeInit()
	scale := paramScales(free0)

	z0 := make([]float64, len(free0))
	for i := range z0 {
		z0[i] = free0[i] / scale[i]
	}

	scaledObj := func(z []float64) float64 {
		free := make([]float64, len(z))
		for i := range z {
			free[i] = z[i] * scale[i]
		}
		return o.value(o.lay.fullVector(free))
	}

	problem := optimize.Problem{
		Func: scaledObj,
		Grad: func(grad, z []float64) {
			fd.Gradient(grad, scaledObj, z, &fd.Settings{Formula: fd.Central})
		},
	}

	settings := &optimize.Settings{
		MajorIterations: cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.Tolerance,
			Iterations: convergeWindow,
		},
	}

	var method optimize.Method
	switch cfg.method() {
	case MethodNelderMead:
		method = &optimize.NelderMead{}
	default:
		method = &optimize.BFGS{}
	}

	f0 := scaledObj(z0)

	res, err := optimize.Minimize(problem, z0, settings, method)
	if err != nil {
		// Finite-difference gradients turn to noise at the numerical
		// floor of the likelihood, and the line search then stalls
		// before the converger fires. A stall at or below the starting
		// value, away from the invalid-region penalty, is the minimum
		// for every practical purpose.
		if stalled(err) && res != nil && res.F <= f0 && res.F < invalidPenalty/2 {
			res.Status = optimize.FunctionConvergence
		} else {
			return nil, fmt.Errorf("%w: %v", ErrNonConvergence, err)
		}
	}

	switch res.Status {
	case optimize.Success, optimize.FunctionConvergence, optimize.GradientThreshold,
		optimize.StepConvergence, optimize.MethodConverge, optimize.FunctionThreshold:
		// Converged.
	case optimize.IterationLimit:
		return nil, fmt.Errorf("%w: iteration limit of %d reached (best nll %.6g)",
			ErrNonConvergence, cfg.MaxIterations, res.F)
	default:
		return nil, fmt.Errorf("%w: optimizer stopped with status %v (best nll %.6g)",
			ErrNonConvergence, res.Status, res.F)
	}

	freeOpt := make([]float64, len(res.X))
	for i := range res.X {
		freeOpt[i] = res.X[i] * scale[i]
	}

	return &minimization{
		freeOpt:    freeOpt,
		nll:        res.F,
		iterations: res.Stats.MajorIterations,
		funcEvals:  res.Stats.FuncEvaluations,
		gradEvals:  res.Stats.GradEvaluations,
		scaledObj:  scaledObj,
		zOpt:       append([]float64(nil), res.X...),
		scale:      scale,
	}, nil
}

// stalled reports whether err is one of the line-search stagnation errors
// that mark the numerical floor rather than a genuine failure.
func stalled(err error) bool {
	return errors.Is(err, optimize.ErrLinesearcherFailure) ||
		errors.Is(err, optimize.ErrNonDescentDirection) ||
		errors.Is(err, optimize.ErrNoProgress)
}

// paramScales returns the per-parameter magnitudes max(|v0|, 1) used to
// condition the optimizer.
func paramScales(init []float64) []float64 {
	scales := make([]float64, len(init))
	for i, v := range init {
		s := math.Abs(v)
		if s < 1 {
			s = 1
		}
		scales[i] = s
	}
	return scales
}
