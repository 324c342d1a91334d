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
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ParamEstimate is one parameter's outcome: its full address, the fitted
// (or held) value, and the standard error. Fixed parameters and fits
// without a usable covariance carry a zero error.
type ParamEstimate struct {
	// Name is the full address, e.g. "signal.yield".
	Name string

	// Value is the fitted value, or the initial value when fixed.
	Value float64

	// Error is the standard error from the inverse Hessian; zero when
	// Fixed or when Converged() is false.
	Error float64

	// Fixed reports whether the parameter was held during the fit.
	Fixed bool
}

// Result is one immutable fit outcome.
//
// Description:
//
//	Result carries the point estimates and standard errors of all model
//	parameters, the minimized negative log-likelihood, the optimizer
//	counters, and the free-parameter covariance. Accessors return
//	copies; a Result never changes after the fit that produced it.
//
//	Converged reports whether the standard errors are usable: the
//	minimizer reached the tolerance AND the Hessian at the minimum was
//	positive definite. The point estimates are valid either way.
//
// Thread Safety: Immutable; safe for concurrent use.
type Result struct {
	nll        float64
	converged  bool
	iterations int
	funcEvals  int
	gradEvals  int
	params     []ParamEstimate
	nameIdx    map[string]int
	freeSlot   map[string]int
	cov        *mat.SymDense
}

// newResult assembles a Result from the optimizer outcome.
func newResult(lay *layout, m *minimization, cov *mat.SymDense, covOK bool) *Result {
	full := lay.fullVector(m.freeOpt)

	r := &Result{
		nll:        m.nll,
		converged:  covOK,
		iterations: m.iterations,
		funcEvals:  m.funcEvals,
		gradEvals:  m.gradEvals,
		params:     make([]ParamEstimate, lay.numParams()),
		nameIdx:    make(map[string]int, lay.numParams()),
		freeSlot:   make(map[string]int, len(lay.freeIdx)),
	}
	if covOK {
		r.cov = cov
	}

	for slot, idx := range lay.freeIdx {
		r.freeSlot[lay.names[idx]] = slot
	}
	for i, name := range lay.names {
		pe := ParamEstimate{
			Name:  name,
			Value: full[i],
			Fixed: !lay.isFree[i],
		}
		if slot, ok := r.freeSlot[name]; ok && r.cov != nil {
			pe.Error = math.Sqrt(r.cov.At(slot, slot))
		}
		r.params[i] = pe
		r.nameIdx[name] = i
	}
	return r
}

// NLL returns the minimized negative log-likelihood (additive constants
// dropped).
func (r *Result) NLL() float64 { return r.nll }

// Converged reports whether the standard errors are usable.
func (r *Result) Converged() bool { return r.converged }

// Iterations returns the number of optimizer iterations used.
func (r *Result) Iterations() int { return r.iterations }

// FuncEvaluations returns the number of likelihood evaluations.
func (r *Result) FuncEvaluations() int { return r.funcEvals }

// GradEvaluations returns the number of gradient evaluations.
func (r *Result) GradEvaluations() int { return r.gradEvals }

// Params returns all parameter estimates in model order.
func (r *Result) Params() []ParamEstimate {
	ps := make([]ParamEstimate, len(r.params))
	copy(ps, r.params)
	return ps
}

// Param returns the estimate for a full address like "signal.mean".
func (r *Result) Param(name string) (ParamEstimate, bool) {
	idx, ok := r.nameIdx[name]
	if !ok {
		return ParamEstimate{}, false
	}
	return r.params[idx], true
}

// Yield returns the yield estimate of the named component.
func (r *Result) Yield(component string) (ParamEstimate, bool) {
	return r.Param(component + "." + YieldParam)
}

// Covariance returns the covariance of two free parameters. The second
// return is false when either parameter is fixed, unknown, or no usable
// covariance exists.
func (r *Result) Covariance(a, b string) (float64, bool) {
	if r.cov == nil {
		return 0, false
	}
	i, ok := r.freeSlot[a]
	if !ok {
		return 0, false
	}
	j, ok := r.freeSlot[b]
	if !ok {
		return 0, false
	}
	return r.cov.At(i, j), true
}

// Correlation returns the correlation coefficient of two free parameters.
func (r *Result) Correlation(a, b string) (float64, bool) {
	cab, ok := r.Covariance(a, b)
	if !ok {
		return 0, false
	}
	caa, _ := r.Covariance(a, a)
	cbb, _ := r.Covariance(b, b)
	den := math.Sqrt(caa * cbb)
	if den == 0 {
		return 0, false
	}
	return cab / den, true
}

// String renders a fixed-width summary of the fit.
func (r *Result) String() string {
	var b strings.Builder
	state := "converged"
	if !r.converged {
		state = "no valid error estimate"
	}
	fmt.Fprintf(&b, "fit %s: nll=%.6f iterations=%d evaluations=%d\n",
		state, r.nll, r.iterations, r.funcEvals)
	for _, p := range r.params {
		if p.Fixed {
			fmt.Fprintf(&b, "  %-24s %14.6g  (fixed)\n", p.Name, p.Value)
			continue
		}
		fmt.Fprintf(&b, "  %-24s %14.6g +/- %-12.6g\n", p.Name, p.Value, p.Error)
	}
	return b.String()
}
