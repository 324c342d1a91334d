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

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/openhep/sigfit/pkg/sample"
	"github.com/openhep/sigfit/pkg/shape"
)

// Numerical guards for the objective. The minimizer explores parameter
// regions where densities can reach zero or a normalization can collapse;
// every such excursion must map to a finite, large objective value so the
// line search can recover, never to NaN or Inf.
const (
	// densityFloor is the density below which -log(d) switches to its
	// linear continuation.
	densityFloor = 1e-10

	// normFloor is the smallest usable template normalization.
	normFloor = 1e-12

	// invalidPenalty is returned for parameter points where the model
	// is not evaluable at all.
	invalidPenalty = 1e12

	// quadNodes is the Gauss-Legendre order for full-range template
	// normalization when no closed form exists.
	quadNodes = 96

	// binQuadNodes is the Gauss-Legendre order for per-bin template
	// integrals in binned fits.
	binQuadNodes = 16

	// validationGrid is the number of equidistant points where template
	// densities are checked for negativity at the initial parameters.
	validationGrid = 201
)

// objective evaluates the extended negative log-likelihood
//
//	NLL = sum_c y_c - sum_i log( sum_c y_c * f_c(x_i) )
//
// for unbinned data, where f_c is the component density normalized to unit
// integral over the fit window, or the per-bin Poisson form
//
//	NLL = sum_b [ nu_b - n_b log nu_b ],  nu_b = sum_c y_c * I_c(b)/I_c(window)
//
// for binned data. Additive constants are dropped in both forms.
type objective struct {
	lay    *layout
	window sample.Range

	// xs holds the in-window points of an unbinned fit, sorted so the
	// likelihood sum does not depend on the caller's point order.
	xs []float64

	// edges/counts hold the bins of a binned fit; nil for unbinned.
	edges  []float64
	counts []float64
}

// newUnbinnedObjective builds the objective for per-event data.
func newUnbinnedObjective(lay *layout, window sample.Range, xs []float64) *objective {
	return &objective{lay: lay, window: window, xs: xs}
}

// newBinnedObjective builds the objective for histogram data.
func newBinnedObjective(lay *layout, hist *sample.Histogram) *objective {
	return &objective{
		lay:    lay,
		window: hist.Binning().Window,
		edges:  hist.Binning().Edges(),
		counts: hist.Counts(),
	}
}

// componentEval caches one component's state at a parameter point.
type componentEval struct {
	params []float64
	weight float64 // yield / normalization
}

// value evaluates the objective at a full parameter vector.
func (o *objective) value(full []float64) float64 {
	evals := make([]componentEval, len(o.lay.comps))
	totalYield := 0.0
	for i, c := range o.lay.comps {
		yield := full[c.yieldIdx]
		if math.IsNaN(yield) || math.IsInf(yield, 0) {
			return invalidPenalty
		}
		params := o.lay.componentParams(c, full)
		norm := templateIntegral(c.tmpl, o.window.Lo, o.window.Hi, params, quadNodes)
		if math.IsNaN(norm) || math.IsInf(norm, 0) || norm <= normFloor {
			return invalidPenalty
		}
		evals[i] = componentEval{params: params, weight: yield / norm}
		totalYield += yield
	}

	var nll float64
	if o.counts != nil {
		nll = o.binnedNLL(evals)
	} else {
		nll = o.unbinnedNLL(evals, totalYield)
	}
	if math.IsNaN(nll) || math.IsInf(nll, 0) {
		return invalidPenalty
	}
	return nll
}

// unbinnedNLL sums the per-event terms plus the total-yield Poisson term.
func (o *objective) unbinnedNLL(evals []componentEval, totalYield float64) float64 {
	nll := totalYield
	for _, x := range o.xs {
		d := 0.0
		for i := range evals {
			d += evals[i].weight * o.lay.comps[i].tmpl.Density(x, evals[i].params)
		}
		nll += softLog(d)
	}
	return nll
}

// binnedNLL sums the per-bin Poisson terms. The bins tile the window, so
// the expected totals are accounted bin by bin and no separate total-yield
// term appears.
func (o *objective) binnedNLL(evals []componentEval) float64 {
	nll := 0.0
	for b := 0; b < len(o.counts); b++ {
		lo, hi := o.edges[b], o.edges[b+1]
		nu := 0.0
		for i := range evals {
			nu += evals[i].weight * templateIntegral(o.lay.comps[i].tmpl, lo, hi, evals[i].params, binQuadNodes)
		}
		nll += nu
		if n := o.counts[b]; n > 0 {
			nll += n * softLog(nu)
		}
	}
	return nll
}

// softLog returns -log(d), continued linearly below densityFloor so the
// objective stays finite and C1 when an excursion drives a density to zero
// or negative.
func softLog(d float64) float64 {
	if math.IsNaN(d) {
		return invalidPenalty
	}
	if d >= densityFloor {
		return -math.Log(d)
	}
	return -math.Log(densityFloor) + (densityFloor-d)/densityFloor
}

// templateIntegral integrates t's un-normalized density over [lo, hi],
// preferring the closed form over fixed-order Gauss-Legendre quadrature.
func templateIntegral(t shape.Template, lo, hi float64, p []float64, nodes int) float64 {
	if ig, ok := t.(shape.Integrable); ok {
		return ig.Integral(lo, hi, p)
	}
	return quad.Fixed(func(x float64) float64 { return t.Density(x, p) }, lo, hi, nodes, quad.Legendre{}, 0)
}

// validateTemplates checks that every component's density normalizes on
// the window and is finite and non-negative there at the initial
// parameter point.
func validateTemplates(lay *layout, window sample.Range) error {
	full := lay.fullVector(lay.freeInit())
	for _, c := range lay.comps {
		params := lay.componentParams(c, full)

		norm := templateIntegral(c.tmpl, window.Lo, window.Hi, params, quadNodes)
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			return fmt.Errorf("%w: component %q integral is not finite on %s", ErrInvalidTemplate, c.name, window)
		}
		if norm <= 0 {
			return fmt.Errorf("%w: component %q has non-positive integral %g on %s", ErrInvalidTemplate, c.name, norm, window)
		}

		step := window.Width() / float64(validationGrid-1)
		for i := 0; i < validationGrid; i++ {
			x := window.Lo + float64(i)*step
			d := c.tmpl.Density(x, params)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return fmt.Errorf("%w: component %q density is not finite at x=%g", ErrInvalidTemplate, c.name, x)
			}
			if d < 0 {
				return fmt.Errorf("%w: component %q density is negative at x=%g", ErrInvalidTemplate, c.name, x)
			}
		}
	}
	return nil
}
