// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package toy generates pseudo-experiments from a composite model and runs
// repeated fits over them to validate estimator calibration.
//
// A Generator draws Poisson-fluctuated datasets from the model that a fit
// would estimate, component by component. A Study fans a batch of such
// pseudo-experiments over a worker pool, fits each one, and summarizes the
// yield pulls (fitted minus true, in units of the reported error). For an
// unbiased fitter with correct errors the pulls follow a unit Gaussian.
//
// All draws run off caller-provided or per-toy derived PCG streams, so a
// study's numbers depend only on its seed and never on worker scheduling.
package toy

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/openhep/sigfit/pkg/fit"
	"github.com/openhep/sigfit/pkg/sample"
	"github.com/openhep/sigfit/pkg/shape"
)

const (
	// envelopeGrid is the number of scan points used to bound a template's
	// density for accept-reject sampling.
	envelopeGrid = 2001

	// envelopeMargin inflates the scanned maximum so narrow features
	// between grid points stay under the ceiling.
	envelopeMargin = 1.15

	// maxRejectAttempts caps accept-reject draws per event before the
	// generator declares the template unsamplable.
	maxRejectAttempts = 100000
)

// sampler is the direct-draw fast path a template may offer.
type sampler interface {
	SampleIn(r sample.Range, p []float64, rng *rand.Rand) (float64, bool)
}

// genComponent holds one component's sampling state.
type genComponent struct {
	name     string
	tmpl     shape.Template
	params   []float64
	yield    float64
	direct   sampler
	envelope float64
}

// Generator draws pseudo-experiments from a composite model.
//
// Description:
//
//	Each Draw samples a Poisson-fluctuated event count per component and
//	then draws that many observable values from the component's density
//	restricted to the window. Templates that provide their own sampler
//	are drawn directly; everything else goes through accept-reject under
//	a scanned envelope.
//
// Thread Safety: Immutable after construction. Concurrent Draws are safe
// as long as each call uses its own rand source.
type Generator struct {
	model  *fit.Model
	window sample.Range
	comps  []genComponent
}

// NewGenerator validates the model's templates on the window and prepares
// the per-component sampling strategy.
//
// Inputs:
//   - model: The generation truth; component yields are the Poisson means.
//   - window: The observable range; all drawn values fall inside it.
//
// Outputs:
//   - *Generator: Ready to draw.
//   - error: Non-nil wrapping fit.ErrInvalidParameter, fit.ErrInvalidRange,
//     or fit.ErrInvalidTemplate.
func NewGenerator(model *fit.Model, window sample.Range) (*Generator, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is nil", fit.ErrInvalidParameter)
	}
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", fit.ErrInvalidRange, err)
	}

	g := &Generator{model: model, window: window}
	for _, c := range model.Components() {
		gc := genComponent{
			name:   c.Name,
			tmpl:   c.Shape,
			params: initialValues(c),
			yield:  c.Yield,
		}
		if d, ok := c.Shape.(sampler); ok {
			gc.direct = d
		}

		env, err := scanEnvelope(c.Name, c.Shape, window, gc.params)
		if err != nil {
			return nil, err
		}
		gc.envelope = env

		g.comps = append(g.comps, gc)
	}
	return g, nil
}

// initialValues resolves a component's effective shape parameter values.
func initialValues(c fit.Component) []float64 {
	declared := c.Shape.Params()
	vs := make([]float64, len(declared))
	for i, p := range declared {
		vs[i] = p.Value
	}
	if c.Params != nil {
		copy(vs, c.Params)
	}
	return vs
}

// scanEnvelope bounds the density over the window and rejects templates
// that are negative, non-finite, or massless there.
func scanEnvelope(name string, tmpl shape.Template, window sample.Range, params []float64) (float64, error) {
	step := window.Width() / float64(envelopeGrid-1)
	maxD := 0.0
	for i := 0; i < envelopeGrid; i++ {
		x := window.Lo + float64(i)*step
		d := tmpl.Density(x, params)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, fmt.Errorf("%w: component %q density is not finite at x=%g", fit.ErrInvalidTemplate, name, x)
		}
		if d < 0 {
			return 0, fmt.Errorf("%w: component %q density is negative at x=%g", fit.ErrInvalidTemplate, name, x)
		}
		if d > maxD {
			maxD = d
		}
	}
	if maxD == 0 {
		return 0, fmt.Errorf("%w: component %q has no mass on %s", fit.ErrInvalidTemplate, name, window)
	}
	return maxD * envelopeMargin, nil
}

// Model returns the generation model.
func (g *Generator) Model() *fit.Model { return g.model }

// Window returns the observable range.
func (g *Generator) Window() sample.Range { return g.window }

// ExpectedEvents returns the summed component yields, the mean size of a
// drawn pseudo-experiment.
func (g *Generator) ExpectedEvents() float64 {
	total := 0.0
	for _, c := range g.comps {
		total += c.yield
	}
	return total
}

// Draw produces one pseudo-experiment.
//
// Inputs:
//   - rng: The random stream; a given stream state fully determines the
//     drawn sample.
//
// Outputs:
//   - *sample.Sample: The drawn observable values, in generation order.
//   - error: Non-nil when accept-reject sampling exhausts its attempt
//     budget, which indicates a template the envelope cannot cover.
func (g *Generator) Draw(rng *rand.Rand) (*sample.Sample, error) {
	var xs []float64
	for i := range g.comps {
		c := &g.comps[i]
		n := poissonCount(c.yield, rng)
		for k := 0; k < n; k++ {
			x, err := g.drawOne(c, rng)
			if err != nil {
				return nil, err
			}
			xs = append(xs, x)
		}
	}
	return sample.New(xs), nil
}

// drawOne draws a single in-window value from component c.
func (g *Generator) drawOne(c *genComponent, rng *rand.Rand) (float64, error) {
	if c.direct != nil {
		if x, ok := c.direct.SampleIn(g.window, c.params, rng); ok {
			return x, nil
		}
	}
	for i := 0; i < maxRejectAttempts; i++ {
		x := g.window.Lo + rng.Float64()*g.window.Width()
		if rng.Float64()*c.envelope <= c.tmpl.Density(x, c.params) {
			return x, nil
		}
	}
	return 0, fmt.Errorf("%w: component %q rejected %d candidates in a row",
		fit.ErrInvalidTemplate, c.name, maxRejectAttempts)
}

// poissonCount draws the fluctuated event count for one component.
func poissonCount(yield float64, rng *rand.Rand) int {
	if yield <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: yield, Src: rng}.Rand())
}
