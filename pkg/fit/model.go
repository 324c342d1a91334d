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

	"github.com/openhep/sigfit/pkg/shape"
	"github.com/openhep/sigfit/pkg/validation"
)

// YieldParam is the parameter name addressing a component's yield, as in
// "signal.yield". Shape templates may not declare a parameter with this
// name.
const YieldParam = "yield"

// Component is one named part of a composite model: a shape template, an
// initial yield guess, and optional overrides for the template's initial
// parameter values.
type Component struct {
	// Name identifies the component, e.g. "signal". It becomes the
	// prefix of every parameter address of this component.
	Name string

	// Shape is the component's density template.
	Shape shape.Template

	// Yield is the initial guess for the expected event count. Must be
	// finite and non-negative.
	Yield float64

	// Params optionally overrides the template's declared initial
	// values. When nil the declared values are used; otherwise the
	// length must match the template's parameter count.
	Params []float64
}

// Model is an ordered collection of named components.
//
// Description:
//
//	Components keep their insertion order, and that order defines the
//	parameter vector layout, so a model produces identical fits across
//	runs. A Model is immutable after construction and safe to share
//	between concurrent fits.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Model struct {
	comps []Component
}

// NewModel creates a Model after validating its components.
//
// Inputs:
//   - components: At least one component. Names must be valid
//     identifiers (letters, digits, underscores) and unique; yields must
//     be finite and non-negative; parameter overrides, when present,
//     must match the template's parameter count and be finite.
//
// Outputs:
//   - *Model: The validated model.
//   - error: Non-nil wrapping ErrInvalidParameter on any violation.
func NewModel(components ...Component) (*Model, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: model needs at least one component", ErrInvalidParameter)
	}

	comps := make([]Component, 0, len(components))
	seen := make(map[string]bool, len(components))
	for _, c := range components {
		if err := validation.ValidateName(c.Name); err != nil {
			return nil, fmt.Errorf("%w: component name: %v", ErrInvalidParameter, err)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate component name %q", ErrInvalidParameter, c.Name)
		}
		seen[c.Name] = true

		if c.Shape == nil {
			return nil, fmt.Errorf("%w: component %q has no shape", ErrInvalidParameter, c.Name)
		}
		if math.IsNaN(c.Yield) || math.IsInf(c.Yield, 0) {
			return nil, fmt.Errorf("%w: component %q initial yield must be finite, got %v", ErrInvalidParameter, c.Name, c.Yield)
		}
		if c.Yield < 0 {
			return nil, fmt.Errorf("%w: component %q initial yield must be >= 0, got %v", ErrInvalidParameter, c.Name, c.Yield)
		}

		declared := c.Shape.Params()
		for _, p := range declared {
			if err := validation.ValidateName(p.Name); err != nil {
				return nil, fmt.Errorf("%w: component %q shape parameter name: %v", ErrInvalidParameter, c.Name, err)
			}
			if p.Name == YieldParam {
				return nil, fmt.Errorf("%w: component %q shape declares reserved parameter name %q", ErrInvalidParameter, c.Name, YieldParam)
			}
		}
		if c.Params != nil && len(c.Params) != len(declared) {
			return nil, fmt.Errorf("%w: component %q has %d parameter overrides for %d declared parameters",
				ErrInvalidParameter, c.Name, len(c.Params), len(declared))
		}
		for i, v := range c.Params {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: component %q parameter %q must be finite, got %v",
					ErrInvalidParameter, c.Name, declared[i].Name, v)
			}
		}

		stored := c
		if c.Params != nil {
			stored.Params = make([]float64, len(c.Params))
			copy(stored.Params, c.Params)
		}
		comps = append(comps, stored)
	}

	return &Model{comps: comps}, nil
}

// Components returns a copy of the components in model order.
func (m *Model) Components() []Component {
	comps := make([]Component, len(m.comps))
	copy(comps, m.comps)
	for i := range comps {
		if comps[i].Params != nil {
			ps := make([]float64, len(comps[i].Params))
			copy(ps, comps[i].Params)
			comps[i].Params = ps
		}
	}
	return comps
}

// NumComponents returns the number of components.
func (m *Model) NumComponents() int {
	return len(m.comps)
}

// Component returns the named component and whether it exists.
func (m *Model) Component(name string) (Component, bool) {
	for _, c := range m.comps {
		if c.Name == name {
			if c.Params != nil {
				ps := make([]float64, len(c.Params))
				copy(ps, c.Params)
				c.Params = ps
			}
			return c, true
		}
	}
	return Component{}, false
}

// initialParams returns the effective initial shape parameter values of c.
func initialParams(c Component) []float64 {
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

// -----------------------------------------------------------------------------
// Parameter Layout
// -----------------------------------------------------------------------------

// layout flattens a model into one parameter vector: for each component in
// model order, first the yield, then the shape parameters in declared
// order. Fixing a parameter removes it from the free subvector the
// minimizer sees while it keeps its slot in the full vector.
type layout struct {
	names   []string
	init    []float64
	isFree  []bool
	freeIdx []int
	nameIdx map[string]int
	comps   []layoutComponent
}

// layoutComponent locates one component's parameters in the full vector.
type layoutComponent struct {
	name     string
	tmpl     shape.Template
	yieldIdx int
	paramIdx []int
}

// newLayout builds the parameter layout and resolves the fixed set.
func newLayout(m *Model, fixed []string) (*layout, error) {
	lay := &layout{nameIdx: make(map[string]int)}

	for _, c := range m.comps {
		lc := layoutComponent{name: c.Name, tmpl: c.Shape}

		lc.yieldIdx = lay.addParam(c.Name+"."+YieldParam, c.Yield)

		declared := c.Shape.Params()
		values := initialParams(c)
		lc.paramIdx = make([]int, len(declared))
		for i, p := range declared {
			lc.paramIdx[i] = lay.addParam(c.Name+"."+p.Name, values[i])
		}

		lay.comps = append(lay.comps, lc)
	}

	lay.isFree = make([]bool, len(lay.names))
	for i := range lay.isFree {
		lay.isFree[i] = true
	}
	for _, addr := range fixed {
		if _, _, err := validation.SplitAddress(addr); err != nil {
			return nil, fmt.Errorf("%w: fixed parameter: %v", ErrInvalidParameter, err)
		}
		idx, ok := lay.nameIdx[addr]
		if !ok {
			return nil, fmt.Errorf("%w: unknown fixed parameter %q", ErrInvalidParameter, addr)
		}
		lay.isFree[idx] = false
	}

	for i, free := range lay.isFree {
		if free {
			lay.freeIdx = append(lay.freeIdx, i)
		}
	}
	if len(lay.freeIdx) == 0 {
		return nil, fmt.Errorf("%w: all parameters are fixed, nothing to fit", ErrInvalidParameter)
	}

	return lay, nil
}

// addParam appends one named parameter slot and returns its index.
func (l *layout) addParam(name string, value float64) int {
	idx := len(l.names)
	l.names = append(l.names, name)
	l.init = append(l.init, value)
	l.nameIdx[name] = idx
	return idx
}

// numParams returns the full parameter count.
func (l *layout) numParams() int {
	return len(l.names)
}

// freeInit returns the initial values of the free parameters.
func (l *layout) freeInit() []float64 {
	vs := make([]float64, len(l.freeIdx))
	for i, idx := range l.freeIdx {
		vs[i] = l.init[idx]
	}
	return vs
}

// fullVector scatters free values into a full vector over the initial
// values of fixed parameters.
func (l *layout) fullVector(free []float64) []float64 {
	full := make([]float64, len(l.init))
	copy(full, l.init)
	for i, idx := range l.freeIdx {
		full[idx] = free[i]
	}
	return full
}

// componentParams gathers the shape parameter values of component c from
// the full vector.
func (l *layout) componentParams(c layoutComponent, full []float64) []float64 {
	ps := make([]float64, len(c.paramIdx))
	for i, idx := range c.paramIdx {
		ps[i] = full[idx]
	}
	return ps
}
