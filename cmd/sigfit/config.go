// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openhep/sigfit/pkg/fit"
	"github.com/openhep/sigfit/pkg/sample"
	"github.com/openhep/sigfit/pkg/shape"
)

var validate = validator.New()

// windowSpec is the fit range block of a model file.
type windowSpec struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi" validate:"gtfield=Lo"`
}

// componentSpec is one component block of a model file.
//
// Parametric shapes take their initial values from the params map, keyed
// by the shape's parameter names. The chebyshev shape takes its
// coefficients from coeffs instead.
type componentSpec struct {
	Name   string             `yaml:"name" validate:"required"`
	Shape  string             `yaml:"shape" validate:"required,oneof=gaussian exponential crystalball argus chebyshev uniform"`
	Yield  float64            `yaml:"yield" validate:"gte=0"`
	Params map[string]float64 `yaml:"params"`
	Coeffs []float64          `yaml:"coeffs"`
}

// studySpec is the optional study block consumed by the toys command.
// Zero values defer to the study defaults.
type studySpec struct {
	Toys    int    `yaml:"toys" validate:"gte=0"`
	Seed    uint64 `yaml:"seed"`
	Workers int    `yaml:"workers" validate:"gte=0"`
}

// modelSpec is the full YAML schema shared by the fit and toys commands.
//
// Example:
//
//	window: {lo: 5.2, hi: 5.4}
//	components:
//	  - name: signal
//	    shape: gaussian
//	    yield: 900
//	    params: {mean: 5.28, sigma: 0.03}
//	  - name: background
//	    shape: exponential
//	    yield: 600
//	    params: {slope: -2.0}
//	fit:
//	  max_iterations: 500
//	  tolerance: 1e-9
//	study:
//	  toys: 500
//	  seed: 1
type modelSpec struct {
	Window     windowSpec      `yaml:"window"`
	Components []componentSpec `yaml:"components" validate:"required,min=1,dive"`
	Fit        *fit.Config     `yaml:"fit"`
	Study      *studySpec      `yaml:"study"`
}

// loadSpec reads and validates a model file.
func loadSpec(path string) (*modelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var spec modelSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse model file %s: %w", path, err)
	}
	if err := validate.Struct(&spec); err != nil {
		return nil, fmt.Errorf("invalid model file %s: %w", path, err)
	}
	return &spec, nil
}

// fitConfig returns the file's fit block merged over the defaults.
func (s *modelSpec) fitConfig() fit.Config {
	if s.Fit == nil {
		return fit.DefaultConfig()
	}
	cfg := *s.Fit
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = fit.DefaultConfig().MaxIterations
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = fit.DefaultConfig().Tolerance
	}
	return cfg
}

// buildModel turns a parsed model file into a window and a composite model.
func buildModel(spec *modelSpec) (*fit.Model, sample.Range, error) {
	window, err := sample.NewRange(spec.Window.Lo, spec.Window.Hi)
	if err != nil {
		return nil, sample.Range{}, fmt.Errorf("window: %w", err)
	}

	comps := make([]fit.Component, 0, len(spec.Components))
	for _, c := range spec.Components {
		tmpl, err := buildShape(c, window)
		if err != nil {
			return nil, sample.Range{}, err
		}
		comps = append(comps, fit.Component{Name: c.Name, Shape: tmpl, Yield: c.Yield})
	}

	model, err := fit.NewModel(comps...)
	if err != nil {
		return nil, sample.Range{}, err
	}
	return model, window, nil
}

// buildShape constructs one shape template from its component block.
func buildShape(c componentSpec, window sample.Range) (shape.Template, error) {
	switch c.Shape {
	case "gaussian":
		mean, err := param(c, "mean")
		if err != nil {
			return nil, err
		}
		sigma, err := param(c, "sigma")
		if err != nil {
			return nil, err
		}
		return shape.NewGaussian(mean, sigma), nil

	case "exponential":
		slope, err := param(c, "slope")
		if err != nil {
			return nil, err
		}
		return shape.NewExponential(slope), nil

	case "crystalball":
		vals := make([]float64, 4)
		for i, name := range []string{"mean", "sigma", "alpha", "n"} {
			v, err := param(c, name)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return shape.NewCrystalBall(vals[0], vals[1], vals[2], vals[3]), nil

	case "argus":
		m0, err := param(c, "m0")
		if err != nil {
			return nil, err
		}
		curvature, err := param(c, "c")
		if err != nil {
			return nil, err
		}
		return shape.NewArgus(m0, curvature), nil

	case "chebyshev":
		if len(c.Coeffs) == 0 {
			return nil, fmt.Errorf("component %q: chebyshev needs a coeffs list", c.Name)
		}
		return shape.NewChebyshev(window, c.Coeffs...)

	case "uniform":
		return shape.NewUniform(), nil
	}
	return nil, fmt.Errorf("component %q: unknown shape %q", c.Name, c.Shape)
}

// param fetches a required entry from a component's params map.
func param(c componentSpec, name string) (float64, error) {
	v, ok := c.Params[name]
	if !ok {
		return 0, fmt.Errorf("component %q: shape %q needs parameter %q", c.Name, c.Shape, name)
	}
	return v, nil
}

// readDataFile reads whitespace-separated observable values. Blank lines
// and lines starting with # are skipped.
func readDataFile(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var xs []float64
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("data file %s line %d: bad value %q", path, i+1, field)
			}
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("data file %s holds no values", path)
	}
	return xs, nil
}
