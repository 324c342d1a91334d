// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shape

import (
	"fmt"
	"math"

	"github.com/openhep/sigfit/pkg/sample"
)

// HistogramTemplate is a step density taken from a binned control sample,
// e.g. a simulated component whose shape has no analytic form.
//
// The density inside bin i is count_i / binwidth and zero outside the
// histogram window. The template has no parameters; its shape is frozen
// at construction.
type HistogramTemplate struct {
	hist *sample.Histogram
}

// NewHistogramTemplate creates a template from a histogram.
//
// The histogram must contain at least one non-empty bin, otherwise no
// normalization exists.
func NewHistogramTemplate(h *sample.Histogram) (*HistogramTemplate, error) {
	if h == nil {
		return nil, fmt.Errorf("histogram template needs a histogram")
	}
	if h.Total() <= 0 {
		return nil, fmt.Errorf("histogram template needs at least one non-empty bin")
	}
	return &HistogramTemplate{hist: h}, nil
}

// Kind returns "histogram".
func (h *HistogramTemplate) Kind() string { return "histogram" }

// Params returns nil: the shape has no parameters.
func (h *HistogramTemplate) Params() []Param { return nil }

// Density returns count/binwidth for the bin containing x, zero outside
// the histogram window.
func (h *HistogramTemplate) Density(x float64, p []float64) float64 {
	idx := h.hist.Binning().IndexOf(x)
	if idx < 0 {
		return 0
	}
	return h.hist.Count(idx) / h.hist.Binning().BinWidth()
}

// Integral returns the exact integral of the step density over [lo, hi],
// accounting for bins partially covered by the bounds.
func (h *HistogramTemplate) Integral(lo, hi float64, p []float64) float64 {
	binning := h.hist.Binning()
	edges := binning.Edges()
	width := binning.BinWidth()

	total := 0.0
	for i := 0; i < binning.Bins; i++ {
		overlap := math.Min(hi, edges[i+1]) - math.Max(lo, edges[i])
		if overlap > 0 {
			total += h.hist.Count(i) * overlap / width
		}
	}
	return total
}

var (
	_ Template   = (*HistogramTemplate)(nil)
	_ Integrable = (*HistogramTemplate)(nil)
)
