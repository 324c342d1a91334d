// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sample

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Binning describes a uniform division of a window into bins.
type Binning struct {
	// Bins is the number of equal-width bins. Must be >= 1.
	Bins int

	// Window is the covered observable window.
	Window Range
}

// NewBinning creates a Binning after validating it.
func NewBinning(bins int, window Range) (Binning, error) {
	b := Binning{Bins: bins, Window: window}
	if err := b.Validate(); err != nil {
		return Binning{}, err
	}
	return b, nil
}

// Validate checks the bin count and the window.
func (b Binning) Validate() error {
	if b.Bins < 1 {
		return fmt.Errorf("binning must have at least 1 bin, got %d", b.Bins)
	}
	if err := b.Window.Validate(); err != nil {
		return fmt.Errorf("binning window: %w", err)
	}
	return nil
}

// BinWidth returns the width of one bin.
func (b Binning) BinWidth() float64 {
	return b.Window.Width() / float64(b.Bins)
}

// Edges returns the Bins+1 bin edges. The first and last edges are exactly
// the window bounds.
func (b Binning) Edges() []float64 {
	edges := make([]float64, b.Bins+1)
	w := b.BinWidth()
	for i := range edges {
		edges[i] = b.Window.Lo + w*float64(i)
	}
	edges[b.Bins] = b.Window.Hi
	return edges
}

// Centers returns the Bins bin centers.
func (b Binning) Centers() []float64 {
	centers := make([]float64, b.Bins)
	w := b.BinWidth()
	for i := range centers {
		centers[i] = b.Window.Lo + w*(float64(i)+0.5)
	}
	return centers
}

// IndexOf returns the bin index for x, or -1 when x is outside the window.
//
// Bins are half-open [edge_i, edge_i+1) except the last, which includes the
// upper window edge so that binning agrees with the inclusive Range.
func (b Binning) IndexOf(x float64) int {
	if !b.Window.Contains(x) {
		return -1
	}
	idx := int(math.Floor((x - b.Window.Lo) / b.BinWidth()))
	if idx >= b.Bins {
		idx = b.Bins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Histogram holds bin counts of one observable over a uniform Binning.
//
// Description:
//
//	Counts are float64 so that histograms may carry non-integer content,
//	for example weighted control samples used as shape templates. Counts
//	are validated to be finite and non-negative at construction.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Histogram struct {
	binning Binning
	counts  []float64
}

// NewHistogram creates a Histogram from explicit bin contents.
//
// Inputs:
//   - binning: The binning. Must validate.
//   - counts: One entry per bin, each finite and >= 0. Copied.
//
// Outputs:
//   - *Histogram: The new histogram.
//   - error: Non-nil if the binning is invalid, the lengths disagree, or
//     any count is negative or non-finite.
func NewHistogram(binning Binning, counts []float64) (*Histogram, error) {
	if err := binning.Validate(); err != nil {
		return nil, err
	}
	if len(counts) != binning.Bins {
		return nil, fmt.Errorf("histogram has %d counts for %d bins", len(counts), binning.Bins)
	}
	cs := make([]float64, len(counts))
	for i, c := range counts {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("bin %d count must be finite, got %v", i, c)
		}
		if c < 0 {
			return nil, fmt.Errorf("bin %d count must be >= 0, got %v", i, c)
		}
		cs[i] = c
	}
	return &Histogram{binning: binning, counts: cs}, nil
}

// Histogram fills a histogram with the sample's measurements.
//
// Measurements outside the binning window are skipped; each in-window
// measurement adds 1 to its bin.
func (s *Sample) Histogram(binning Binning) (*Histogram, error) {
	if err := binning.Validate(); err != nil {
		return nil, err
	}
	counts := make([]float64, binning.Bins)
	for _, x := range s.values {
		if idx := binning.IndexOf(x); idx >= 0 {
			counts[idx]++
		}
	}
	return &Histogram{binning: binning, counts: counts}, nil
}

// Binning returns the histogram's binning.
func (h *Histogram) Binning() Binning {
	return h.binning
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int {
	return len(h.counts)
}

// Count returns the content of bin i.
func (h *Histogram) Count(i int) float64 {
	return h.counts[i]
}

// Counts returns a copy of all bin contents.
func (h *Histogram) Counts() []float64 {
	cs := make([]float64, len(h.counts))
	copy(cs, h.counts)
	return cs
}

// Total returns the summed content of all bins.
func (h *Histogram) Total() float64 {
	return floats.Sum(h.counts)
}
