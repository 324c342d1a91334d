// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, lo, hi float64) Range {
	t.Helper()
	r, err := NewRange(lo, hi)
	require.NoError(t, err)
	return r
}

// TestBinning_EdgesAndCenters verifies edge placement for a uniform binning.
func TestBinning_EdgesAndCenters(t *testing.T) {
	b, err := NewBinning(4, mustRange(t, 0, 2))
	require.NoError(t, err)

	assert.InDelta(t, 0.5, b.BinWidth(), 1e-12)

	edges := b.Edges()
	require.Len(t, edges, 5)
	assert.Equal(t, 0.0, edges[0])
	assert.Equal(t, 2.0, edges[4], "last edge is exactly the window bound")
	assert.InDelta(t, 1.0, edges[2], 1e-12)

	centers := b.Centers()
	require.Len(t, centers, 4)
	assert.InDelta(t, 0.25, centers[0], 1e-12)
	assert.InDelta(t, 1.75, centers[3], 1e-12)
}

// TestBinning_IndexOf verifies bin assignment including the edge rules.
func TestBinning_IndexOf(t *testing.T) {
	b, err := NewBinning(4, mustRange(t, 0, 2))
	require.NoError(t, err)

	assert.Equal(t, 0, b.IndexOf(0), "lower window edge falls in the first bin")
	assert.Equal(t, 1, b.IndexOf(0.5), "interior edges open the next bin")
	assert.Equal(t, 3, b.IndexOf(2), "upper window edge falls in the last bin")
	assert.Equal(t, -1, b.IndexOf(-0.1))
	assert.Equal(t, -1, b.IndexOf(2.1))
	assert.Equal(t, -1, b.IndexOf(math.NaN()))
}

// TestBinning_Invalid verifies rejection of malformed binnings.
func TestBinning_Invalid(t *testing.T) {
	_, err := NewBinning(0, mustRange(t, 0, 1))
	assert.Error(t, err)

	_, err = NewBinning(10, Range{Lo: 1, Hi: 0})
	assert.Error(t, err)
}

// TestSample_Histogram verifies filling from a sample.
func TestSample_Histogram(t *testing.T) {
	b, err := NewBinning(4, mustRange(t, 0, 2))
	require.NoError(t, err)

	s := New([]float64{-5, 0.1, 0.6, 0.7, 1.2, 2.0, 3.5, math.NaN()})
	h, err := s.Histogram(b)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 1, 1}, h.Counts())
	assert.Equal(t, 5.0, h.Total())
	assert.Equal(t, 4, h.Bins())
}

// TestNewHistogram_Validation verifies explicit-content construction.
func TestNewHistogram_Validation(t *testing.T) {
	b, err := NewBinning(3, mustRange(t, 0, 3))
	require.NoError(t, err)

	h, err := NewHistogram(b, []float64{1.5, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, 1.5, h.Count(0))
	assert.InDelta(t, 3.5, h.Total(), 1e-12)

	_, err = NewHistogram(b, []float64{1, 2})
	assert.Error(t, err, "length mismatch")

	_, err = NewHistogram(b, []float64{1, -2, 3})
	assert.Error(t, err, "negative content")

	_, err = NewHistogram(b, []float64{1, math.NaN(), 3})
	assert.Error(t, err, "non-finite content")

	counts := h.Counts()
	counts[0] = 99
	assert.Equal(t, 1.5, h.Count(0), "Counts returns a copy")
}
