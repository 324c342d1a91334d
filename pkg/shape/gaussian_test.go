// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shape

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhep/sigfit/pkg/sample"
)

// trapezoid numerically integrates f over [lo, hi] for cross-checks
// against closed-form integrals.
func trapezoid(f func(float64) float64, lo, hi float64, n int) float64 {
	h := (hi - lo) / float64(n)
	total := 0.5 * (f(lo) + f(hi))
	for i := 1; i < n; i++ {
		total += f(lo + float64(i)*h)
	}
	return total * h
}

func paramValues(t Template) []float64 {
	ps := t.Params()
	vs := make([]float64, len(ps))
	for i, p := range ps {
		vs[i] = p.Value
	}
	return vs
}

// TestGaussian_Density verifies the peak value and symmetry.
func TestGaussian_Density(t *testing.T) {
	g := NewGaussian(5.28, 0.03)
	p := paramValues(g)

	assert.Equal(t, 1.0, g.Density(5.28, p), "un-normalized peak value is 1")
	assert.InDelta(t, g.Density(5.25, p), g.Density(5.31, p), 1e-15, "density is symmetric about the mean")
	assert.Less(t, g.Density(5.4, p), 1e-3, "four sigma out the density is tiny")
}

// TestGaussian_Integral verifies the erf closed form against numerics.
func TestGaussian_Integral(t *testing.T) {
	g := NewGaussian(5.28, 0.03)
	p := paramValues(g)

	t.Run("full mass", func(t *testing.T) {
		got := g.Integral(5.28-8*0.03, 5.28+8*0.03, p)
		want := 0.03 * math.Sqrt(2*math.Pi)
		assert.InDelta(t, want, got, 1e-12)
	})

	t.Run("partial window", func(t *testing.T) {
		got := g.Integral(5.2, 5.3, p)
		want := trapezoid(func(x float64) float64 { return g.Density(x, p) }, 5.2, 5.3, 20000)
		assert.InDelta(t, want, got, 1e-8)
	})

	t.Run("negative sigma matches positive", func(t *testing.T) {
		neg := []float64{5.28, -0.03}
		assert.InDelta(t, g.Integral(5.2, 5.4, p), g.Integral(5.2, 5.4, neg), 1e-15)
	})

	t.Run("zero sigma", func(t *testing.T) {
		assert.Equal(t, 0.0, g.Integral(5.2, 5.4, []float64{5.28, 0}))
		assert.Equal(t, 0.0, g.Density(5.28, []float64{5.28, 0}))
	})
}

// TestGaussian_SampleIn verifies truncated draws land in the window.
func TestGaussian_SampleIn(t *testing.T) {
	g := NewGaussian(5.28, 0.03)
	p := paramValues(g)
	r, err := sample.NewRange(5.2, 5.4)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		x, ok := g.SampleIn(r, p, rng)
		require.True(t, ok)
		assert.True(t, r.Contains(x))
	}

	// A window far out in the tail should report failure, not spin.
	far, err := sample.NewRange(50, 51)
	require.NoError(t, err)
	_, ok := g.SampleIn(far, p, rng)
	assert.False(t, ok)
}

// TestExponential_Integral verifies the expm1 closed form.
func TestExponential_Integral(t *testing.T) {
	e := NewExponential(-2.0)
	p := paramValues(e)

	t.Run("falling slope", func(t *testing.T) {
		got := e.Integral(5.2, 5.4, p)
		want := (math.Exp(-2.0*5.4) - math.Exp(-2.0*5.2)) / -2.0
		assert.InDelta(t, want, got, 1e-12)
	})

	t.Run("zero slope is flat", func(t *testing.T) {
		got := e.Integral(5.2, 5.4, []float64{0})
		assert.InDelta(t, 0.2, got, 1e-15)
	})

	t.Run("tiny slope stays accurate", func(t *testing.T) {
		got := e.Integral(0, 1, []float64{1e-9})
		assert.InDelta(t, 1.0, got, 1e-9)
	})
}

// TestExponential_SampleIn verifies CDF inversion stays inside the window
// and reproduces the falling spectrum.
func TestExponential_SampleIn(t *testing.T) {
	e := NewExponential(-2.0)
	p := paramValues(e)
	r, err := sample.NewRange(5.2, 5.4)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(3, 5))
	nLow := 0
	const n = 4000
	for i := 0; i < n; i++ {
		x, ok := e.SampleIn(r, p, rng)
		require.True(t, ok)
		require.True(t, r.Contains(x))
		if x < r.Mid() {
			nLow++
		}
	}

	// P(x < mid) for slope -2 on [5.2, 5.4] is about 0.55.
	frac := float64(nLow) / float64(n)
	assert.InDelta(t, 0.55, frac, 0.03)
}
