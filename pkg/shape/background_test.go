// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhep/sigfit/pkg/sample"
)

// TestArgus_Density verifies the endpoint behavior.
func TestArgus_Density(t *testing.T) {
	a := NewArgus(5.29, -10.0)
	p := paramValues(a)

	assert.Equal(t, 0.0, a.Density(5.29, p), "density vanishes at the endpoint")
	assert.Equal(t, 0.0, a.Density(5.35, p), "density vanishes above the endpoint")
	assert.Greater(t, a.Density(5.25, p), 0.0, "density is positive below the endpoint")
	assert.Equal(t, 0.0, a.Density(-1, p), "density vanishes for non-physical masses")
	assert.Equal(t, 0.0, a.Density(5.0, []float64{-1, -10}), "non-positive endpoint yields no density")

	got := trapezoid(func(x float64) float64 { return a.Density(x, p) }, 5.2, 5.29, 20000)
	assert.Greater(t, got, 0.0)
}

// TestCrystalBall_Continuity verifies the core and tail join smoothly.
func TestCrystalBall_Continuity(t *testing.T) {
	c := NewCrystalBall(5.28, 0.03, 1.5, 4.0)
	p := paramValues(c)

	join := 5.28 - 1.5*0.03
	const eps = 1e-9
	above := c.Density(join+eps, p)
	below := c.Density(join-eps, p)
	assert.InDelta(t, above, below, 1e-6, "density is continuous at the transition")

	assert.Equal(t, 1.0, c.Density(5.28, p), "un-normalized peak value is 1")

	// The power-law tail falls slower than the Gaussian would.
	farOut := 5.28 - 6*0.03
	gauss := math.Exp(-0.5 * 36)
	assert.Greater(t, c.Density(farOut, p), gauss)
}

// TestCrystalBall_DegenerateParams verifies invalid regions yield zero.
func TestCrystalBall_DegenerateParams(t *testing.T) {
	c := NewCrystalBall(5.28, 0.03, 1.5, 4.0)

	assert.Equal(t, 0.0, c.Density(5.28, []float64{5.28, 0, 1.5, 4}))
	assert.Equal(t, 0.0, c.Density(5.28, []float64{5.28, 0.03, 0, 4}))
	assert.Equal(t, 0.0, c.Density(5.28, []float64{5.28, 0.03, 1.5, -1}))
}

// TestChebyshev_Integral verifies the closed form against numerics.
func TestChebyshev_Integral(t *testing.T) {
	domain, err := sample.NewRange(0, 1)
	require.NoError(t, err)

	c, err := NewChebyshev(domain, 0.1, -0.3, 0.05)
	require.NoError(t, err)
	p := paramValues(c)

	t.Run("full domain", func(t *testing.T) {
		got := c.Integral(0, 1, p)
		want := trapezoid(func(x float64) float64 { return c.Density(x, p) }, 0, 1, 40000)
		assert.InDelta(t, want, got, 1e-8)
	})

	t.Run("partial window", func(t *testing.T) {
		got := c.Integral(0.2, 0.7, p)
		want := trapezoid(func(x float64) float64 { return c.Density(x, p) }, 0.2, 0.7, 40000)
		assert.InDelta(t, want, got, 1e-8)
	})
}

// TestChebyshev_Density verifies known polynomial values on the mapped axis.
func TestChebyshev_Density(t *testing.T) {
	domain, err := sample.NewRange(-1, 1)
	require.NoError(t, err)

	// Density = 1 + 0.5*T1 + 0.25*T2 on u = x.
	c, err := NewChebyshev(domain, 0.5, 0.25)
	require.NoError(t, err)
	p := paramValues(c)

	assert.InDelta(t, 1.75, c.Density(1, p), 1e-12, "u=1: 1 + 0.5 + 0.25")
	assert.InDelta(t, 0.75, c.Density(-1, p), 1e-12, "u=-1: 1 - 0.5 + 0.25")
	assert.InDelta(t, 0.75, c.Density(0, p), 1e-12, "u=0: 1 + 0 - 0.25")
}

// TestChebyshev_Construction verifies rejection of malformed templates.
func TestChebyshev_Construction(t *testing.T) {
	domain, err := sample.NewRange(0, 1)
	require.NoError(t, err)

	_, err = NewChebyshev(domain)
	assert.Error(t, err, "coefficient-free template")

	_, err = NewChebyshev(sample.Range{Lo: 1, Hi: 0}, 0.1)
	assert.Error(t, err, "invalid domain")
}

// TestUniform verifies the trivial template.
func TestUniform(t *testing.T) {
	u := NewUniform()
	assert.Empty(t, u.Params())
	assert.Equal(t, 1.0, u.Density(123.0, nil))
	assert.InDelta(t, 0.2, u.Integral(5.2, 5.4, nil), 1e-15)
}

// TestHistogramTemplate verifies step density and partial-bin integrals.
func TestHistogramTemplate(t *testing.T) {
	window, err := sample.NewRange(0, 2)
	require.NoError(t, err)
	binning, err := sample.NewBinning(4, window)
	require.NoError(t, err)
	hist, err := sample.NewHistogram(binning, []float64{1, 2, 1, 1})
	require.NoError(t, err)

	tmpl, err := NewHistogramTemplate(hist)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, tmpl.Density(0.1, nil), 1e-12, "count 1 over width 0.5")
	assert.InDelta(t, 4.0, tmpl.Density(0.6, nil), 1e-12, "count 2 over width 0.5")
	assert.Equal(t, 0.0, tmpl.Density(-0.1, nil))
	assert.Equal(t, 0.0, tmpl.Density(2.1, nil))

	assert.InDelta(t, 5.0, tmpl.Integral(0, 2, nil), 1e-12, "full window recovers the total")
	assert.InDelta(t, 1.5, tmpl.Integral(0.25, 0.75, nil), 1e-12, "half of bin 0 plus half of bin 1")

	empty, err := sample.NewHistogram(binning, []float64{0, 0, 0, 0})
	require.NoError(t, err)
	_, err = NewHistogramTemplate(empty)
	assert.Error(t, err, "all-empty histogram has no shape")
}
