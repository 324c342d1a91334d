// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fit

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// covRidge is the relative diagonal ridge applied once when the Hessian
// fails to factorize; rounding can leave the curvature at a true minimum
// marginally indefinite.
const covRidge = 1e-9

// covariance estimates the free-parameter covariance as the inverse of
// the finite-difference Hessian of the scaled objective at the optimum,
// mapped back to parameter units.
//
// Outputs:
//   - *mat.SymDense: The covariance in parameter units, or nil.
//   - bool: False when the Hessian is not positive definite or not
//     finite; the fit result then carries no standard errors.
func covariance(m *minimization) (*mat.SymDense, bool) {
	n := len(m.zOpt)
	hz := mat.NewSymDense(n, nil)
	fd.Hessian(hz, m.scaledObj, m.zOpt, nil)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v := hz.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, false
			}
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(hz) {
		maxDiag := 0.0
		for i := 0; i < n; i++ {
			if d := math.Abs(hz.At(i, i)); d > maxDiag {
				maxDiag = d
			}
		}
		if maxDiag == 0 {
			return nil, false
		}
		ridged := mat.NewSymDense(n, nil)
		ridged.CopySym(hz)
		for i := 0; i < n; i++ {
			ridged.SetSym(i, i, hz.At(i, i)+covRidge*maxDiag)
		}
		if !chol.Factorize(ridged) {
			return nil, false
		}
	}

	var cz mat.SymDense
	if err := chol.InverseTo(&cz); err != nil {
		return nil, false
	}

	// Undo the optimizer scaling: cov_p[i][j] = cov_z[i][j] * s_i * s_j.
	cp := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cp.SetSym(i, j, cz.At(i, j)*m.scale[i]*m.scale[j])
		}
	}

	for i := 0; i < n; i++ {
		if d := cp.At(i, i); d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, false
		}
	}
	return cp, true
}
