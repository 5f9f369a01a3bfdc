// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

import (
	"github.com/cpmech/gosl/ode"

	"github.com/alvinsunyixiao/itp-websim/errs"
	"github.com/alvinsunyixiao/itp-websim/flux"
	"github.com/alvinsunyixiao/itp-websim/spatial"
)

// Recompute re-evaluates SpatialProperties from the species table and the
// trial concentration state at a given cH, for use inside AdvanceStrict's
// per-stage callback. A driver supplies its own Recompute closure, since
// that requires running Equilibrate first (rk has no species/equi
// dependency by design, matching FluxKernel and SpatialProperties'
// layering in spec.md §3).
type Recompute func(C [][]float64, fld *spatial.Fields) error

// AdvanceStrict integrates one step with gosl/ode's Dopri5 implementation,
// recomputing the frozen fields at every stage via recompute instead of
// holding them fixed for the whole step — the stricter alternative to
// Advance's frozen-coefficients contract (spec.md §4.5 Open Questions).
// It follows the same sol.Init/sol.Solve call shape as
// ana/colpresfluid.go's ODE integration.
func AdvanceStrict(fld *spatial.Fields, C [][]float64, current, dx, dt, tol float64, recompute Recompute, ws *flux.Workspace) (cNew [][]float64, err error) {
	s := len(C)
	n := 0
	if s > 0 {
		n = len(C[0])
	}
	ndim := s * n

	y0 := make([]float64, ndim)
	flatten(C, y0)

	trial := allocGrid(s, n)
	deriv := allocGrid(s, n)

	fcn := func(f []float64, dT, T float64, y []float64, args ...interface{}) error {
		unflatten(y, trial)
		if err := recompute(trial, fld); err != nil {
			return err
		}
		flux.RHS(trial, fld, current, dx, ws, deriv)
		flatten(deriv, f)
		return nil
	}

	var sol ode.ODE
	silent := true
	sol.Init("Dopri5", ndim, fcn, nil, nil, nil, silent)
	sol.Distr = false

	if errSolve := sol.Solve(y0, 0, dt, dt, false); errSolve != nil {
		return nil, errs.New(errs.StepTooSmall, "strict ODE solve failed at dt=%g: %v", dt, errSolve)
	}

	cNew = allocGrid(s, n)
	unflatten(y0, cNew)
	return cNew, nil
}

func flatten(grid [][]float64, out []float64) {
	i := 0
	for _, row := range grid {
		for _, v := range row {
			out[i] = v
			i++
		}
	}
}

func unflatten(flat []float64, grid [][]float64) {
	i := 0
	for _, row := range grid {
		for k := range row {
			row[k] = flat[i]
			i++
		}
	}
}
