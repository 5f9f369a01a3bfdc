// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flux implements FluxKernel: the SLIP (symmetric limited
// positive) advective/electro-diffusive flux scheme with van-Leer-style
// limiting that evaluates the spatial right-hand side ∂C/∂t on the
// uniform grid (spec.md §4.3). It has no upstream dependencies beyond
// the species table and the fields SpatialProperties assembled.
package flux

import (
	"math"

	"github.com/alvinsunyixiao/itp-websim/spatial"
)

// limiterQ is the van-Leer exponent q = 2 from spec.md §4.3.
const limiterQ = 2.0

// DivideNoNaN implements the spec's 0/0 := 0 policy, shared by the
// limiter and by FluxKernel's own guarded divisions.
func DivideNoNaN(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Limiter computes L(x, y) = 0.5·(1 − |(x−y)/(|x|+|y|)|^q)·(x + y), with
// L(0, 0) = 0. It satisfies |L(x,y)| ≤ max(|x|,|y|) and L(x,y) = 0 when
// sign(x) ≠ sign(y) (spec.md §8).
func Limiter(x, y float64) float64 {
	r := DivideNoNaN(x-y, math.Abs(x)+math.Abs(y))
	return 0.5 * (1 - math.Pow(math.Abs(r), limiterQ)) * (x + y)
}

// Workspace holds the per-step interface scratch reused across RK
// stages and grid steps (spec.md §5): one interface array per species
// plus the shared max-wave-speed array.
type Workspace struct {
	dC    [][]float64 // [S][N+1] padded cell differences, dC[i] == ΔC[m=i-1]
	face  [][]float64 // [S][N-1] interface flux F[s,m]
	vmax  []float64   // [N-1] max wave speed per interface
	phi   [][]float64 // [S][N] scaled electromigration factor
	phi0  [][]float64 // [S][N] unscaled electromigration factor
}

// NewWorkspace allocates a Workspace for S species on N grid points.
func NewWorkspace(s, n int) *Workspace {
	w := &Workspace{
		dC:   make([][]float64, s),
		face: make([][]float64, s),
		vmax: make([]float64, maxInt(n-1, 0)),
		phi:  make([][]float64, s),
		phi0: make([][]float64, s),
	}
	for i := 0; i < s; i++ {
		w.dC[i] = make([]float64, n+1)
		w.face[i] = make([]float64, maxInt(n-1, 0))
		w.phi[i] = make([]float64, n)
		w.phi0[i] = make([]float64, n)
	}
	return w
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// RHS evaluates ∂C/∂t into out[S][N] given the frozen coefficients in
// fld, the applied current and grid spacing dx (spec.md §4.3). N must be
// at least 3. C, out and ws must share the same S, N shape as ws.
func RHS(C [][]float64, fld *spatial.Fields, current, dx float64, ws *Workspace, out [][]float64) {
	s := len(C)
	if s == 0 {
		return
	}
	n := len(C[0])

	// electromigration factors and padded cell differences
	for sp := 0; sp < s; sp++ {
		for i := 0; i < n; i++ {
			base := DivideNoNaN(fld.UEff[sp][i]*C[sp][i], fld.Sigma[i])
			ws.phi0[sp][i] = base
			ws.phi[sp][i] = current * base
		}
		ws.dC[sp][0] = 0
		for m := 0; m < n-1; m++ {
			ws.dC[sp][m+1] = C[sp][m+1] - C[sp][m]
		}
		ws.dC[sp][n] = 0
	}

	// max wave speed per interface, reduced over species
	for m := 0; m < n-1; m++ {
		v := 0.0
		for sp := 0; sp < s; sp++ {
			cand := math.Abs(0.5 * current * (fld.UEff[sp][m+1]/fld.Sigma[m+1] + fld.UEff[sp][m]/fld.Sigma[m]))
			if cand > v {
				v = cand
			}
		}
		ws.vmax[m] = v
	}

	// interface fluxes
	for sp := 0; sp < s; sp++ {
		dC := ws.dC[sp]
		for m := 0; m < n-1; m++ {
			fAdv := 0.5 * (ws.phi[sp][m+1] + ws.phi[sp][m])
			fMol := (fld.DEff[sp][m+1]*C[sp][m+1] - fld.DEff[sp][m]*C[sp][m]) / dx
			fEd := 0.5 * (ws.phi0[sp][m+1] + ws.phi0[sp][m]) * (fld.SAux[m+1] - fld.SAux[m]) / dx
			fNum := 0.5 * ws.vmax[m] * (dC[m+1] - Limiter(dC[m+2], dC[m]))
			ws.face[sp][m] = fAdv + (fEd - fMol) - fNum
		}
	}

	// cell gradients, with Dirichlet-like advective boundary conditions
	for sp := 0; sp < s; sp++ {
		F := ws.face[sp]
		out[sp][0] = (ws.phi[sp][0] - F[0]) / dx
		for i := 1; i < n-1; i++ {
			out[sp][i] = -(F[i] - F[i-1]) / dx
		}
		out[sp][n-1] = (F[n-2] - ws.phi[sp][n-1]) / dx
	}
}
