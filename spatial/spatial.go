// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spatial implements SpatialProperties: the per-grid-point
// assembly of effective mobility, effective diffusivity, ionic
// conductivity and the pseudo-potential auxiliary field from the
// equilibrium solution (spec.md §4.2).
package spatial

import (
	"gonum.org/v1/gonum/floats"

	"github.com/alvinsunyixiao/itp-websim/errs"
	"github.com/alvinsunyixiao/itp-websim/equi"
	"github.com/alvinsunyixiao/itp-websim/species"
)

// physical constants (spec.md §4.2)
const (
	Faraday    = 96500.0 // F, C/mol
	GasConst   = 8.314   // R, J/(mol K)
	Temp       = 298.0   // T, K
	MobilityH  = 362e-9  // uH
	MobilityOH = 205e-9  // uOH
)

// unit converts mol·m⁻³ ↔ mol·L⁻¹ in the σ/s_aux formulas: 10³.
const unit = 1e3

// Fields holds the per-step derived arrays consumed by FluxKernel and
// RKStepper. Allocate once with NewFields and reuse across steps
// (spec.md §5).
type Fields struct {
	UEff  [][]float64 // [S][N] effective mobility
	DEff  [][]float64 // [S][N] effective diffusivity
	Sigma []float64   // [N] ionic conductivity
	SAux  []float64   // [N] pseudo-potential auxiliary field

	zu [][]float64 // [S][W] z·u, precomputed once since the table is read-only
	zd [][]float64 // [S][W] z·d
}

// NewFields allocates a Fields for S species on N grid points and
// precomputes the mobility-charge and diffusivity-charge products that
// stay constant for the lifetime of the run (tbl is read-only, spec.md
// §3 Lifecycle).
func NewFields(tbl *species.Table, n int) *Fields {
	s := tbl.S
	f := &Fields{
		UEff:  make([][]float64, s),
		DEff:  make([][]float64, s),
		Sigma: make([]float64, n),
		SAux:  make([]float64, n),
		zu:    make([][]float64, s),
		zd:    make([][]float64, s),
	}
	for i := 0; i < s; i++ {
		f.UEff[i] = make([]float64, n)
		f.DEff[i] = make([]float64, n)
		f.zu[i] = make([]float64, tbl.W)
		f.zd[i] = make([]float64, tbl.W)
		for k := 0; k < tbl.W; k++ {
			f.zu[i][k] = tbl.Z[i][k] * tbl.U[i][k]
			f.zd[i][k] = tbl.Z[i][k] * tbl.D[i][k]
		}
	}
	return f
}

// Compute assembles u_eff, d_eff, σ and s_aux into out, in place. G is
// the degree-of-ionization tensor produced by equi.Equilibrate. Compute
// fails with errs.NonPositiveConductivity if σ is not strictly positive
// at some grid point, which spec.md §3 treats as a corrupt-state
// invariant violation.
func Compute(tbl *species.Table, cH []float64, C [][]float64, G [][][]float64, out *Fields) error {
	n := len(cH)
	for i := 0; i < n; i++ {
		out.Sigma[i] = unit * Faraday * (MobilityH*cH[i] + MobilityOH*equi.Kw/cH[i])
		out.SAux[i] = unit * GasConst * Temp * (MobilityH*cH[i] - MobilityOH*equi.Kw/cH[i])
	}
	for sp := 0; sp < tbl.S; sp++ {
		Us, Ds := tbl.U[sp], tbl.D[sp]
		for i := 0; i < n; i++ {
			g := G[sp][i]
			out.UEff[sp][i] = floats.Dot(g, Us)
			out.DEff[sp][i] = floats.Dot(g, Ds)
			alpha := Faraday * floats.Dot(g, out.zu[sp])
			beta := Faraday * floats.Dot(g, out.zd[sp])
			out.Sigma[i] += alpha * C[sp][i]
			out.SAux[i] += beta * C[sp][i]
		}
	}
	for i := 0; i < n; i++ {
		if out.Sigma[i] <= 0 {
			return errs.New(errs.NonPositiveConductivity, "σ[%d] = %g is not positive", i, out.Sigma[i])
		}
	}
	return nil
}

// MaxSigma returns the largest conductivity value across the grid, a
// diagnostic a driver can log each step to watch for the kind of spike
// that precedes a NonPositiveConductivity failure.
func MaxSigma(out *Fields) float64 {
	return floats.Max(out.Sigma)
}
