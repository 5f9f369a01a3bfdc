// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package equi implements Equilibrate: the vectorized Newton
// solver that computes, at every grid point, the hydrogen-ion
// concentration balancing charge and mass across all species (spec.md
// §4.1).
package equi

import (
	"math"

	"github.com/cpmech/gosl/la"

	"github.com/alvinsunyixiao/itp-websim/errs"
	"github.com/alvinsunyixiao/itp-websim/species"
)

// Kw is the ion-product constant of water, in (mol/L)².
const Kw = 1e-14

// unit converts mol·m⁻³ (C's units) to mol·L⁻¹ (cH's units): 10³.
const unit = 1e3

// Options configures the Newton iteration.
type Options struct {
	FTol     float64 // ‖F‖₂ tolerance
	DeltaTol float64 // ‖Δ‖₂ tolerance
	RelTol   float64 // relative ‖Δ‖₂/max(cH) tolerance, used when Relative is set
	Relative bool    // use the relative stopping criterion (initial-pH mode)
	MaxIter  int     // iteration cap per mode
}

// DefaultOptions returns the tolerances from spec.md §4.1.
func DefaultOptions() Options {
	return Options{FTol: 1e-6, DeltaTol: 1e-9, RelTol: 1e-4, MaxIter: 50}
}

// workspace holds the scratch arrays reused across Newton iterations, so
// the iterations themselves do not allocate; Equilibrate allocates one
// workspace per call (spec.md §5).
type workspace struct {
	pw  []float64 // cH^0 .. cH^(W-1), reused across grid points
	F   []float64 // per grid point residual, for the global norm
	dlt []float64 // per grid point Newton step, for the global norm
}

func newWorkspace(n, w int) *workspace {
	return &workspace{pw: make([]float64, w), F: make([]float64, n), dlt: make([]float64, n)}
}

// Equilibrate computes cH[N] and the degree-of-ionization tensor
// G[S][N][D] for the analytical concentrations C[S][N] (mol/m³), using
// cH0[N] (mol/L) as the Newton warm start. cH and G must already be
// allocated to the right shape; cH may alias cH0. Equilibrate fails with
// an errs.EquilibriumDiverged error when Newton cannot reduce the
// residual below tolerance in either mode.
func Equilibrate(tbl *species.Table, C [][]float64, cH0, cH []float64, G [][][]float64, opts Options) error {
	n := len(cH0)
	if len(cH) != n {
		return errs.New(errs.EquilibriumDiverged, "cH output has length %d, expected %d", len(cH), n)
	}
	start := make([]float64, n)
	copy(start, cH0)
	copy(cH, start)
	ws := newWorkspace(n, tbl.W)

	diverged := iterate(tbl, C, cH, opts, false, ws)
	if diverged {
		copy(cH, start)
		diverged = iterate(tbl, C, cH, opts, true, ws)
		if diverged {
			return errs.New(errs.EquilibriumDiverged, "Newton failed to converge in approximate and exact modes for %d grid points", n)
		}
	}
	fillG(tbl, cH, G, ws.pw)
	return nil
}

// InitialPH is the one-shot initial-pH interface from spec.md §6: a
// uniform warm start of cH ≡ 10⁻⁷ mol/L and the relative stopping
// criterion.
func InitialPH(tbl *species.Table, C [][]float64) ([]float64, error) {
	n := 0
	if tbl.S > 0 {
		n = len(C[0])
	}
	cH0 := make([]float64, n)
	for i := range cH0 {
		cH0[i] = 1e-7
	}
	cH := make([]float64, n)
	G := make([][][]float64, tbl.S)
	for s := 0; s < tbl.S; s++ {
		G[s] = make([][]float64, n)
		for i := range G[s] {
			G[s][i] = make([]float64, tbl.W)
		}
	}
	opts := DefaultOptions()
	opts.Relative = true
	if err := Equilibrate(tbl, C, cH0, cH, G, opts); err != nil {
		return nil, err
	}
	return cH, nil
}

// powers fills out[0..w-1] with cH^k via an exclusive prefix-sum of logs
// followed by exponentiation (spec.md §4.1 notes), so out[0] == 1 exactly
// regardless of cH.
func powers(cH float64, w int, out []float64) {
	if w == 0 {
		return
	}
	out[0] = 1
	lg := math.Log(cH)
	acc := 0.0
	for k := 1; k < w; k++ {
		acc += lg
		out[k] = math.Exp(acc)
	}
}

// divideNoNaN implements the spec's 0/0 := 0 policy.
func divideNoNaN(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// iterate runs damped Newton on the whole grid in lock-step until the
// global convergence criterion is met or the iteration cap is hit. It
// returns true ("diverged") if convergence failed or any cH went
// non-positive; the caller resets the warm start before falling back to
// exact mode.
func iterate(tbl *species.Table, C [][]float64, cH []float64, opts Options, exact bool, ws *workspace) bool {
	n := len(cH)
	for iter := 0; iter < opts.MaxIter; iter++ {
		maxCH := 0.0
		nonPositive := false
		for i := 0; i < n; i++ {
			powers(cH[i], tbl.W, ws.pw)
			F, Fp := residual(tbl, C, i, cH[i], ws.pw, exact)
			delta := divideNoNaN(F, Fp)
			next := cH[i] - delta
			ws.F[i] = F
			ws.dlt[i] = delta
			if next > maxCH {
				maxCH = next
			}
			if next <= 0 {
				nonPositive = true
			}
			cH[i] = next
		}
		if nonPositive {
			return true
		}
		if opts.Relative {
			if maxCH <= 0 || la.VecNorm(ws.dlt)/maxCH >= opts.RelTol {
				continue
			}
			return false
		}
		if la.VecNorm(ws.F) < opts.FTol && la.VecNorm(ws.dlt) < opts.DeltaTol {
			return false
		}
	}
	return true
}

// residual evaluates F(cH) and F'(cH) at one grid point (spec.md §4.1).
// pw holds cH^0 .. cH^(W-1) for this grid point's cH.
func residual(tbl *species.Table, C [][]float64, gridPt int, cH float64, pw []float64, exact bool) (F, Fp float64) {
	for sp := 0; sp < tbl.S; sp++ {
		Ls, Zs := tbl.L[sp], tbl.Z[sp]
		var P, Fs, Fps, Qs float64
		for k := range Ls {
			P += Ls[k] * pw[k]
		}
		m := divideNoNaN(C[sp][gridPt]/unit, P)
		for k := range Ls {
			term := Zs[k] * Ls[k] * pw[k]
			Fs += term * m
			Fps += Zs[k] * term * m
			Qs += term
		}
		F += Fs
		Fp += divideNoNaN(Fps, cH)
		if exact {
			Fp -= divideNoNaN(Fs*Qs, P)
		}
	}
	F += cH - divideNoNaN(Kw, cH)
	Fp += 1 + divideNoNaN(Kw, cH*cH)
	return
}

// fillG populates the degree-of-ionization tensor once cH has converged.
func fillG(tbl *species.Table, cH []float64, G [][][]float64, pw []float64) {
	for sp := 0; sp < tbl.S; sp++ {
		Ls := tbl.L[sp]
		for i, ch := range cH {
			powers(ch, tbl.W, pw)
			P := 0.0
			for k := range Ls {
				P += Ls[k] * pw[k]
			}
			for k := range Ls {
				G[sp][i][k] = divideNoNaN(Ls[k]*pw[k], P)
			}
		}
	}
}
