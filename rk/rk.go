// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rk implements RKStepper: the embedded Dormand-Prince (DOPRI5)
// 5(4) Runge-Kutta pair with PI-free adaptive step control (spec.md
// §4.4). Coefficients follow the classic Dormand & Prince (1980) 7-stage
// FSAL tableau, in the same named-constants style as the Butcher
// tableau in the RKF45 solver of the retrieved godesim example.
package rk

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"

	"github.com/alvinsunyixiao/itp-websim/errs"
	"github.com/alvinsunyixiao/itp-websim/flux"
	"github.com/alvinsunyixiao/itp-websim/spatial"
)

// Dormand-Prince 5(4) Butcher tableau.
const (
	c2, c3, c4, c5, c6 = 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1.0

	a21 = 1.0 / 5.0
	a31 = 3.0 / 40.0
	a32 = 9.0 / 40.0
	a41 = 44.0 / 45.0
	a42 = -56.0 / 15.0
	a43 = 32.0 / 9.0
	a51 = 19372.0 / 6561.0
	a52 = -25360.0 / 2187.0
	a53 = 64448.0 / 6561.0
	a54 = -212.0 / 729.0
	a61 = 9017.0 / 3168.0
	a62 = -355.0 / 33.0
	a63 = 46732.0 / 5247.0
	a64 = 49.0 / 176.0
	a65 = -5103.0 / 18656.0
	a71 = 35.0 / 384.0
	a73 = 500.0 / 1113.0
	a74 = 125.0 / 192.0
	a75 = -2187.0 / 6784.0
	a76 = 11.0 / 84.0

	// fourth-order solution weights (fifth-order weights equal the a7*
	// row above, by the FSAL property)
	b4_1 = 5179.0 / 57600.0
	b4_3 = 7571.0 / 16695.0
	b4_4 = 393.0 / 640.0
	b4_5 = -92097.0 / 339200.0
	b4_6 = 187.0 / 2100.0
	b4_7 = 1.0 / 40.0
)

// error-estimate coefficients e_i = b4_i − b5_i (b5_2 == b5_7 == 0, and
// b5_1, b5_3..b5_6 equal the a7* row)
const (
	e1 = b4_1 - a71
	e3 = b4_3 - a73
	e4 = b4_4 - a74
	e5 = b4_5 - a75
	e6 = b4_6 - a76
	e7 = b4_7
)

// Config tunes the adaptive step controller (spec.md §4.4).
type Config struct {
	Safety     float64 // 0.9 for DOPRI5
	Order      float64 // p = 5 for DOPRI5
	MinScale   float64 // 0.1
	MaxScale   float64 // 10
	MaxRetries int     // 20
}

// DefaultConfig returns the DOPRI5 controller constants from spec.md §4.4.
func DefaultConfig() Config {
	return Config{Safety: 0.9, Order: 5, MinScale: 0.1, MaxScale: 10, MaxRetries: 20}
}

// Scratch holds the seven stage slopes and trial states reused across
// steps (spec.md §5), avoiding per-step allocation.
type Scratch struct {
	k        [7][][]float64 // stage slopes [stage][S][N]
	trial    [][]float64    // trial state for RHS evaluation
	errSum   [][]float64    // weighted error-estimate accumulator
	flux     *flux.Workspace
}

// NewScratch allocates a Scratch for S species on N grid points.
func NewScratch(s, n int) *Scratch {
	sc := &Scratch{flux: flux.NewWorkspace(s, n)}
	sc.trial = allocGrid(s, n)
	sc.errSum = allocGrid(s, n)
	for i := range sc.k {
		sc.k[i] = allocGrid(s, n)
	}
	return sc
}

// FluxWorkspace exposes the embedded flux.Workspace so a driver can reuse
// it for rk.AdvanceStrict's recompute callback without allocating a
// second one.
func (sc *Scratch) FluxWorkspace() *flux.Workspace {
	return sc.flux
}

func allocGrid(s, n int) [][]float64 {
	g := make([][]float64, s)
	for i := range g {
		g[i] = make([]float64, n)
	}
	return g
}

// Advance performs one adaptive DOPRI5 step of the frozen-coefficients
// transport RHS, retrying with a shrunk dt until the step is accepted or
// the retry cap is exceeded (spec.md §4.4-4.5). fld holds the
// SpatialProperties output, held fixed for the whole step ("frozen
// coefficients", spec.md §4.5). Cnew is written into a freshly returned
// grid (C is never mutated in place, so the caller's current state
// remains valid until the step is accepted).
func Advance(fld *spatial.Fields, C [][]float64, current, dx, dt, tol float64, sc *Scratch, cfg Config) (cNew [][]float64, dtUsed, dtNext float64, err error) {
	s := len(C)
	n := 0
	if s > 0 {
		n = len(C[0])
	}
	cNew = allocGrid(s, n)

	retries := 0
	for {
		flux.RHS(C, fld, current, dx, sc.flux, sc.k[0])

		stage(sc.trial, C, dt, sc.k, a21, 0, 0, 0, 0, 0)
		flux.RHS(sc.trial, fld, current, dx, sc.flux, sc.k[1])

		stage(sc.trial, C, dt, sc.k, a31, a32, 0, 0, 0, 0)
		flux.RHS(sc.trial, fld, current, dx, sc.flux, sc.k[2])

		stage(sc.trial, C, dt, sc.k, a41, a42, a43, 0, 0, 0)
		flux.RHS(sc.trial, fld, current, dx, sc.flux, sc.k[3])

		stage(sc.trial, C, dt, sc.k, a51, a52, a53, a54, 0, 0)
		flux.RHS(sc.trial, fld, current, dx, sc.flux, sc.k[4])

		stage(sc.trial, C, dt, sc.k, a61, a62, a63, a64, a65, 0)
		flux.RHS(sc.trial, fld, current, dx, sc.flux, sc.k[5])

		// C5 == the stage-7 trial state itself, since b5 equals the a7* row
		// (first-same-as-last, spec.md GLOSSARY).
		stage(cNew, C, dt, sc.k, a71, 0, a73, a74, a75, a76)
		flux.RHS(cNew, fld, current, dx, sc.flux, sc.k[6])

		E := errorNorm(sc, dt)

		if math.IsNaN(E) || hasNaN(cNew) {
			return nil, 0, 0, errs.New(errs.StepTooSmall, "NaN detected in accepted state at dt=%g", dt)
		}

		scale := clamp(cfg.Safety*math.Pow(tol/math.Max(E, 1e-300), 1.0/cfg.Order), cfg.MinScale, cfg.MaxScale)
		candidate := scale * dt

		if E <= tol {
			return cNew, dt, candidate, nil
		}

		retries++
		if retries > cfg.MaxRetries {
			return nil, 0, 0, errs.New(errs.StepTooSmall, "exceeded %d retries at dt=%g (last error=%g, tol=%g)", cfg.MaxRetries, dt, E, tol)
		}
		dt = candidate
	}
}

// stage builds C + dt·Σ coeff_j·k_j into dst (dst may alias C's storage
// shape but not its backing array).
func stage(dst, base [][]float64, dt float64, k [7][][]float64, w1, w2, w3, w4, w5, w6 float64) {
	for sp := range base {
		d, b := dst[sp], base[sp]
		k1, k2, k3, k4, k5, k6 := k[0][sp], k[1][sp], k[2][sp], k[3][sp], k[4][sp], k[5][sp]
		for i := range b {
			d[i] = b[i] + dt*(w1*k1[i]+w2*k2[i]+w3*k3[i]+w4*k4[i]+w5*k5[i]+w6*k6[i])
		}
	}
}

// errorNorm computes E = ‖C4 − C5‖₂ = dt·‖Σ e_i·k_i‖₂ without forming
// the fourth-order solution explicitly (spec.md §4.4).
func errorNorm(sc *Scratch, dt float64) float64 {
	sumsq := 0.0
	for sp := range sc.errSum {
		acc := sc.errSum[sp]
		k1, k3, k4, k5, k6, k7 := sc.k[0][sp], sc.k[2][sp], sc.k[3][sp], sc.k[4][sp], sc.k[5][sp], sc.k[6][sp]
		for i := range acc {
			acc[i] = dt * (e1*k1[i] + e3*k3[i] + e4*k4[i] + e5*k5[i] + e6*k6[i] + e7*k7[i])
		}
		sumsq += la.VecNorm(acc) * la.VecNorm(acc)
	}
	return math.Sqrt(sumsq)
}

// clamp follows the same utl.Max(lo, utl.Min(hi, v)) composition
// inp.Data's adaptive step-size bound uses (sim.go).
func clamp(v, lo, hi float64) float64 {
	return utl.Max(lo, utl.Min(hi, v))
}

func hasNaN(c [][]float64) bool {
	for _, row := range c {
		for _, v := range row {
			if math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}
