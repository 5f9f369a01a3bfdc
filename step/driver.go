// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package step implements StepDriver: the per-step orchestration of
// Equilibrate, SpatialProperties and RKStepper that advances the
// transport state by one adaptive time step (spec.md §4.5).
package step

import (
	"github.com/cpmech/gosl/io"

	"github.com/alvinsunyixiao/itp-websim/equi"
	"github.com/alvinsunyixiao/itp-websim/rk"
	"github.com/alvinsunyixiao/itp-websim/spatial"
	"github.com/alvinsunyixiao/itp-websim/species"
)

// State is the full transport state at one instant: concentrations,
// the hydrogen-ion field warm-started from the previous step, the
// simulation time and the step size to try next.
type State struct {
	C      [][]float64 // [S][N] mol/m³
	CH     []float64   // [N] mol/L, warm start for the next Equilibrate
	T      float64     // s
	DtNext float64     // s, suggested next step size
}

// Workspace bundles the scratch every sub-solver needs, allocated once
// per run and reused across steps (spec.md §5).
type Workspace struct {
	G       [][][]float64 // [S][N][W] degree of ionization
	Fields  *spatial.Fields
	RK      *rk.Scratch
	EquiOpt equi.Options
	RKCfg   rk.Config
}

// NewWorkspace allocates a Workspace for a run over tbl on n grid points.
func NewWorkspace(tbl *species.Table, n int) *Workspace {
	g := make([][][]float64, tbl.S)
	for s := 0; s < tbl.S; s++ {
		g[s] = make([][]float64, n)
		for i := range g[s] {
			g[s][i] = make([]float64, tbl.W)
		}
	}
	return &Workspace{
		G:       g,
		Fields:  spatial.NewFields(tbl, n),
		RK:      rk.NewScratch(tbl.S, n),
		EquiOpt: equi.DefaultOptions(),
		RKCfg:   rk.DefaultConfig(),
	}
}

// Driver owns the immutable species table and the run's grid/physical
// parameters, and exposes the single Step entry point a CLI or harness
// drives in a loop (spec.md §4.5), in the same owning-struct-with-a-Step
// shape as fem.Main's Domains/Solver orchestration.
type Driver struct {
	Tbl     *species.Table
	Dx      float64
	Current float64
	Tol     float64
	Strict  bool // use rk.AdvanceStrict instead of the frozen-coefficients rk.Advance
	Verbose bool
}

// Step advances st by one adaptive time step using dtTry as the trial
// step size, running Equilibrate → SpatialProperties → RKStepper on ws's
// scratch (spec.md §4.5's frozen-coefficients contract: SpatialProperties
// is evaluated once at the start of the step and held fixed across every
// RK stage, unless d.Strict is set). It returns a new State; st itself is
// left untouched so a caller can retry with a smaller dtTry on error.
func (d *Driver) Step(st *State, ws *Workspace, dtTry float64) (*State, error) {
	cH := make([]float64, len(st.CH))
	if err := equi.Equilibrate(d.Tbl, st.C, st.CH, cH, ws.G, ws.EquiOpt); err != nil {
		return nil, err
	}
	if err := spatial.Compute(d.Tbl, cH, st.C, ws.G, ws.Fields); err != nil {
		return nil, err
	}

	var cNew [][]float64
	var dtUsed, dtNext float64
	var err error
	if d.Strict {
		recompute := func(C [][]float64, fld *spatial.Fields) error {
			cHTrial := make([]float64, len(cH))
			copy(cHTrial, cH)
			GTrial := ws.G
			if err := equi.Equilibrate(d.Tbl, C, cH, cHTrial, GTrial, ws.EquiOpt); err != nil {
				return err
			}
			return spatial.Compute(d.Tbl, cHTrial, C, GTrial, fld)
		}
		cNew, err = rk.AdvanceStrict(ws.Fields, st.C, d.Current, d.Dx, dtTry, d.Tol, recompute, ws.RK.FluxWorkspace())
		dtUsed, dtNext = dtTry, dtTry
	} else {
		cNew, dtUsed, dtNext, err = rk.Advance(ws.Fields, st.C, d.Current, d.Dx, dtTry, d.Tol, ws.RK, ws.RKCfg)
	}
	if err != nil {
		return nil, err
	}

	if d.Verbose {
		io.Pf("step: t=%g dt=%g -> dtUsed=%g dtNext=%g maxSigma=%g\n",
			st.T, dtTry, dtUsed, dtNext, spatial.MaxSigma(ws.Fields))
	}

	return &State{C: cNew, CH: cH, T: st.T + dtUsed, DtNext: dtNext}, nil
}
