// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package step

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alvinsunyixiao/itp-websim/errs"
	"github.com/alvinsunyixiao/itp-websim/species"
)

// pure water, zero applied current: the whole pipeline (Equilibrate ->
// SpatialProperties -> RKStepper) must report a stationary, converged
// step with no species transport to drive.
func TestStepZeroCurrentDiffusionIsStationary(tst *testing.T) {

	chk.PrintTitle("step: zero-current pure-water diffusion is stationary")

	tbl, err := species.NewTable(nil, nil, nil, nil, nil)
	if err != nil {
		tst.Errorf("NewTable failed: %v\n", err)
		return
	}

	n := 6
	st := &State{C: [][]float64{}, CH: make([]float64, n), T: 0}
	for i := range st.CH {
		st.CH[i] = 1e-7
	}

	ws := NewWorkspace(tbl, n)
	drv := &Driver{Tbl: tbl, Dx: 1.0, Current: 0, Tol: 1e-8}

	next, err := drv.Step(st, ws, 0.1)
	if err != nil {
		tst.Errorf("Step failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "t", 1e-12, next.T, 0.1)
	for i := 0; i < n; i++ {
		chk.Scalar(tst, "cH", 1e-9, next.CH[i], 1e-7)
	}
}

// a species table whose mobility sign is inconsistent with its valence
// drives σ negative; Step must surface the SpatialProperties invariant
// violation rather than silently advancing.
func TestStepRejectsNonPositiveConductivity(tst *testing.T) {

	chk.PrintTitle("step: non-positive conductivity is rejected")

	states := [][]species.ChargeState{
		{{Z: -1, Ka: 0, U: 1e10, D: 1e-9}},
	}
	tbl, err := species.Build([]string{"malformed"}, states)
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}

	n := 3
	st := &State{
		C:  [][]float64{{1.0, 1.0, 1.0}},
		CH: []float64{1e-7, 1e-7, 1e-7},
		T:  0,
	}
	ws := NewWorkspace(tbl, n)
	drv := &Driver{Tbl: tbl, Dx: 1.0, Current: 0, Tol: 1e-8}

	_, err = drv.Step(st, ws, 0.1)
	if err == nil {
		tst.Errorf("expected a non-positive-conductivity error\n")
		return
	}
	if !errs.Is(err, errs.NonPositiveConductivity) {
		tst.Errorf("expected errs.NonPositiveConductivity, got %v\n", err)
	}
}
