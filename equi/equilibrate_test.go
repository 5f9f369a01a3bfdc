// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equi

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alvinsunyixiao/itp-websim/species"
)

// pure water: no species, cH must converge to sqrt(Kw) == 1e-7
func TestEquilibratePureWater(tst *testing.T) {

	chk.PrintTitle("equilibrate: pure water")

	tbl, err := species.NewTable(nil, nil, nil, nil, nil)
	if err != nil {
		tst.Errorf("NewTable failed: %v\n", err)
		return
	}

	n := 5
	C := [][]float64{}
	G := [][][]float64{}
	cH0 := make([]float64, n)
	for i := range cH0 {
		cH0[i] = 1e-7
	}
	cH := make([]float64, n)
	if err := Equilibrate(tbl, C, cH0, cH, G, DefaultOptions()); err != nil {
		tst.Errorf("Equilibrate failed: %v\n", err)
		return
	}
	for i := 0; i < n; i++ {
		chk.Scalar(tst, "cH", 1e-9, cH[i], 1e-7)
	}
}

// a strong monoprotic acid at 1 mol/m³ (1e-3 mol/L) is almost fully
// dissociated: cH settles at cH = 1e-3/(1+cH) ≈ 9.990e-4, so the anion
// fraction G[0] = 1/(1+cH) ≈ 0.999002 and G[1] = cH/(1+cH) ≈ 0.000998005
// everywhere.
func TestEquilibrateStrongAcid(tst *testing.T) {

	chk.PrintTitle("equilibrate: strong acid")

	states := [][]species.ChargeState{
		{
			{Z: -1, Ka: 0, U: -79.1e-9, D: 1.0e-9},
			{Z: 0, Ka: 1.0, U: 0, D: 1.0e-9}, // L[1] == 1: HA/A⁻ == cH, small for cH ~ 1e-3
		},
	}
	tbl, err := species.Build([]string{"strongAcid"}, states)
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}

	n := 4
	C := [][]float64{make([]float64, n)}
	for i := range C[0] {
		C[0][i] = 1.0 // mol/m3
	}
	cH0 := make([]float64, n)
	for i := range cH0 {
		cH0[i] = 1e-7
	}
	cH := make([]float64, n)
	G := [][][]float64{make([][]float64, n)}
	for i := range G[0] {
		G[0][i] = make([]float64, tbl.W)
	}

	opts := DefaultOptions()
	if err := Equilibrate(tbl, C, cH0, cH, G, opts); err != nil {
		tst.Errorf("Equilibrate failed: %v\n", err)
		return
	}

	for i := 0; i < n; i++ {
		chk.Scalar(tst, "G[0][i][0]", 1e-6, G[0][i][0], 0.999002)
		chk.Scalar(tst, "G[0][i][1]", 1e-6, G[0][i][1], 0.000998005)
		if cH[i] <= 0 || math.IsNaN(cH[i]) {
			tst.Errorf("cH[%d] = %g is not a valid concentration\n", i, cH[i])
		}
	}
}

func TestPowers(tst *testing.T) {
	chk.PrintTitle("powers")
	out := make([]float64, 4)
	powers(2.0, 4, out)
	chk.Scalar(tst, "cH^0", 1e-15, out[0], 1)
	chk.Scalar(tst, "cH^1", 1e-15, out[1], 2)
	chk.Scalar(tst, "cH^2", 1e-12, out[2], 4)
	chk.Scalar(tst, "cH^3", 1e-12, out[3], 8)
}

func TestDivideNoNaN(tst *testing.T) {
	chk.PrintTitle("divideNoNaN")
	chk.Scalar(tst, "0/0", 1e-15, divideNoNaN(0, 0), 0)
	chk.Scalar(tst, "4/2", 1e-15, divideNoNaN(4, 2), 2)
}
