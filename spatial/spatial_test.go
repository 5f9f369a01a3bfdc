// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatial

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alvinsunyixiao/itp-websim/equi"
	"github.com/alvinsunyixiao/itp-websim/species"
)

// with no species, σ and s_aux reduce to the pure-water background terms.
func TestComputePureWater(tst *testing.T) {

	chk.PrintTitle("spatial: pure water background conductivity")

	tbl, err := species.NewTable(nil, nil, nil, nil, nil)
	if err != nil {
		tst.Errorf("NewTable failed: %v\n", err)
		return
	}

	n := 3
	cH := []float64{1e-7, 1e-7, 1e-7}
	C := [][]float64{}
	G := [][][]float64{}
	fld := NewFields(tbl, n)

	if err := Compute(tbl, cH, C, G, fld); err != nil {
		tst.Errorf("Compute failed: %v\n", err)
		return
	}

	want := unit * Faraday * (MobilityH*1e-7 + MobilityOH*equi.Kw/1e-7)
	for i := 0; i < n; i++ {
		chk.Scalar(tst, "Sigma", 1e-12, fld.Sigma[i], want)
	}
}

// a deliberately malformed mobility sign (positive U on a negative-valence
// species, the opposite of any physical species) drives σ negative and
// must trip the invariant check.
func TestComputeRejectsNonPositiveSigma(tst *testing.T) {
	chk.PrintTitle("spatial: non-positive conductivity is rejected")

	states := [][]species.ChargeState{
		{
			{Z: -1, Ka: 0, U: 1e10, D: 1e-9},
		},
	}
	tbl, err := species.Build([]string{"malformed"}, states)
	if err != nil {
		tst.Errorf("Build failed: %v\n", err)
		return
	}

	n := 1
	cH := []float64{1e-7}
	C := [][]float64{{1e6}}
	G := [][][]float64{{{1}}}
	fld := NewFields(tbl, n)

	err = Compute(tbl, cH, C, G, fld)
	if err == nil {
		tst.Errorf("expected a non-positive-conductivity error\n")
	}
}
