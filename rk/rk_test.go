// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alvinsunyixiao/itp-websim/spatial"
)

// a uniform state with zero applied current has a zero RHS everywhere, so
// Advance must accept the first trial step and leave the state unchanged.
func TestAdvanceZeroCurrentIsStationary(tst *testing.T) {

	chk.PrintTitle("rk: zero current -> stationary state")

	n := 5
	fld := &spatial.Fields{
		UEff:  [][]float64{make([]float64, n)},
		DEff:  [][]float64{make([]float64, n)},
		Sigma: make([]float64, n),
		SAux:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		fld.UEff[0][i] = 362e-9
		fld.DEff[0][i] = 1e-9
		fld.Sigma[i] = 1.0
	}

	C := [][]float64{make([]float64, n)}
	for i := range C[0] {
		C[0][i] = 2.0
	}

	sc := NewScratch(1, n)
	cfg := DefaultConfig()

	cNew, dtUsed, dtNext, err := Advance(fld, C, 0, 1.0, 0.1, 1e-8, sc, cfg)
	if err != nil {
		tst.Errorf("Advance failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "dtUsed", 1e-15, dtUsed, 0.1)
	if dtNext <= 0 {
		tst.Errorf("dtNext = %g should be positive\n", dtNext)
	}
	for i := 0; i < n; i++ {
		chk.Scalar(tst, "Cnew", 1e-10, cNew[0][i], 2.0)
	}
}

func TestClamp(tst *testing.T) {
	chk.PrintTitle("rk: clamp")
	chk.Scalar(tst, "below", 1e-15, clamp(0.01, 0.1, 10), 0.1)
	chk.Scalar(tst, "above", 1e-15, clamp(100, 0.1, 10), 10)
	chk.Scalar(tst, "inside", 1e-15, clamp(2, 0.1, 10), 2)
}
