// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flux

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alvinsunyixiao/itp-websim/spatial"
)

func TestLimiterZeroAtOrigin(tst *testing.T) {
	chk.PrintTitle("limiter: L(0,0) == 0")
	chk.Scalar(tst, "L(0,0)", 1e-15, Limiter(0, 0), 0)
}

func TestLimiterVanishesOnSignChange(tst *testing.T) {
	chk.PrintTitle("limiter: opposite signs vanish")
	chk.Scalar(tst, "L(1,-1)", 1e-12, Limiter(1, -1), 0)
	chk.Scalar(tst, "L(-2,3)", 1e-12, Limiter(-2, 3), 0)
}

func TestLimiterBoundedByMax(tst *testing.T) {
	chk.PrintTitle("limiter: |L(x,y)| <= max(|x|,|y|)")
	cases := [][2]float64{{1, 2}, {5, 5}, {0.1, 10}, {-3, -1}}
	for _, c := range cases {
		x, y := c[0], c[1]
		L := Limiter(x, y)
		bound := math.Max(math.Abs(x), math.Abs(y))
		if math.Abs(L) > bound+1e-12 {
			tst.Errorf("|L(%g,%g)| = %g exceeds bound %g\n", x, y, math.Abs(L), bound)
		}
	}
}

func TestDivideNoNaNZeroOverZero(tst *testing.T) {
	chk.PrintTitle("divideNoNaN: 0/0 := 0")
	chk.Scalar(tst, "0/0", 1e-15, DivideNoNaN(0, 0), 0)
}

// with zero current and uniform concentration, the RHS must vanish
// everywhere (no diffusive, advective or electromigrative flux at all).
func TestRHSUniformNoCurrentIsZero(tst *testing.T) {
	chk.PrintTitle("flux RHS: uniform state, zero current -> zero RHS")

	n := 6
	fld := &spatial.Fields{
		UEff:  [][]float64{make([]float64, n)},
		DEff:  [][]float64{make([]float64, n)},
		Sigma: make([]float64, n),
		SAux:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		fld.UEff[0][i] = 362e-9
		fld.DEff[0][i] = 1.0e-9
		fld.Sigma[i] = 1.0
		fld.SAux[i] = 0 // uniform -> zero gradient
	}

	C := [][]float64{make([]float64, n)}
	for i := range C[0] {
		C[0][i] = 1.0
	}

	ws := NewWorkspace(1, n)
	out := [][]float64{make([]float64, n)}
	RHS(C, fld, 0, 1.0, ws, out)

	for i := 0; i < n; i++ {
		chk.Scalar(tst, "RHS", 1e-12, out[0][i], 0)
	}
}
