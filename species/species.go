// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package species implements the immutable species parameter tables used
// by the equilibrium and transport kernels: the ionization-polynomial
// coefficients (L), valences (z), ionic mobilities (u) and molecular
// diffusivities (d) of every chemical species in a run, indexed by
// valence offset.
package species

import (
	"strconv"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"

	"github.com/alvinsunyixiao/itp-websim/errs"
)

// Table holds the per-species ionization data shared by every grid point.
// All rows are zero-padded to the same width D (the maximum valence
// window across all species in the run). It is read-only after NewTable
// returns successfully and may be shared across concurrent independent
// runs.
type Table struct {
	Names []string    // [S] species name, for diagnostics only
	L     [][]float64 // [S][D] ionization-polynomial coefficients
	Z     [][]float64 // [S][D] valence at each offset (integer-valued)
	U     [][]float64 // [S][D] ionic mobility at each offset
	D     [][]float64 // [S][D] molecular diffusivity at each offset

	S int // number of species
	W int // valence window width
}

// NewTable validates the shape invariants from spec.md §3 and returns a
// Table. Every row must be non-empty and contain at least one nonzero L
// coefficient so that the ionization polynomial P_s(cH) is well defined.
func NewTable(names []string, L, Z, U, D [][]float64) (*Table, error) {
	s := len(L)
	if s == 0 {
		return &Table{S: 0}, nil
	}
	if len(names) != s || len(Z) != s || len(U) != s || len(D) != s {
		return nil, errs.New(errs.InvalidSpecies, "L, Z, U, D and names must all have the same outer length S=%d", s)
	}
	w := len(L[0])
	if w == 0 {
		return nil, errs.New(errs.InvalidSpecies, "species %q has an empty L row", names[0])
	}
	for i := 0; i < s; i++ {
		if len(L[i]) != w || len(Z[i]) != w || len(U[i]) != w || len(D[i]) != w {
			return nil, errs.New(errs.InvalidSpecies, "species %q rows must all have width %d", names[i], w)
		}
		anyNonZero := false
		for k := 0; k < w; k++ {
			if L[i][k] < 0 {
				return nil, errs.New(errs.InvalidSpecies, "species %q has a negative L coefficient at offset %d", names[i], k)
			}
			if L[i][k] != 0 {
				anyNonZero = true
			}
		}
		if !anyNonZero {
			return nil, errs.New(errs.InvalidSpecies, "species %q has an all-zero L row; P_s(cH) would be identically zero", names[i])
		}
	}
	return &Table{Names: names, L: L, Z: Z, U: U, D: D, S: s, W: w}, nil
}

// ChargeState describes one ionization state of a species, in order from
// the most negative valence to the most positive. Ka is the ratio
// ([state_k] / ([state_{k-1}]·cH)) at equilibrium, i.e. the association
// step linking state k-1 to state k; the most-negative state carries
// Ka == 0 and anchors the polynomial at L == 1.
type ChargeState struct {
	Z  int     // valence of this state
	Ka float64 // equilibrium constant linking this state to the previous one
	U  float64 // ionic mobility at this state
	D  float64 // molecular diffusivity at this state
}

// Build assembles a Table from per-species lists of charge states. L is
// constructed as the cumulative product of the Ka values, which is the
// standard way of turning a chain of dissociation constants into the
// coefficients of the ionization polynomial P_s(cH) = Σ_k L_k·cH^k
// (spec.md §3, GLOSSARY).
func Build(names []string, states [][]ChargeState) (*Table, error) {
	s := len(states)
	w := 0
	for _, row := range states {
		if len(row) > w {
			w = len(row)
		}
	}
	L := make([][]float64, s)
	Z := make([][]float64, s)
	U := make([][]float64, s)
	D := make([][]float64, s)
	for i, row := range states {
		L[i] = make([]float64, w)
		Z[i] = make([]float64, w)
		U[i] = make([]float64, w)
		D[i] = make([]float64, w)
		acc := 1.0
		for k, cs := range row {
			if k > 0 {
				acc *= cs.Ka
			}
			L[i][k] = acc
			Z[i][k] = float64(cs.Z)
			U[i][k] = cs.U
			D[i][k] = cs.D
		}
	}
	return NewTable(names, L, Z, U, D)
}

// ToPrms flattens one species' charge-state ladder into a fun.Prms list,
// naming each parameter "z<k>", "ka<k>", "u<k>", "d<k>" for offset k, the
// same Name/Value convention gofem's material models use for their own
// parameters (e.g. msolid.HyperElast1.GetPrms).
func ToPrms(states []ChargeState) fun.Prms {
	prms := make(fun.Prms, 0, 4*len(states))
	for k, cs := range states {
		prms = append(prms,
			&fun.Prm{N: io.Sf("z%d", k), V: float64(cs.Z)},
			&fun.Prm{N: io.Sf("ka%d", k), V: cs.Ka},
			&fun.Prm{N: io.Sf("u%d", k), V: cs.U},
			&fun.Prm{N: io.Sf("d%d", k), V: cs.D},
		)
	}
	return prms
}

// ParseChargeStates binds a flat fun.Prms list back into an ordered
// charge-state ladder of width w, using the same switch-over-p.N
// parameter-binding loop as msolid.HyperElast1.Init.
func ParseChargeStates(w int, prms fun.Prms) []ChargeState {
	states := make([]ChargeState, w)
	for _, p := range prms {
		field, k, ok := splitParamName(p.N)
		if !ok || k < 0 || k >= w {
			continue
		}
		switch field {
		case "z":
			states[k].Z = int(p.V)
		case "ka":
			states[k].Ka = p.V
		case "u":
			states[k].U = p.V
		case "d":
			states[k].D = p.V
		}
	}
	return states
}

// splitParamName splits a "<field><index>" parameter name (e.g. "ka3")
// into its field prefix and integer index.
func splitParamName(name string) (field string, k int, ok bool) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return "", 0, false
	}
	return name[:i], n, true
}
