// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads a run description from JSON and builds the
// species.Table and initial step.State a Driver needs to start stepping
// (spec.md §6, SPEC_FULL.md §5). The schema mirrors the inputs.json
// layout used by the original project's post-processing tools
// (domainLen, numGrids, per-species injection profiles), so a config
// file and a completed run's summary share the same species description.
package config

import (
	"encoding/json"
	"math"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"

	"github.com/alvinsunyixiao/itp-websim/equi"
	"github.com/alvinsunyixiao/itp-websim/species"
	"github.com/alvinsunyixiao/itp-websim/step"
)

// ChargeStateSpec is the JSON form of species.ChargeState.
type ChargeStateSpec struct {
	Z  int     `json:"z"`
	Ka float64 `json:"ka"`
	U  float64 `json:"u"`
	D  float64 `json:"d"`
}

// SpeciesSpec describes one species' charge-state ladder and its initial
// injection profile along the channel.
type SpeciesSpec struct {
	Name    string            `json:"name"`
	States  []ChargeStateSpec `json:"states"`

	// injection profile, following the original project's inputs.json
	// convention: "uniform" or "gaussian"
	InjectionType  string  `json:"injectionType"`
	InjectionConc  float64 `json:"injectionConc"`  // mol/m³, peak/uniform value
	InjectionLoc   float64 `json:"injectionLoc"`   // m, center of the profile
	InjectionWidth float64 `json:"injectionWidth"` // m, std-dev for "gaussian"
}

// RunConfig is the top-level JSON run description (spec.md §6).
type RunConfig struct {
	DomainLen float64       `json:"domainLen"` // m
	NumGrids  int           `json:"numGrids"`
	Current   float64       `json:"current"`  // A/m² applied current density
	Tol       float64       `json:"tol"`      // RKStepper error tolerance
	Strict    bool          `json:"strict"`   // select rk.AdvanceStrict
	Verbose   bool          `json:"verbose"`
	Species   []SpeciesSpec `json:"species"`
}

// Read loads and validates a RunConfig from a JSON file.
func Read(dir, fn string) (*RunConfig, error) {
	b, err := io.ReadFile(filepath.Join(dir, fn))
	if err != nil {
		return nil, err
	}
	cfg := new(RunConfig)
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, chk.Err("cannot parse run configuration %q: %v", fn, err)
	}
	if cfg.NumGrids < 3 {
		return nil, chk.Err("numGrids must be at least 3, got %d", cfg.NumGrids)
	}
	if cfg.DomainLen <= 0 {
		return nil, chk.Err("domainLen must be positive, got %g", cfg.DomainLen)
	}
	return cfg, nil
}

// BuildTable assembles a species.Table from the run's species specs. Each
// species' charge-state ladder is flattened into a fun.Prms list and
// bound back via species.ParseChargeStates, the same named-parameter
// round trip msolid.HyperElast1.Init uses for its own model parameters.
func (cfg *RunConfig) BuildTable() (*species.Table, error) {
	names := make([]string, len(cfg.Species))
	states := make([][]species.ChargeState, len(cfg.Species))
	for i, sp := range cfg.Species {
		names[i] = sp.Name
		prms := make(fun.Prms, 0, 4*len(sp.States))
		for k, cs := range sp.States {
			prms = append(prms,
				&fun.Prm{N: io.Sf("z%d", k), V: float64(cs.Z)},
				&fun.Prm{N: io.Sf("ka%d", k), V: cs.Ka},
				&fun.Prm{N: io.Sf("u%d", k), V: cs.U},
				&fun.Prm{N: io.Sf("d%d", k), V: cs.D},
			)
		}
		states[i] = species.ParseChargeStates(len(sp.States), prms)
	}
	return species.Build(names, states)
}

// Grid returns the uniform cell-center coordinates and spacing for the
// run's domain (spec.md §3), in the same utl.LinSpace style gofem's mesh
// generators use for structured grids. Following the original project's
// np.linspace(0, domainLen, numGrids, endpoint=False) convention
// (python/utils.py's SimResult.from_directory), the last grid point sits
// one spacing short of domainLen rather than exactly on it, so dx ==
// domainLen/numGrids.
func (cfg *RunConfig) Grid() (x []float64, dx float64) {
	if cfg.NumGrids <= 0 {
		return nil, 0
	}
	dx = cfg.DomainLen / float64(cfg.NumGrids)
	x = utl.LinSpace(0, dx*float64(cfg.NumGrids-1), cfg.NumGrids)
	return
}

// InitialState builds the initial concentration profile for every species
// (Gaussian or uniform injection, spec.md §6) and warm-starts cH with
// equi.InitialPH.
func (cfg *RunConfig) InitialState(tbl *species.Table) (*step.State, error) {
	x, _ := cfg.Grid()
	n := len(x)
	C := make([][]float64, tbl.S)
	for i, sp := range cfg.Species {
		C[i] = make([]float64, n)
		switch sp.InjectionType {
		case "uniform":
			for j := range C[i] {
				C[i][j] = sp.InjectionConc
			}
		case "gaussian", "":
			width := sp.InjectionWidth
			if width <= 0 {
				width = cfg.DomainLen / 20
			}
			for j, xj := range x {
				d := xj - sp.InjectionLoc
				C[i][j] = sp.InjectionConc * math.Exp(-0.5*(d/width)*(d/width))
			}
		default:
			return nil, chk.Err("species %q: unknown injectionType %q", sp.Name, sp.InjectionType)
		}
	}
	cH, err := equi.InitialPH(tbl, C)
	if err != nil {
		return nil, err
	}
	return &step.State{C: C, CH: cH, T: 0, DtNext: 0}, nil
}
