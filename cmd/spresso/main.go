// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/alvinsunyixiao/itp-websim/config"
	"github.com/alvinsunyixiao/itp-websim/step"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// message
	io.PfWhite("\nSpresso -- 1D capillary electrophoresis simulator\n\n")

	// run config filenamepath
	tEnd := flag.Float64("t", 1.0, "end time of the simulation, in seconds")
	flag.Parse()
	var fnamepath string
	if len(flag.Args()) > 0 {
		fnamepath = flag.Arg(0)
	} else {
		chk.Panic("Please, provide a run configuration filename. Ex.: run.json")
	}

	cfg, err := config.Read(filepath.Dir(fnamepath), filepath.Base(fnamepath))
	if err != nil {
		chk.Panic("cannot read run configuration: %v\n", err)
		return
	}

	tbl, err := cfg.BuildTable()
	if err != nil {
		chk.Panic("cannot build species table: %v\n", err)
		return
	}

	st, err := cfg.InitialState(tbl)
	if err != nil {
		chk.Panic("cannot build initial state: %v\n", err)
		return
	}

	_, dx := cfg.Grid()
	drv := &step.Driver{
		Tbl:     tbl,
		Dx:      dx,
		Current: cfg.Current,
		Tol:     cfg.Tol,
		Strict:  cfg.Strict,
		Verbose: cfg.Verbose,
	}
	ws := step.NewWorkspace(tbl, cfg.NumGrids)

	dt := cfg.Tol
	if st.DtNext > 0 {
		dt = st.DtNext
	}

	for st.T < *tEnd {
		tNow := st.T
		if tNow+dt > *tEnd {
			dt = *tEnd - tNow
		}
		next, stepErr := drv.Step(st, ws, dt)
		if stepErr != nil {
			chk.Panic("step failed at t=%g: %v\n", tNow, stepErr)
			return
		}
		st = next
		dt = st.DtNext
	}

	io.Pf("\nfinished at t=%g\n", st.T)
}
