// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs implements the fatal error kinds surfaced by the spresso
// numerical core.
package errs

import (
	"errors"

	"github.com/cpmech/gosl/io"
)

// Kind classifies a fatal error raised by the core.
type Kind string

// error kinds
const (
	EquilibriumDiverged     Kind = "EquilibriumDiverged"     // Newton failed under both modes
	StepTooSmall            Kind = "StepTooSmall"            // adaptive controller exceeded retry cap
	NonPositiveConductivity Kind = "NonPositiveConductivity" // σ computed ≤ 0 at some grid point
	InvalidSpecies          Kind = "InvalidSpecies"          // SpeciesTable violates shape invariants
)

// Error is a fatal error tagged with its Kind so callers can classify it
// with errors.As instead of string-matching the message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return io.Sf("%s: %s", e.Kind, e.Msg)
}

// New creates a Kind-tagged error with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: io.Sf(format, args...)}
}

// Is reports whether err (or an error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
