// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

import (
	"time"

	"go.uber.org/zap"
)

// SystemSolverKind selects which System implementation backs a solve.
type SystemSolverKind int

const (
	// Naive assembles and factors the full bordered block system; it
	// requires no preprocessing.
	Naive SystemSolverKind = iota
	// QRChol factorizes Aᵀ with a pivoted QR, eliminates y and z, and
	// Cholesky-factors the reduced system over the component of x in the
	// null space of A; it requires Preprocess to be set.
	QRChol
)

// Options configures a Solver. Use DefaultOptions and override individual
// fields; there is no functional-options builder, matching how the
// teacher's own in-process numerical settings (optimize.Settings) are
// plain structs.
type Options struct {
	// Verbose enables a Debugw log record every iteration. The Infow/Warnw
	// records at termination are emitted whether or not it is set.
	Verbose bool
	// Logger receives the records described above when non-nil. A nil
	// Logger is treated as a no-op sink.
	Logger *zap.SugaredLogger

	IterLimit int
	TimeLimit time.Duration

	TolRelOpt float64
	TolAbsOpt float64
	TolFeas   float64
	TolSlow   float64

	// Preprocess enables the rank checks of Aᵀ and [A; G]ᵀ before initial
	// point construction, which report an inconsistent duplicated row of A
	// as DualInconsistent; the model is not reduced. It is required by
	// SystemSolver == QRChol.
	Preprocess bool
	// InitUseIterative requests an iterative least-squares fallback for
	// the initial x, y instead of the pivoted QR route.
	InitUseIterative bool
	// InitTolQR is the pivot tolerance used for rank estimation during
	// preprocessing; zero selects DefaultOptions' value.
	InitTolQR float64

	// MaxNbhd is the wide neighborhood parameter β_max of the line search.
	MaxNbhd float64
	// UseInftyNbhd selects cone.Engine's elementwise neighborhood test
	// (every product s_i·z_i strictly positive, with no μ or β bound) over
	// the default quadratic-form test, consistently for every cone.
	UseInftyNbhd bool

	SystemSolver SystemSolverKind
}

// DefaultOptions returns the solver's default configuration.
func DefaultOptions() Options {
	return Options{
		Logger:    zap.NewNop().Sugar(),
		IterLimit: 100,
		TimeLimit: 0, // 0 means unlimited

		TolRelOpt: 1e-8,
		TolAbsOpt: 1e-8,
		TolFeas:   1e-8,
		TolSlow:   1e-3,

		Preprocess:       false,
		InitUseIterative: false,
		InitTolQR:        100 * 2.220446049250313e-16,

		MaxNbhd:      0.7,
		UseInftyNbhd: false,

		SystemSolver: Naive,
	}
}

func (o *Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}
