// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

// Status reports the outcome of a solve call. Values less than Optimal
// indicate the solve has not (yet, or ever will) produce a certificate;
// Optimal and beyond are terminal outcomes.
type Status int

const (
	NotLoaded Status = iota
	Loaded
	SolveCalled
	Optimal
	PrimalInfeasible
	DualInfeasible
	PrimalInconsistent
	DualInconsistent
	IllPosed
	SlowProgress
	IterationLimit
	TimeLimit
	NumericalFailure
)

func (s Status) String() string {
	str, ok := statusNames[s]
	if !ok {
		return "Status(unknown)"
	}
	return str
}

var statusNames = map[Status]string{
	NotLoaded:          "NotLoaded",
	Loaded:             "Loaded",
	SolveCalled:        "SolveCalled",
	Optimal:            "Optimal",
	PrimalInfeasible:   "PrimalInfeasible",
	DualInfeasible:     "DualInfeasible",
	PrimalInconsistent: "PrimalInconsistent",
	DualInconsistent:   "DualInconsistent",
	IllPosed:           "IllPosed",
	SlowProgress:       "SlowProgress",
	IterationLimit:     "IterationLimit",
	TimeLimit:          "TimeLimit",
	NumericalFailure:   "NumericalFailure",
}

// Terminal reports whether s is a terminal outcome of a solve call.
func (s Status) Terminal() bool {
	return s >= Optimal
}
