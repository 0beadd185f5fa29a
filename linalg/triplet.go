// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "gonum.org/v1/gonum/mat"

// Triplet accumulates (row, col, value) entries for a sparse matrix under
// construction, following the assemble-then-convert idiom used throughout
// sparse finite-element and optimization codes: callers Put entries in any
// order (including repeated (i,j) pairs, which accumulate), then convert to
// a dense or symmetric working matrix once assembly is complete.
//
// The system solvers in coneprog/kktsolver use Triplet to assemble the
// bordered KKT-like block system of spec §4.3 from the model's A, G and the
// cones' Hessian blocks without hand-indexing a flat slice at each call
// site.
type Triplet struct {
	rows, cols int
	ti, tj     []int
	tx         []float64
}

// NewTriplet returns an empty triplet list for an rows×cols matrix.
func NewTriplet(rows, cols int) *Triplet {
	return &Triplet{rows: rows, cols: cols}
}

// Dims returns the declared dimensions of the matrix under assembly.
func (t *Triplet) Dims() (rows, cols int) { return t.rows, t.cols }

// Len returns the number of entries put so far (duplicates counted
// separately until converted).
func (t *Triplet) Len() int { return len(t.tx) }

// Put records that the value x should be added at (i, j). Repeated calls
// with the same (i, j) accumulate, matching the finite-element assembly
// convention of summing contributions from overlapping local blocks.
func (t *Triplet) Put(i, j int, x float64) {
	if i < 0 || i >= t.rows || j < 0 || j >= t.cols {
		panic("linalg: triplet index out of range")
	}
	t.ti = append(t.ti, i)
	t.tj = append(t.tj, j)
	t.tx = append(t.tx, x)
}

// PutBlock records a dense block's entries with their top-left corner at
// (i0, j0), skipping exact zeros.
func (t *Triplet) PutBlock(i0, j0 int, block mat.Matrix) {
	r, c := block.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := block.At(i, j); v != 0 {
				t.Put(i0+i, j0+j, v)
			}
		}
	}
}

// PutDiag records x on the diagonal entry (i, i).
func (t *Triplet) PutDiag(i int, x float64) { t.Put(i, i, x) }

// Reset discards all accumulated entries, keeping the declared dimensions,
// so the same Triplet can be reused across iterations without reallocating
// its backing slices.
func (t *Triplet) Reset() {
	t.ti = t.ti[:0]
	t.tj = t.tj[:0]
	t.tx = t.tx[:0]
}

// ToDense materializes the assembled matrix as a dense gonum matrix, summing
// duplicate (i, j) contributions.
func (t *Triplet) ToDense() *mat.Dense {
	d := mat.NewDense(t.rows, t.cols, nil)
	for k := range t.tx {
		d.Set(t.ti[k], t.tj[k], d.At(t.ti[k], t.tj[k])+t.tx[k])
	}
	return d
}

// ToSymDense materializes the assembled matrix as a dense symmetric gonum
// matrix, reading only entries with i >= j and mirroring them. Callers are
// responsible for only Put-ing the lower triangle (or a symmetric set of
// entries) when the intended matrix is symmetric.
func (t *Triplet) ToSymDense() *mat.SymDense {
	if t.rows != t.cols {
		panic("linalg: ToSymDense requires a square matrix")
	}
	s := mat.NewSymDense(t.rows, nil)
	for k := range t.tx {
		i, j := t.ti[k], t.tj[k]
		if i < j {
			i, j = j, i
		}
		s.SetSym(i, j, s.At(i, j)+t.tx[k])
	}
	return s
}
