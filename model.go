// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/cone"
)

// ErrShapeMismatch is returned (wrapped with details) by NewModel when the
// supplied matrices and cone index ranges are not mutually consistent.
var ErrShapeMismatch = errors.New("coneprog: shape mismatch")

// ConeRange is the contiguous index range [Start, End) that a cone occupies
// within s/z, following the disjoint-and-covering I_k partition of spec §3.
type ConeRange struct {
	Start, End int
}

// Len reports the number of coordinates the range covers.
func (r ConeRange) Len() int { return r.End - r.Start }

// Model holds the immutable coefficient data of a conic program
//
//	minimize    c·x
//	subject to  A x = b
//	            h - G x = s,  s ∈ K
//
// where K is the Cartesian product of Cones in declaration order, each
// occupying the matching entry of ConeIdxs. T is fixed to float64 for this
// module: every numerical dependency below (BLAS/LAPACK via gonum/mat and
// gonum/lapack/lapack64) is float64-only, so a generic Model[T] would not
// be able to call them — see DESIGN.md for this Open Question resolution.
type Model struct {
	C *mat.VecDense // length n
	A *mat.Dense    // p×n, may be nil (p=0)
	B *mat.VecDense // length p
	G *mat.Dense    // q×n
	H *mat.VecDense // length q

	Cones    []cone.Cone
	ConeIdxs []ConeRange

	ObjOffset float64
}

// NewModel validates shapes and cone index coverage and returns a Model.
func NewModel(c *mat.VecDense, a *mat.Dense, b *mat.VecDense, g *mat.Dense, h *mat.VecDense, cones []cone.Cone, objOffset float64) (*Model, error) {
	n := c.Len()
	q, gc := g.Dims()
	if gc != n {
		return nil, errors.Wrapf(ErrShapeMismatch, "G has %d columns, want %d", gc, n)
	}
	if h.Len() != q {
		return nil, errors.Wrapf(ErrShapeMismatch, "h has length %d, want %d", h.Len(), q)
	}
	if a != nil {
		p, ac := a.Dims()
		if ac != n {
			return nil, errors.Wrapf(ErrShapeMismatch, "A has %d columns, want %d", ac, n)
		}
		if b.Len() != p {
			return nil, errors.Wrapf(ErrShapeMismatch, "b has length %d, want %d", b.Len(), p)
		}
	}

	idxs := make([]ConeRange, len(cones))
	off := 0
	for i, k := range cones {
		d := k.Dimension()
		idxs[i] = ConeRange{Start: off, End: off + d}
		off += d
	}
	if off != q {
		return nil, errors.Wrapf(ErrShapeMismatch, "cones cover %d coordinates, want %d", off, q)
	}

	return &Model{
		C: c, A: a, B: b, G: g, H: h,
		Cones:     cones,
		ConeIdxs:  idxs,
		ObjOffset: objOffset,
	}, nil
}

// Nu returns ν = Σ ν(K_k).
func (m *Model) Nu() float64 {
	var nu float64
	for _, k := range m.Cones {
		nu += k.Nu()
	}
	return nu
}

// Dims returns (n, p, q): the dimensions of x, y, and s/z respectively.
func (m *Model) Dims() (n, p, q int) {
	n = m.C.Len()
	if m.A != nil {
		p, _ = m.A.Dims()
	}
	q = m.H.Len()
	return n, p, q
}
