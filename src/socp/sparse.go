package socp

import (
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a sparse matrix in compressed sparse column form, the
// layout the instance builder emits and the solver consumes.
type Matrix struct {
	Rows, Cols int
	ColPtr     []int // length Cols+1
	RowIdx     []int
	Val        []float64
}

func (a *Matrix) Nnz() int {
	return len(a.Val)
}

// MulVec computes dst = A x.
func (a *Matrix) MulVec(dst *mat.VecDense, x mat.Vector) {
	d := dst.RawVector().Data
	for i := range d {
		d[i] = 0
	}
	for j := 0; j < a.Cols; j++ {
		xj := x.AtVec(j)
		if xj == 0 {
			continue
		}
		for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
			d[a.RowIdx[idx]] += a.Val[idx] * xj
		}
	}
}

// MulTransVec computes dst = Aᵀ y.
func (a *Matrix) MulTransVec(dst *mat.VecDense, y mat.Vector) {
	d := dst.RawVector().Data
	for j := 0; j < a.Cols; j++ {
		sum := 0.0
		for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
			sum += a.Val[idx] * y.AtVec(a.RowIdx[idx])
		}
		d[j] = sum
	}
}

// Gram computes the dense normal matrix AᵀA.
func (a *Matrix) Gram() *mat.SymDense {
	g := mat.NewSymDense(a.Cols, nil)
	scratch := make([]float64, a.Rows)
	for j := 0; j < a.Cols; j++ {
		for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
			scratch[a.RowIdx[idx]] = a.Val[idx]
		}
		for i := j; i < a.Cols; i++ {
			dot := 0.0
			for idx := a.ColPtr[i]; idx < a.ColPtr[i+1]; idx++ {
				dot += a.Val[idx] * scratch[a.RowIdx[idx]]
			}
			g.SetSym(j, i, dot)
		}
		for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
			scratch[a.RowIdx[idx]] = 0
		}
	}
	return g
}

// Dense expands the matrix, for small problems and tests.
func (a *Matrix) Dense() *mat.Dense {
	d := mat.NewDense(a.Rows, a.Cols, nil)
	for j := 0; j < a.Cols; j++ {
		for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
			d.Set(a.RowIdx[idx], j, a.Val[idx])
		}
	}
	return d
}

// scaledCopy returns D A E for diagonal row and column scalings.
func (a *Matrix) scaledCopy(row, col []float64) *Matrix {
	out := &Matrix{
		Rows:   a.Rows,
		Cols:   a.Cols,
		ColPtr: slices.Clone(a.ColPtr),
		RowIdx: slices.Clone(a.RowIdx),
		Val:    make([]float64, len(a.Val)),
	}
	for j := 0; j < a.Cols; j++ {
		for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
			out.Val[idx] = a.Val[idx] * row[a.RowIdx[idx]] * col[j]
		}
	}
	return out
}
