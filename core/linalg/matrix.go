// Package linalg is the dense linear algebra kernel shared by the regression
// and clustering engines.
//
// Matrices are plain row-major [][]float64 values so results can be handed
// to a renderer without conversion. Shape errors are hard failures
// (*errors.DimensionError); near-singular pivots are soft and resolved by a
// Regularizer policy, so Invert always returns a finite approximate inverse
// for well-formed square input.
package linalg

import (
	"github.com/YuminosukeSato/simulix/pkg/errors"
)

// Matrix is a rectangular row-major matrix. All rows must have equal length.
type Matrix [][]float64

// New returns a zero rows×cols matrix.
func New(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}

// Dims returns the number of rows and columns. A matrix with no rows has zero columns.
func (m Matrix) Dims() (rows, cols int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Validate checks that every row has the same length as the first.
func Validate(m Matrix) error {
	_, cols := m.Dims()
	for i, row := range m {
		if len(row) != cols {
			return errors.Wrapf(errors.NewDimensionError("Validate", cols, len(row), 1), "row %d", i)
		}
	}
	return nil
}

// Multiply returns a·b. It requires cols(a) == rows(b).
func Multiply(a, b Matrix) (Matrix, error) {
	if err := Validate(a); err != nil {
		return nil, err
	}
	if err := Validate(b); err != nil {
		return nil, err
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		return nil, errors.NewDimensionError("Multiply", ac, br, 0)
	}

	out := New(ar, bc)
	for i := 0; i < ar; i++ {
		for k := 0; k < ac; k++ {
			aik := a[i][k]
			if aik == 0 {
				continue
			}
			for j := 0; j < bc; j++ {
				out[i][j] += aik * b[k][j]
			}
		}
	}
	return out, nil
}

// MultiplyVec returns a·v. It requires cols(a) == len(v).
func MultiplyVec(a Matrix, v []float64) ([]float64, error) {
	if err := Validate(a); err != nil {
		return nil, err
	}
	rows, cols := a.Dims()
	if cols != len(v) {
		return nil, errors.NewDimensionError("MultiplyVec", cols, len(v), 0)
	}
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		var s float64
		for j := 0; j < cols; j++ {
			s += a[i][j] * v[j]
		}
		out[i] = s
	}
	return out, nil
}

// Transpose returns the cols×rows transpose of a.
func Transpose(a Matrix) Matrix {
	rows, cols := a.Dims()
	out := New(cols, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j][i] = a[i][j]
		}
	}
	return out
}

// AddDiagonal returns a copy of the square matrix m with eps added to every
// diagonal entry.
func AddDiagonal(m Matrix, eps float64) Matrix {
	out := m.Clone()
	for i := range out {
		if i < len(out[i]) {
			out[i][i] += eps
		}
	}
	return out
}
