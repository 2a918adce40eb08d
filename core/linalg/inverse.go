package linalg

import (
	"math"

	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
)

// Regularizer is the soft-singularity policy used during inversion.
// A pivot whose magnitude is below PivotThreshold gets Epsilon added to it
// instead of aborting the elimination.
type Regularizer struct {
	PivotThreshold float64
	Epsilon        float64
}

// DefaultRegularizer is used by Invert.
var DefaultRegularizer = Regularizer{
	PivotThreshold: 1e-10,
	Epsilon:        1e-8,
}

// Stabilize returns a pivot safe to divide by, and whether it had to be
// changed. A regularized pivot keeps the sign of the original value and
// never has magnitude below Epsilon.
func (r Regularizer) Stabilize(pivot float64) (float64, bool) {
	if math.Abs(pivot) >= r.PivotThreshold {
		return pivot, false
	}
	p := pivot + r.Epsilon
	if pivot < 0 {
		p = pivot - r.Epsilon
	}
	if math.Abs(p) < r.Epsilon {
		p = math.Copysign(r.Epsilon, p)
	}
	return p, true
}

// Invert returns the inverse of the square matrix a using Gauss–Jordan
// elimination with partial pivoting and DefaultRegularizer.
func Invert(a Matrix) (Matrix, error) {
	return InvertWith(a, DefaultRegularizer)
}

// InvertWith is Invert with an explicit regularization policy. It only
// fails for ragged or non-square input.
func InvertWith(a Matrix, reg Regularizer) (Matrix, error) {
	if err := Validate(a); err != nil {
		return nil, err
	}
	n, cols := a.Dims()
	if n != cols {
		return nil, errors.NewDimensionError("Invert", n, cols, 1)
	}

	// augmented [a | I]
	aug := New(n, 2*n)
	for i := 0; i < n; i++ {
		copy(aug[i], a[i])
		aug[i][n+i] = 1
	}

	regularized := 0
	for col := 0; col < n; col++ {
		pivotRow := col
		maxAbs := math.Abs(aug[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r][col]); v > maxAbs {
				maxAbs = v
				pivotRow = r
			}
		}
		if pivotRow != col {
			aug[col], aug[pivotRow] = aug[pivotRow], aug[col]
		}

		pivot, changed := reg.Stabilize(aug[col][col])
		if changed {
			regularized++
			aug[col][col] = pivot
		}

		inv := 1 / pivot
		for j := 0; j < 2*n; j++ {
			aug[col][j] *= inv
		}

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 2*n; j++ {
				aug[r][j] -= f * aug[col][j]
			}
		}
	}

	if regularized > 0 {
		log.GetLoggerWithName("linalg").Debug("regularized near-singular pivots",
			log.OperationKey, log.OperationInvert,
			log.RowsKey, n,
			log.RegularizedPivotsKey, regularized,
			log.EpsilonKey, reg.Epsilon,
		)
	}

	out := New(n, n)
	for i := 0; i < n; i++ {
		copy(out[i], aug[i][n:])
	}
	return out, nil
}

// Det2x2 returns the determinant of a 2×2 matrix.
func Det2x2(m Matrix) float64 {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// Inverse2x2 returns the closed-form inverse of a 2×2 matrix and its
// determinant. ok is false when m is not 2×2 or the determinant is not a
// usable positive value (at or below minDet, or non-finite); the returned
// inverse is then nil.
func Inverse2x2(m Matrix, minDet float64) (inv Matrix, det float64, ok bool) {
	if len(m) != 2 || len(m[0]) != 2 || len(m[1]) != 2 {
		return nil, 0, false
	}
	det = Det2x2(m)
	if !(det > minDet) || math.IsInf(det, 0) {
		return nil, det, false
	}
	inv = Matrix{
		{m[1][1] / det, -m[0][1] / det},
		{-m[1][0] / det, m[0][0] / det},
	}
	return inv, det, true
}
