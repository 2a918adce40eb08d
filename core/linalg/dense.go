package linalg

import "gonum.org/v1/gonum/mat"

// ToDense copies m into a gonum *mat.Dense.
func ToDense(m Matrix) *mat.Dense {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		d.SetRow(i, m[i])
	}
	return d
}

// FromDense copies any gonum matrix into a Matrix.
func FromDense(d mat.Matrix) Matrix {
	rows, cols := d.Dims()
	out := New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i][j] = d.At(i, j)
		}
	}
	return out
}

// Column extracts column j of a gonum matrix as a slice.
func Column(d mat.Matrix, j int) []float64 {
	rows, _ := d.Dims()
	return mat.Col(make([]float64, rows), j, d)
}
