package linalg

import (
	"math"
	"os"
	"testing"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMultiply(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Matrix
		want    Matrix
		wantErr bool
	}{
		{
			name: "2x3 by 3x2",
			a:    Matrix{{1, 2, 3}, {4, 5, 6}},
			b:    Matrix{{7, 8}, {9, 10}, {11, 12}},
			want: Matrix{{58, 64}, {139, 154}},
		},
		{
			name: "row by column",
			a:    Matrix{{1, 2}},
			b:    Matrix{{3}, {4}},
			want: Matrix{{11}},
		},
		{
			name:    "dimension mismatch",
			a:       Matrix{{1, 2}},
			b:       Matrix{{1, 2}},
			wantErr: true,
		},
		{
			name:    "ragged input",
			a:       Matrix{{1, 2}, {3}},
			b:       Matrix{{1}, {2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Multiply(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				var dimErr *errors.DimensionError
				assert.True(t, errors.As(err, &dimErr), "expected DimensionError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranspose(t *testing.T) {
	got := Transpose(Matrix{{1, 2, 3}, {4, 5, 6}})
	assert.Equal(t, Matrix{{1, 4}, {2, 5}, {3, 6}}, got)
	assert.Empty(t, Transpose(Matrix{}))
}

func TestMultiplyVec(t *testing.T) {
	got, err := MultiplyVec(Matrix{{1, 2}, {3, 4}}, []float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, got)

	_, err = MultiplyVec(Matrix{{1, 2}}, []float64{1})
	assert.Error(t, err)
}

func assertIdentity(t *testing.T, m Matrix, tol float64) {
	t.Helper()
	for i := range m {
		for j := range m[i] {
			want := 0.0
			if i == j {
				want = 1
			}
			require.InDelta(t, want, m[i][j], tol, "entry (%d,%d)", i, j)
		}
	}
}

func TestInvertRoundTrip(t *testing.T) {
	src := random.New(11)
	for _, n := range []int{1, 2, 3, 5, 8, 12} {
		// diagonally dominant matrices are well conditioned
		a := New(n, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				a[i][j] = random.Uniform(src, -1, 1)
			}
			a[i][i] += float64(n) + 1
		}

		inv, err := Invert(a)
		require.NoError(t, err)

		prod, err := Multiply(a, inv)
		require.NoError(t, err)
		assertIdentity(t, prod, 1e-6)
	}
}

func TestInvertMatchesGonum(t *testing.T) {
	a := Matrix{{4, 7, 2}, {3, 6, 1}, {2, 5, 3}}
	inv, err := Invert(a)
	require.NoError(t, err)

	var want mat.Dense
	require.NoError(t, want.Inverse(ToDense(a)))
	assert.True(t, mat.EqualApprox(ToDense(inv), &want, 1e-9))
}

func TestInvertNeedsPivoting(t *testing.T) {
	// zero in the leading position forces a row swap
	a := Matrix{{0, 1}, {1, 0}}
	inv, err := Invert(a)
	require.NoError(t, err)
	assert.Equal(t, Matrix{{0, 1}, {1, 0}}, inv)
}

func TestInvertSingularIsRegularized(t *testing.T) {
	singular := Matrix{{1, 2}, {2, 4}}
	inv, err := Invert(singular)
	require.NoError(t, err)
	for _, row := range inv {
		for _, v := range row {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "inverse must stay finite")
		}
	}

	zero := New(3, 3)
	inv, err = Invert(zero)
	require.NoError(t, err)
	assert.InDelta(t, 1/DefaultRegularizer.Epsilon, inv[0][0], 1)
}

func TestInvertRejectsNonSquare(t *testing.T) {
	_, err := Invert(Matrix{{1, 2, 3}, {4, 5, 6}})
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)
}

func TestRegularizerStabilize(t *testing.T) {
	reg := Regularizer{PivotThreshold: 1e-10, Epsilon: 1e-8}

	tests := []struct {
		name    string
		pivot   float64
		changed bool
		sign    float64
	}{
		{"healthy pivot", 0.5, false, 1},
		{"negative healthy pivot", -2, false, -1},
		{"exact zero", 0, true, 1},
		{"tiny positive", 1e-13, true, 1},
		{"tiny negative", -1e-13, true, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, changed := reg.Stabilize(tt.pivot)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.sign, math.Copysign(1, p))
			if changed {
				assert.GreaterOrEqual(t, math.Abs(p), reg.Epsilon)
			} else {
				assert.Equal(t, tt.pivot, p)
			}
		})
	}
}

func TestInverse2x2(t *testing.T) {
	inv, det, ok := Inverse2x2(Matrix{{2, 1}, {1, 2}}, 1e-12)
	require.True(t, ok)
	assert.InDelta(t, 3.0, det, 1e-12)
	assert.InDeltaSlice(t, []float64{2.0 / 3, -1.0 / 3}, inv[0], 1e-12)

	_, det, ok = Inverse2x2(Matrix{{1, 1}, {1, 1}}, 1e-12)
	assert.False(t, ok)
	assert.Equal(t, 0.0, det)

	_, _, ok = Inverse2x2(Matrix{{0, 1}, {1, 0}}, 1e-12)
	assert.False(t, ok, "negative determinant is not a valid covariance")

	for _, m := range []Matrix{nil, {}, {{1}}, {{1, 0}, {0}}, {{1, 0, 0}, {0, 1, 0}}, Identity(3)} {
		var inv Matrix
		require.NotPanics(t, func() { inv, _, ok = Inverse2x2(m, 1e-12) }, "shape %v", m)
		assert.False(t, ok, "shape %v", m)
		assert.Nil(t, inv)
	}
}

func TestDenseBridge(t *testing.T) {
	m := Matrix{{1, 2}, {3, 4}, {5, 6}}
	d := ToDense(m)
	r, c := d.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, m, FromDense(d))
	assert.Equal(t, []float64{2, 4, 6}, Column(d, 1))
}

func TestAddDiagonalDoesNotAlias(t *testing.T) {
	m := Identity(2)
	out := AddDiagonal(m, 0.5)
	assert.Equal(t, 1.0, m[0][0])
	assert.Equal(t, 1.5, out[1][1])
}

func TestInvertLogsRegularizedPivots(t *testing.T) {
	provider, logger := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	defer log.SetProvider(log.NewZerologProvider(os.Stderr, log.LevelWarn))

	_, err := Invert(Matrix{{1, 2}, {2, 4}})
	require.NoError(t, err)

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	entry := entries[len(entries)-1]
	assert.Equal(t, log.OperationInvert, entry[log.OperationKey])
	assert.Equal(t, 1.0, entry[log.RegularizedPivotsKey])
	assert.NotContains(t, entry, "regularized_pivots")
}
