package linear

import (
	"context"
	"math"
	"testing"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrueFunction(t *testing.T) {
	assert.InDelta(t, 0, TrueFunction(0), 1e-12)
	assert.InDelta(t, math.Exp(-0.125), TrueFunction(0.25), 1e-12)
}

func TestEvaluationGrid(t *testing.T) {
	grid := EvaluationGrid()
	require.Len(t, grid, EvaluationPoints)
	assert.Equal(t, DomainMin, grid[0])
	assert.InDelta(t, DomainMax, grid[len(grid)-1], 1e-12)
}

func TestGenerateTrainingData(t *testing.T) {
	x, y, err := GenerateTrainingData(random.New(5), 500, 0.3)
	require.NoError(t, err)
	require.Len(t, x, 500)

	var sum, sumSq float64
	for i := range x {
		assert.True(t, x[i] >= DomainMin && x[i] < DomainMax)
		r := y[i] - TrueFunction(x[i])
		sum += r
		sumSq += r * r
	}
	mean := sum / 500
	std := math.Sqrt(sumSq/500 - mean*mean)
	assert.InDelta(t, 0, mean, 0.06)
	assert.InDelta(t, 0.3, std, 0.05)
}

func TestGenerateTrainingDataDetectsCollapsedNoise(t *testing.T) {
	// 同じ一様乱数を返し続ける退化した乱数源
	values := make([]float64, 64)
	for i := range values {
		values[i] = 0.5
	}
	_, _, err := GenerateTrainingData(random.NewSequence(values...), 10, 0.5)

	var nerr *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &nerr), "got %v", err)
	assert.Equal(t, "noise_generation", nerr.Operation)
}

func TestGenerateTrainingDataTinyNoise(t *testing.T) {
	src := random.New(11)
	for _, noise := range []float64{1e-5, 1e-6, 1e-7, 1e-12} {
		for i := 0; i < 50; i++ {
			_, y, err := GenerateTrainingData(src, 30, noise)
			require.NoError(t, err, "noise %g, call %d", noise, i)
			require.Len(t, y, 30)
		}
	}
}

func TestGenerateTrainingDataValidation(t *testing.T) {
	_, _, err := GenerateTrainingData(random.New(1), 0, 0.1)
	assert.Error(t, err)
	_, _, err = GenerateTrainingData(random.New(1), 10, -1)
	assert.Error(t, err)
}

func TestCalculateBiasVariance(t *testing.T) {
	predictions := [][]float64{
		{1, 2},
		{3, 2},
	}
	truth := []float64{1, 2}

	bv, err := CalculateBiasVariance(predictions, truth)
	require.NoError(t, err)

	// 点0: 平均2、bias² = 1、不偏分散 = 2
	// 点1: 平均2、bias² = 0、分散 = 0
	assert.InDelta(t, 1, bv.PointBias[0], 1e-12)
	assert.InDelta(t, 2, bv.PointVariance[0], 1e-12)
	assert.InDelta(t, 0, bv.PointVariance[1], 1e-12)
	assert.InDelta(t, 0.5, bv.Bias, 1e-12)
	assert.InDelta(t, 1, bv.Variance, 1e-12)
	assert.InDelta(t, 1.5, bv.Total, 1e-12)
}

func TestCalculateBiasVarianceSingleTrial(t *testing.T) {
	bv, err := CalculateBiasVariance([][]float64{{1, 5}}, []float64{0, 5})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(bv.Variance))
	assert.Equal(t, 0.0, bv.Variance)
	assert.InDelta(t, 0.5, bv.Bias, 1e-12)
}

func TestCalculateBiasVarianceErrors(t *testing.T) {
	_, err := CalculateBiasVariance(nil, []float64{1})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = CalculateBiasVariance([][]float64{{1, 2}, {1}}, []float64{1, 2})
	var derr *errors.DimensionError
	assert.True(t, errors.As(err, &derr))
}

func TestCalculateTradeoffCurveShape(t *testing.T) {
	curve, err := CalculateTradeoffCurve(context.Background(), TradeoffParams{SampleSize: 30, NoiseLevel: 0.3, Trials: 5}, random.New(1))
	require.NoError(t, err)

	require.Len(t, curve.Degrees, MaxDegree)
	require.Len(t, curve.Bias, MaxDegree)
	require.Len(t, curve.Variance, MaxDegree)
	require.Len(t, curve.Total, MaxDegree)
	for i, d := range curve.Degrees {
		assert.Equal(t, i+1, d)
		assert.InDelta(t, curve.Bias[i]+curve.Variance[i], curve.Total[i], 1e-12)
		assert.False(t, math.IsNaN(curve.Total[i]))
	}
	assert.InDelta(t, 0.09, curve.Noise, 1e-12)
}

func TestCalculateTradeoffCurveReproducible(t *testing.T) {
	params := TradeoffParams{SampleSize: 25, NoiseLevel: 0.2, Trials: 4}

	a, err := CalculateTradeoffCurve(context.Background(), params, random.New(99))
	require.NoError(t, err)
	b, err := CalculateTradeoffCurve(context.Background(), params, random.New(99))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCalculateTradeoffCurveTrend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical trend test in short mode")
	}

	curve, err := CalculateTradeoffCurve(context.Background(), TradeoffParams{SampleSize: 30, NoiseLevel: 0.3, Trials: 60}, random.New(2024))
	require.NoError(t, err)

	// 個々の次数ではなく曲線全体の傾向を比較する
	minMidBias := math.Inf(1)
	for d := 4; d <= 8; d++ {
		minMidBias = math.Min(minMidBias, curve.Bias[d-1])
	}
	assert.Less(t, minMidBias, curve.Bias[0], "bias² should drop as the degree grows")

	mean := func(xs []float64) float64 {
		var s float64
		for _, x := range xs {
			s += x
		}
		return s / float64(len(xs))
	}
	lowVariance := mean(curve.Variance[0:3])
	highVariance := mean(curve.Variance[7:15])
	assert.Greater(t, highVariance, lowVariance, "variance should grow with the degree")
}

func TestCalculateTradeoffCurveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CalculateTradeoffCurve(ctx, TradeoffParams{SampleSize: 20, NoiseLevel: 0.1}, random.New(1))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestCalculateTradeoffCurveValidation(t *testing.T) {
	_, err := CalculateTradeoffCurve(context.Background(), TradeoffParams{SampleSize: 0, NoiseLevel: 0.1}, random.New(1))
	var verr *errors.ValidationError
	assert.True(t, errors.As(err, &verr))
}
