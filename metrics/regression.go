// Package metrics provides the summary statistics and error measures shared
// by the estimators: sample moments, standard errors, and regression errors.
package metrics

import (
	"math"

	"github.com/YuminosukeSato/simulix/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("MSE", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("MSE", n, len(yPred), 0)
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("R2Score", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("R2Score", n, len(yPred), 0)
	}

	yMean := stat.Mean(yTrue, nil)

	var tss, rss float64
	for i := 0; i < n; i++ {
		tss += (yTrue[i] - yMean) * (yTrue[i] - yMean)
		rss += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
	}

	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// MSEAgainst は定数 truth からの平均二乗偏差を計算する。
// 標本平均ではなく真値を基準にする点が MSE の推定量評価に必要。
func MSEAgainst(xs []float64, truth float64) (float64, error) {
	if len(xs) == 0 {
		return 0, errors.NewValueError("MSEAgainst", "empty vector")
	}
	var sum float64
	for _, x := range xs {
		d := x - truth
		sum += d * d
	}
	return sum / float64(len(xs)), nil
}

// Mean returns the arithmetic mean, or an error for empty input.
func Mean(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, errors.NewValueError("Mean", "empty vector")
	}
	return floats.Sum(xs) / float64(len(xs)), nil
}

// SampleVariance returns the unbiased (n-1) variance. A single observation
// has variance zero rather than NaN.
func SampleVariance(xs []float64) float64 {
	if len(xs) <= 1 {
		return 0
	}
	return stat.Variance(xs, nil)
}

// StandardError returns sqrt(SampleVariance(xs) / n).
func StandardError(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return math.Sqrt(SampleVariance(xs) / float64(len(xs)))
}

// WeightedVariance returns Σ wᵢ(xᵢ − center)² for weights that sum to one.
func WeightedVariance(xs, weights []float64, center float64) (float64, error) {
	if len(xs) != len(weights) {
		return 0, errors.NewDimensionError("WeightedVariance", len(xs), len(weights), 0)
	}
	var v float64
	for i, x := range xs {
		d := x - center
		v += weights[i] * d * d
	}
	return v, nil
}
