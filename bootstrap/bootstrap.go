// Package bootstrap implements bootstrap resampling, per-resample statistics,
// percentile confidence intervals and bias/MSE against a known parameter.
package bootstrap

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/simulix/core/parallel"
	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/metrics"
	"github.com/YuminosukeSato/simulix/pkg/errors"
)

// Population は元データを生成する正規母集団
type Population struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// DefaultPopulation は N(50, 10²)
var DefaultPopulation = Population{Mean: 50, StdDev: 10}

// Statistic はリサンプルごとに計算する統計量の種類
type Statistic string

const (
	// Mean は標本平均
	Mean Statistic = "mean"
	// Median は標本中央値
	Median Statistic = "median"
)

// ParseStatistic は文字列から Statistic を得る
func ParseStatistic(s string) (Statistic, error) {
	switch Statistic(s) {
	case Mean, Median:
		return Statistic(s), nil
	default:
		return "", errors.NewValidationError("statistic", "must be mean or median", s)
	}
}

// Interval はパーセンタイル法による信頼区間。Lower <= Upper を満たす
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains は v が区間に含まれるかどうかを返す
func (iv Interval) Contains(v float64) bool {
	return iv.Lower <= v && v <= iv.Upper
}

// Width は区間の幅を返す
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// GenerateOriginalData は母集団から size 個の正規乱数を生成する
func GenerateOriginalData(src random.Source, size int, pop Population) ([]float64, error) {
	if size < 1 {
		return nil, errors.NewValidationError("sampleSize", "must be >= 1", size)
	}
	return random.NormalSample(src, size, pop.Mean, pop.StdDev), nil
}

// GenerateBootstrapSamples は original から復元抽出したサイズ sampleSize の
// リサンプルを numSamples 個作る
func GenerateBootstrapSamples(src random.Source, original []float64, sampleSize, numSamples int) ([][]float64, error) {
	if len(original) == 0 {
		return nil, errors.NewModelError("GenerateBootstrapSamples", "empty original data", errors.ErrEmptyData)
	}
	if sampleSize < 1 {
		return nil, errors.NewValidationError("sampleSize", "must be >= 1", sampleSize)
	}
	if numSamples < 1 {
		return nil, errors.NewValidationError("numBootstrapSamples", "must be >= 1", numSamples)
	}

	samples := make([][]float64, numSamples)
	for b := range samples {
		s := make([]float64, sampleSize)
		for i := range s {
			s[i] = original[src.IntN(len(original))]
		}
		samples[b] = s
	}
	return samples, nil
}

// parallelThreshold を超えるリサンプル数では統計量を並列に計算する
const parallelThreshold = 256

// ComputeStatistic は各リサンプルの統計量を計算する
func ComputeStatistic(samples [][]float64, kind Statistic) ([]float64, error) {
	if len(samples) == 0 {
		return nil, errors.NewModelError("ComputeStatistic", "no samples", errors.ErrEmptyData)
	}

	if kind != Mean && kind != Median {
		return nil, errors.NewValidationError("statistic", "must be mean or median", string(kind))
	}
	for _, s := range samples {
		if len(s) == 0 {
			return nil, errors.NewModelError("ComputeStatistic", "empty resample", errors.ErrEmptyData)
		}
	}

	// リサンプルが多いときは CPU コアに分割する
	out := make([]float64, len(samples))
	parallel.ParallelizeWithThreshold(len(samples), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if kind == Median {
				out[i] = median(samples[i])
			} else {
				out[i], _ = metrics.Mean(samples[i])
			}
		}
	})
	return out, nil
}

// median はコピーをソートして中央値を返す。偶数長では中央2値の平均
func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// CalculateConfidenceInterval はパーセンタイル法で信頼区間を求める
//
// α = 1 - level として、昇順に並べた統計量の floor(n·α/2) 番目を下限、
// ceil(n·(1-α/2)) - 1 番目を上限とする。
func CalculateConfidenceInterval(stats []float64, level float64) (Interval, error) {
	if len(stats) == 0 {
		return Interval{}, errors.NewModelError("CalculateConfidenceInterval", "no statistics", errors.ErrEmptyData)
	}
	if !(level > 0 && level < 1) {
		return Interval{}, errors.NewValidationError("confidenceLevel", "must be in (0, 1)", level)
	}

	sorted := append([]float64(nil), stats...)
	sort.Float64s(sorted)

	n := len(sorted)
	alpha := 1 - level
	lo := int(math.Floor(float64(n) * alpha / 2))
	hi := int(math.Ceil(float64(n)*(1-alpha/2))) - 1

	lo = errors.ClipInt(lo, 0, n-1)
	hi = errors.ClipInt(hi, lo, n-1)

	return Interval{Lower: sorted[lo], Upper: sorted[hi]}, nil
}

// CalculateBiasAndMSE は統計量の分布の真値に対するバイアスと MSE を返す
// bias = |mean(stats) - trueValue|、MSE は trueValue からの二乗偏差の平均
func CalculateBiasAndMSE(stats []float64, trueValue float64) (bias, mse float64, err error) {
	m, err := metrics.Mean(stats)
	if err != nil {
		return 0, 0, errors.NewModelError("CalculateBiasAndMSE", "no statistics", errors.ErrEmptyData)
	}
	mse, err = metrics.MSEAgainst(stats, trueValue)
	if err != nil {
		return 0, 0, err
	}
	return math.Abs(m - trueValue), mse, nil
}
