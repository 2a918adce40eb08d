package linear

import (
	"context"
	"math"
	"time"

	"github.com/YuminosukeSato/simulix/core/parallel"
	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/metrics"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
)

const (
	// DomainMin と DomainMax は学習データと評価グリッドの定義域
	DomainMin = -1.0
	DomainMax = 1.0

	// MinDegree から MaxDegree までの次数でトレードオフ曲線を計算する
	MinDegree = 1
	MaxDegree = 15

	// EvaluationPoints は評価グリッドの点数
	EvaluationPoints = 50

	// DefaultTrials は次数ごとの独立試行数
	DefaultTrials = 50

	// 残差分散が noiseCollapseRatio·noiseLevel² を下回る場合はノイズ源の退化とみなす
	noiseCollapseRatio = 1e-6
)

// TrueFunction は真の関数 exp(-0.5x)·sin(2πx)
func TrueFunction(x float64) float64 {
	return math.Exp(-0.5*x) * math.Sin(2*math.Pi*x)
}

// EvaluationGrid は定義域を等間隔に区切った評価点を返す
func EvaluationGrid() []float64 {
	grid := make([]float64, EvaluationPoints)
	step := (DomainMax - DomainMin) / float64(EvaluationPoints-1)
	for i := range grid {
		grid[i] = DomainMin + float64(i)*step
	}
	return grid
}

// GenerateTrainingData は定義域の一様乱数 x と y = f(x) + N(0, noiseLevel²) を生成する
//
// ノイズの経験分散が消失している場合（乱数源の退化など）は
// NumericalInstabilityError を返す。
func GenerateTrainingData(src random.Source, sampleSize int, noiseLevel float64) (x, y []float64, err error) {
	if sampleSize < 1 {
		return nil, nil, errors.NewValidationError("sampleSize", "must be >= 1", sampleSize)
	}
	if noiseLevel < 0 || !errors.IsFinite(noiseLevel) {
		return nil, nil, errors.NewValidationError("noiseLevel", "must be a finite value >= 0", noiseLevel)
	}

	x = make([]float64, sampleSize)
	y = make([]float64, sampleSize)
	residuals := make([]float64, sampleSize)
	for i := range x {
		x[i] = random.Uniform(src, DomainMin, DomainMax)
		residuals[i] = random.Normal(src, 0, noiseLevel)
		y[i] = TrueFunction(x[i]) + residuals[i]
	}

	if noiseLevel > 0 && sampleSize >= 2 && metrics.SampleVariance(residuals) < noiseCollapseRatio*noiseLevel*noiseLevel {
		shown := residuals
		if len(shown) > 5 {
			shown = shown[:5]
		}
		return nil, nil, errors.NewNumericalInstabilityError("noise_generation", shown, 0)
	}
	return x, y, nil
}

// BiasVariance はバイアス²・分散・総誤差の分解結果
// Bias, Variance, Total は評価点での平均値
type BiasVariance struct {
	Bias     float64 `json:"bias"`
	Variance float64 `json:"variance"`
	Total    float64 `json:"total"`

	PointBias     []float64 `json:"point_bias"`
	PointVariance []float64 `json:"point_variance"`
	PointTotal    []float64 `json:"point_total"`
}

// CalculateBiasVariance は predictions[trial][point] からバイアス²と分散を計算する
// 分散は試行間の不偏分散（trials-1 で割る）で、試行が1回以下なら0とする。
func CalculateBiasVariance(predictions [][]float64, trueValues []float64) (BiasVariance, error) {
	if len(predictions) == 0 || len(trueValues) == 0 {
		return BiasVariance{}, errors.NewModelError("CalculateBiasVariance", "empty data", errors.ErrEmptyData)
	}
	points := len(trueValues)
	for _, row := range predictions {
		if len(row) != points {
			return BiasVariance{}, errors.NewDimensionError("CalculateBiasVariance", points, len(row), 1)
		}
	}

	bv := BiasVariance{
		PointBias:     make([]float64, points),
		PointVariance: make([]float64, points),
		PointTotal:    make([]float64, points),
	}
	column := make([]float64, len(predictions))
	for j := 0; j < points; j++ {
		for t, row := range predictions {
			column[t] = row[j]
		}
		mean, _ := metrics.Mean(column)
		bias := (mean - trueValues[j]) * (mean - trueValues[j])
		variance := metrics.SampleVariance(column)

		bv.PointBias[j] = bias
		bv.PointVariance[j] = variance
		bv.PointTotal[j] = bias + variance

		bv.Bias += bias
		bv.Variance += variance
	}
	bv.Bias /= float64(points)
	bv.Variance /= float64(points)
	bv.Total = bv.Bias + bv.Variance
	return bv, nil
}

// TradeoffParams はトレードオフ曲線の計算パラメータ
type TradeoffParams struct {
	SampleSize int     `json:"samples"`
	NoiseLevel float64 `json:"noise"`
	// Trials が0の場合は DefaultTrials を使う
	Trials int `json:"trials,omitempty"`
}

// Validate はパラメータを検証する
func (p TradeoffParams) Validate() error {
	if p.SampleSize < 1 {
		return errors.NewValidationError("samples", "must be >= 1", p.SampleSize)
	}
	if p.NoiseLevel < 0 || !errors.IsFinite(p.NoiseLevel) {
		return errors.NewValidationError("noise", "must be a finite value >= 0", p.NoiseLevel)
	}
	if p.Trials < 0 {
		return errors.NewValidationError("trials", "must be >= 0", p.Trials)
	}
	return nil
}

// TradeoffCurve は次数ごとのバイアス²・分散・総誤差
type TradeoffCurve struct {
	Degrees  []int     `json:"degrees"`
	Bias     []float64 `json:"bias"`
	Variance []float64 `json:"variance"`
	Total    []float64 `json:"total"`
	// Noise は既約誤差 noiseLevel²
	Noise float64 `json:"-"`
}

// CalculateTradeoffCurve は次数 1..15 のそれぞれについて独立試行を繰り返し、
// 評価グリッド上で平均したバイアス²・分散・総誤差を返す
//
// 次数ごとに src から順番に派生させた乱数源を使うため、シード付きの src なら
// 並列実行でも結果は再現する。ctx がキャンセルされると ctx.Err() を返す。
func CalculateTradeoffCurve(ctx context.Context, params TradeoffParams, src random.Source) (*TradeoffCurve, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	trials := params.Trials
	if trials == 0 {
		trials = DefaultTrials
	}

	logger := log.GetLoggerWithName("linear").With(
		log.ComponentKey, "linear",
		log.OperationKey, log.OperationTradeoff,
	)
	start := time.Now()

	numDegrees := MaxDegree - MinDegree + 1
	sources := make([]random.Source, numDegrees)
	for i := range sources {
		sources[i] = random.Derive(src)
	}

	grid := EvaluationGrid()
	truth := make([]float64, len(grid))
	for i, x := range grid {
		truth[i] = TrueFunction(x)
	}

	curve := &TradeoffCurve{
		Degrees:  make([]int, numDegrees),
		Bias:     make([]float64, numDegrees),
		Variance: make([]float64, numDegrees),
		Total:    make([]float64, numDegrees),
		Noise:    params.NoiseLevel * params.NoiseLevel,
	}

	err := parallel.ForEach(ctx, numDegrees, func(ctx context.Context, i int) error {
		degree := MinDegree + i
		rng := sources[i]

		predictions := make([][]float64, trials)
		for t := 0; t < trials; t++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			x, y, err := GenerateTrainingData(rng, params.SampleSize, params.NoiseLevel)
			if err != nil {
				return err
			}
			m, err := FitPolynomialModel(x, y, degree, WithRandomSource(rng))
			if err != nil {
				return err
			}
			predictions[t] = m.PredictAll(grid)
		}

		bv, err := CalculateBiasVariance(predictions, truth)
		if err != nil {
			return err
		}
		if err := errors.CheckNumericalStability("bias_variance", []float64{bv.Bias, bv.Variance, bv.Total}, degree); err != nil {
			return err
		}
		curve.Degrees[i] = degree
		curve.Bias[i] = bv.Bias
		curve.Variance[i] = bv.Variance
		curve.Total[i] = bv.Total

		logger.Debug("degree evaluated",
			log.DegreeKey, degree,
			log.TrialsKey, trials,
			log.BiasKey, bv.Bias,
			log.VarianceKey, bv.Variance,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("tradeoff curve calculated",
		log.SamplesKey, params.SampleSize,
		log.TrialsKey, trials,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return curve, nil
}
