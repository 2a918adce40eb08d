package bootstrap

import (
	"math"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/metrics"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
)

// Params は一回のブートストラップ実験のパラメータ
type Params struct {
	SampleSize          int        `json:"sample_size"`
	NumBootstrapSamples int        `json:"num_bootstrap_samples"`
	ConfidenceLevel     float64    `json:"confidence_level"`
	Statistic           Statistic  `json:"statistic"`
	Population          Population `json:"population"`
}

// DefaultParams returns the defaults used by the CLI.
func DefaultParams() Params {
	return Params{
		SampleSize:          30,
		NumBootstrapSamples: 1000,
		ConfidenceLevel:     0.95,
		Statistic:           Mean,
		Population:          DefaultPopulation,
	}
}

// Result は一回の実験の結果
type Result struct {
	Original   []float64 `json:"original"`
	Statistics []float64 `json:"statistics"`
	Interval   Interval  `json:"interval"`
	Estimate   float64   `json:"estimate"`
	// StdError はブートストラップ統計量の標準偏差
	StdError   float64   `json:"std_error"`
	TrueValue  float64   `json:"true_value"`
	Bias       float64   `json:"bias"`
	MSE        float64   `json:"mse"`
}

// Run は元データの生成からリサンプル、信頼区間、バイアス/MSE までを実行する
// 正規母集団では平均と中央値の真値はどちらも母平均となる。
func Run(src random.Source, p Params) (*Result, error) {
	original, err := GenerateOriginalData(src, p.SampleSize, p.Population)
	if err != nil {
		return nil, err
	}
	samples, err := GenerateBootstrapSamples(src, original, p.SampleSize, p.NumBootstrapSamples)
	if err != nil {
		return nil, err
	}
	stats, err := ComputeStatistic(samples, p.Statistic)
	if err != nil {
		return nil, err
	}
	interval, err := CalculateConfidenceInterval(stats, p.ConfidenceLevel)
	if err != nil {
		return nil, err
	}

	truth := p.Population.Mean
	bias, mse, err := CalculateBiasAndMSE(stats, truth)
	if err != nil {
		return nil, err
	}
	estimate, _ := metrics.Mean(stats)

	log.GetLoggerWithName("bootstrap").Debug("bootstrap run",
		log.OperationKey, log.OperationResample,
		log.SamplesKey, p.SampleSize,
		log.ResamplesKey, p.NumBootstrapSamples,
		log.MethodKey, string(p.Statistic),
		log.EstimateKey, estimate,
	)

	return &Result{
		Original:   original,
		Statistics: stats,
		Interval:   interval,
		Estimate:   estimate,
		StdError:   math.Sqrt(metrics.SampleVariance(stats)),
		TrueValue:  truth,
		Bias:       bias,
		MSE:        mse,
	}, nil
}

// Coverage は experiments 回の独立な実験を行い、信頼区間が母平均を含んだ割合を返す
func Coverage(src random.Source, p Params, experiments int) (float64, error) {
	if experiments < 1 {
		return 0, errors.NewValidationError("experiments", "must be >= 1", experiments)
	}
	covered := 0
	for i := 0; i < experiments; i++ {
		res, err := Run(src, p)
		if err != nil {
			return 0, errors.Wrapf(err, "coverage experiment %d", i)
		}
		if res.Interval.Contains(p.Population.Mean) {
			covered++
		}
	}
	return float64(covered) / float64(experiments), nil
}
