package sampling

import (
	"context"
	"math"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/metrics"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
	"golang.org/x/sync/errgroup"
)

// ConvergencePoint はサンプル数 N での試行平均
type ConvergencePoint struct {
	N         int     `json:"n"`
	Estimate  float64 `json:"estimate"`
	Error     float64 `json:"error"`
	AbsError  float64 `json:"abs_error"`
	TrueValue float64 `json:"true_value"`
}

// SampleSizes は 10 から maxSamples まで対数的に増えるサンプル数の列を返す
func SampleSizes(maxSamples, steps int) []int {
	if maxSamples < 1 || steps < 1 {
		return nil
	}
	lo := math.Log10(math.Min(10, float64(maxSamples)))
	hi := math.Log10(float64(maxSamples))

	var sizes []int
	for i := 0; i < steps; i++ {
		f := 0.0
		if steps > 1 {
			f = float64(i) / float64(steps-1)
		}
		n := int(math.Round(math.Pow(10, lo+f*(hi-lo))))
		if len(sizes) == 0 || n > sizes[len(sizes)-1] {
			sizes = append(sizes, n)
		}
	}
	return sizes
}

// Convergence は各サンプル数について trials 回の推定を平均し、真値との差を返す
func Convergence(ctx context.Context, src random.Source, m Method, p Params, sizes []int, trials int) ([]ConvergencePoint, error) {
	est, err := Lookup(m)
	if err != nil {
		return nil, err
	}
	if trials < 1 {
		return nil, errors.NewValidationError("nTrialsConv", "must be >= 1", trials)
	}

	truth := TrueValue(p.Scale)
	out := make([]ConvergencePoint, 0, len(sizes))
	for _, n := range sizes {
		var sumEst, sumErr float64
		for t := 0; t < trials; t++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e, err := est(src, n, p)
			if err != nil {
				return nil, err
			}
			sumEst += e.Estimate
			sumErr += e.Error
		}
		mean := sumEst / float64(trials)
		out = append(out, ConvergencePoint{
			N:         n,
			Estimate:  mean,
			Error:     sumErr / float64(trials),
			AbsError:  math.Abs(mean - truth),
			TrueValue: truth,
		})
	}
	return out, nil
}

// VarianceResult は同じ条件で繰り返した推定値の経験的な平均と分散
type VarianceResult struct {
	Method    Method    `json:"method"`
	Mean      float64   `json:"mean"`
	Variance  float64   `json:"variance"`
	Estimates []float64 `json:"estimates"`
}

// CompareVariance は3つの推定法をそれぞれ trials 回実行し、推定値の分散を比較する
// 推定法ごとに src から順に派生させた乱数源を使い、並行に実行する。
func CompareVariance(ctx context.Context, src random.Source, n, trials int, p Params) ([]VarianceResult, error) {
	if trials < 2 {
		return nil, errors.NewValidationError("nTrialsVar", "must be >= 2", trials)
	}

	methods := Methods()
	sources := make([]random.Source, len(methods))
	for i := range sources {
		sources[i] = random.Derive(src)
	}

	results := make([]VarianceResult, len(methods))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range methods {
		g.Go(func() error {
			est, err := Lookup(m)
			if err != nil {
				return err
			}
			values := make([]float64, trials)
			for t := range values {
				if err := ctx.Err(); err != nil {
					return err
				}
				e, err := est(sources[i], n, p)
				if err != nil {
					return errors.Wrapf(err, "method %s", m)
				}
				values[t] = e.Estimate
			}
			mean, _ := metrics.Mean(values)
			results[i] = VarianceResult{
				Method:    m,
				Mean:      mean,
				Variance:  metrics.SampleVariance(values),
				Estimates: values,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("sampling")
	for _, r := range results {
		logger.Debug("estimator variance",
			log.OperationKey, log.OperationEstimate,
			log.MethodKey, string(r.Method),
			log.SamplesKey, n,
			log.TrialsKey, trials,
			log.EstimateKey, r.Mean,
			log.VarianceKey, r.Variance,
		)
	}
	return results, nil
}
