// Package sampling implements plain Monte Carlo, importance sampling and
// self-normalized importance sampling estimators of E_f[h(X)] for a standard
// normal target f, a unit-variance normal proposal g(·; t) and the integrand
// h(x) = exp(scale·x).
//
// All estimators share the Estimator signature so convergence and variance
// sweeps can treat them uniformly.
package sampling

import (
	"math"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/metrics"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Params は提案分布の平均 t と被積分関数のスケール
type Params struct {
	ProposalT float64 `json:"proposal_t"`
	Scale     float64 `json:"scale"`
}

// DefaultParams は t = 1.0, scale = 0.5
var DefaultParams = Params{ProposalT: 1.0, Scale: 0.5}

// Estimate は推定値とその標準誤差
type Estimate struct {
	Estimate float64 `json:"estimate"`
	Error    float64 `json:"error"`
}

// Estimator は n 個のサンプルから E_f[h(X)] を推定する
type Estimator func(src random.Source, n int, p Params) (Estimate, error)

var target = distuv.UnitNormal

// TargetDensity は標準正規分布の密度 f(x)
func TargetDensity(x float64) float64 {
	return target.Prob(x)
}

// ProposalDensity は平均 t、分散1の正規分布の密度 g(x; t)
func ProposalDensity(x, t float64) float64 {
	return distuv.Normal{Mu: t, Sigma: 1}.Prob(x)
}

// Integrand は h(x) = exp(scale·x)
func Integrand(x, scale float64) float64 {
	return math.Exp(scale * x)
}

// TrueValue は E_f[exp(scale·X)] = exp(scale²/2) の解析解
func TrueValue(scale float64) float64 {
	return math.Exp(scale * scale / 2)
}

// importanceWeight は f(x)/g(x; t) を対数密度の差から計算する
func importanceWeight(x, t float64) float64 {
	return errors.StabilizeExp(target.LogProb(x) - distuv.Normal{Mu: t, Sigma: 1}.LogProb(x))
}

func validate(n int, p Params) error {
	if n < 1 {
		return errors.NewValidationError("n", "must be >= 1", n)
	}
	if !errors.IsFinite(p.ProposalT) {
		return errors.NewValidationError("proposalT", "must be finite", p.ProposalT)
	}
	if !errors.IsFinite(p.Scale) {
		return errors.NewValidationError("scale", "must be finite", p.Scale)
	}
	return nil
}

// sampleNormal は src から N(mu, 1) の乱数を n 個生成する
func sampleNormal(src random.Source, n int, mu float64) []float64 {
	return random.NormalSample(src, n, mu, 1)
}

func meanWithError(values []float64) Estimate {
	m, _ := metrics.Mean(values)
	return Estimate{Estimate: m, Error: metrics.StandardError(values)}
}

// MCEstimate は目標分布から直接サンプルする素朴なモンテカルロ推定
// p.ProposalT は使わない。
func MCEstimate(src random.Source, n int, p Params) (Estimate, error) {
	if err := validate(n, p); err != nil {
		return Estimate{}, err
	}
	xs := sampleNormal(src, n, 0)
	for i, x := range xs {
		xs[i] = Integrand(x, p.Scale)
	}
	return meanWithError(xs), nil
}

// ISEstimate は g(·; t) からサンプルし、h(x)·f(x)/g(x; t) を平均する重点サンプリング推定
func ISEstimate(src random.Source, n int, p Params) (Estimate, error) {
	if err := validate(n, p); err != nil {
		return Estimate{}, err
	}
	xs := sampleNormal(src, n, p.ProposalT)
	for i, x := range xs {
		xs[i] = Integrand(x, p.Scale) * importanceWeight(x, p.ProposalT)
	}
	est := meanWithError(xs)
	if err := errors.CheckScalar("importance_sampling", est.Estimate, 0); err != nil {
		return Estimate{}, err
	}
	return est, nil
}

// NormalizedISEstimate は重みを和が1になるよう正規化した自己正規化重点サンプリング推定
//
// 推定値は重み付き和 Σ w̃ᵢ hᵢ で、分散は推定値まわりの重み付き分散
// Σ w̃ᵢ (hᵢ - est)²、標準誤差は sqrt(分散 / n) とする。
func NormalizedISEstimate(src random.Source, n int, p Params) (Estimate, error) {
	if err := validate(n, p); err != nil {
		return Estimate{}, err
	}
	xs := sampleNormal(src, n, p.ProposalT)

	h := make([]float64, n)
	w := make([]float64, n)
	for i, x := range xs {
		h[i] = Integrand(x, p.Scale)
		w[i] = importanceWeight(x, p.ProposalT)
	}

	total := floats.Sum(w)
	if !(total > 0) || !errors.IsFinite(total) {
		return Estimate{}, errors.NewNumericalInstabilityError("normalized_importance_weights", []float64{total}, 0)
	}
	floats.Scale(1/total, w)

	est := floats.Dot(w, h)
	variance, err := metrics.WeightedVariance(h, w, est)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Estimate: est, Error: math.Sqrt(variance / float64(n))}, nil
}

// Method は推定法の名前
type Method string

const (
	// MethodMC は素朴なモンテカルロ
	MethodMC Method = "mc"
	// MethodStandard は重点サンプリング
	MethodStandard Method = "standard"
	// MethodNormalized は自己正規化重点サンプリング
	MethodNormalized Method = "normalized"
)

// Methods は全推定法を一定の順序で返す
func Methods() []Method {
	return []Method{MethodMC, MethodStandard, MethodNormalized}
}

// Lookup は名前から Estimator を得る
func Lookup(m Method) (Estimator, error) {
	switch m {
	case MethodMC:
		return MCEstimate, nil
	case MethodStandard:
		return ISEstimate, nil
	case MethodNormalized:
		return NormalizedISEstimate, nil
	default:
		return nil, errors.NewValidationError("method", "must be one of mc, standard, normalized", string(m))
	}
}
