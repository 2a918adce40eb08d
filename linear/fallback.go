package linear

import (
	"math"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/pkg/errors"
)

// FallbackPolicy は回帰の重みが使えない場合の差し替え方針
//
// 重みが非有限、または絶対値が MaxMagnitude を超えた場合、その試行の重みを
// [-Scale, Scale] の一様乱数で置き換える。置き換えた試行も分散の集計に
// 含まれるため、退化した「分散ゼロ」のモデルが曲線を支配しない。
type FallbackPolicy struct {
	MaxMagnitude float64
	Scale        float64
}

// DefaultFallbackPolicy は |w| > 1000 を不正とし、[-0.05, 0.05] で置き換える
var DefaultFallbackPolicy = FallbackPolicy{MaxMagnitude: 1000, Scale: 0.05}

// Check は重みが妥当かどうかを判定し、不正な場合はその理由を返す
func (p FallbackPolicy) Check(weights []float64) (reason string, ok bool) {
	for _, w := range weights {
		if !errors.IsFinite(w) {
			return "non-finite weight", false
		}
	}
	if errors.MaxAbs(weights) > p.MaxMagnitude {
		return "weight magnitude too large", false
	}
	return "", true
}

// Substitute は n 個の小さな乱数の重みを返す
func (p FallbackPolicy) Substitute(src random.Source, n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = random.Uniform(src, -p.Scale, p.Scale)
	}
	return w
}

// apply は重みを検査し、不正なら警告を出して差し替える
func (p FallbackPolicy) apply(src random.Source, degree int, weights []float64) ([]float64, bool) {
	reason, ok := p.Check(weights)
	if ok {
		return weights, false
	}
	maxW := errors.MaxAbs(weights)
	if math.IsNaN(maxW) {
		maxW = math.Inf(1)
	}
	errors.Warn(errors.NewModelFitWarning(degree, reason, maxW))
	return p.Substitute(src, len(weights)), true
}
