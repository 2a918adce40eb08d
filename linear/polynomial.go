// Package linear implements least-squares polynomial regression and the
// bias-variance tradeoff estimator built on it.
package linear

import (
	"github.com/YuminosukeSato/simulix/core/linalg"
	"github.com/YuminosukeSato/simulix/pkg/errors"
)

// PolynomialModel は多項式モデルの重み [w0, w1, ..., wd]（次数の昇順）
type PolynomialModel struct {
	Weights []float64 `json:"weights"`
	// Fallback は重みが FallbackPolicy によって差し替えられたことを示す
	Fallback bool `json:"fallback,omitempty"`
}

// Degree は多項式の次数を返す
func (m PolynomialModel) Degree() int {
	return len(m.Weights) - 1
}

// Predict はホーナー法で x における値を計算する
func (m PolynomialModel) Predict(x float64) float64 {
	var y float64
	for i := len(m.Weights) - 1; i >= 0; i-- {
		y = y*x + m.Weights[i]
	}
	return y
}

// PredictAll は xs の各点における予測値を返す
func (m PolynomialModel) PredictAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Predict(x)
	}
	return out
}

// DesignMatrix はバイアス列と 1..degree 乗の列からなるヴァンデルモンド行列を作る
func DesignMatrix(x []float64, degree int) linalg.Matrix {
	X := linalg.New(len(x), degree+1)
	for i, xi := range x {
		p := 1.0
		for j := 0; j <= degree; j++ {
			X[i][j] = p
			p *= xi
		}
	}
	return X
}

// FitPolynomialModel は最小二乗法で多項式をフィットする
// 正規方程式 w = (XᵀX + λI)⁻¹ Xᵀy を使用
//
// 重みが不正な場合はエラーを返さず、FallbackPolicy で差し替えた上で
// ModelFitWarning を errors.Warn に通知する。
func FitPolynomialModel(x, y []float64, degree int, opts ...Option) (PolynomialModel, error) {
	if degree < 1 {
		return PolynomialModel{}, errors.NewValidationError("degree", "must be >= 1", degree)
	}
	if len(x) == 0 {
		return PolynomialModel{}, errors.NewModelError("FitPolynomialModel", "empty data", errors.ErrEmptyData)
	}
	if len(y) != len(x) {
		return PolynomialModel{}, errors.NewDimensionError("FitPolynomialModel", len(x), len(y), 0)
	}

	cfg := newFitConfig(opts)

	X := DesignMatrix(x, degree)
	XT := linalg.Transpose(X)

	XTX, err := linalg.Multiply(XT, X)
	if err != nil {
		return PolynomialModel{}, err
	}
	XTXInv, err := linalg.Invert(linalg.AddDiagonal(XTX, cfg.ridge))
	if err != nil {
		return PolynomialModel{}, err
	}

	XTy, err := linalg.MultiplyVec(XT, y)
	if err != nil {
		return PolynomialModel{}, err
	}
	weights, err := linalg.MultiplyVec(XTXInv, XTy)
	if err != nil {
		return PolynomialModel{}, err
	}

	weights, replaced := cfg.fallback.apply(cfg.src, degree, weights)
	return PolynomialModel{Weights: weights, Fallback: replaced}, nil
}
