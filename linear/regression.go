package linear

import (
	"github.com/YuminosukeSato/simulix/core/linalg"
	"github.com/YuminosukeSato/simulix/core/model"
	"github.com/YuminosukeSato/simulix/metrics"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PolynomialRegression は1変数の多項式回帰モデル
type PolynomialRegression struct {
	model.BaseEstimator // BaseEstimatorを埋め込み
	degree int
	opts   []Option
	fitted PolynomialModel
}

// NewPolynomialRegression は新しい多項式回帰モデルを作成する
func NewPolynomialRegression(degree int, opts ...Option) *PolynomialRegression {
	return &PolynomialRegression{degree: degree, opts: opts}
}

// Fit はモデルを訓練データで学習させる
// X は n×1 の特徴量、y は n×1 の列ベクトル
func (pr *PolynomialRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("PolynomialRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if c != 1 {
		return errors.NewDimensionError("PolynomialRegression.Fit", 1, c, 1)
	}
	if ry != r {
		return errors.NewDimensionError("PolynomialRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("PolynomialRegression.Fit", "y must be a column vector")
	}

	m, err := FitPolynomialModel(linalg.Column(X, 0), linalg.Column(y, 0), pr.degree, pr.opts...)
	if err != nil {
		return err
	}
	pr.fitted = m

	// モデルを学習済み状態に設定
	pr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (pr *PolynomialRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !pr.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialRegression", "Predict")
	}

	r, c := X.Dims()
	if c != 1 {
		return nil, errors.NewDimensionError("PolynomialRegression.Predict", 1, c, 1)
	}

	preds := pr.fitted.PredictAll(linalg.Column(X, 0))
	return mat.NewDense(r, 1, preds), nil
}

// Weights は学習された重み（次数の昇順）を返す
func (pr *PolynomialRegression) Weights() []float64 {
	if !pr.IsFitted() {
		return nil
	}
	return append([]float64(nil), pr.fitted.Weights...)
}

// Model は学習された PolynomialModel を返す
func (pr *PolynomialRegression) Model() PolynomialModel {
	return pr.fitted
}

// Degree は多項式の次数を返す
func (pr *PolynomialRegression) Degree() int {
	return pr.degree
}

// Score はモデルの決定係数（R²）を計算する
func (pr *PolynomialRegression) Score(X, y mat.Matrix) (float64, error) {
	if !pr.IsFitted() {
		return 0, errors.NewNotFittedError("PolynomialRegression", "Score")
	}

	yPred, err := pr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(linalg.Column(y, 0), linalg.Column(yPred, 0))
}

const polynomialModelType = "PolynomialRegression"

// ExportWeights はモデルの重みをエクスポートする
func (pr *PolynomialRegression) ExportWeights() (*model.ModelWeights, error) {
	if !pr.IsFitted() {
		return nil, errors.NewNotFittedError(polynomialModelType, "ExportWeights")
	}
	coeffs := pr.Weights()
	return &model.ModelWeights{
		ModelType:       polynomialModelType,
		Version:         model.WeightsVersion,
		Coefficients:    coeffs,
		IsFitted:        true,
		Hyperparameters: map[string]interface{}{"degree": pr.degree},
		Metadata: map[string]interface{}{
			"fallback": pr.fitted.Fallback,
			"checksum": model.Checksum(coeffs),
		},
	}, nil
}

// ImportWeights はエクスポートされた重みを読み込み、学習済み状態にする
// 次数は係数の個数から決まる
func (pr *PolynomialRegression) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValueError("PolynomialRegression.ImportWeights", "weights cannot be nil")
	}
	if weights.ModelType != polynomialModelType {
		return errors.NewValidationError("model_type", "expected "+polynomialModelType, weights.ModelType)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if !weights.IsFitted {
		return errors.NewValueError("PolynomialRegression.ImportWeights", "weights are not fitted")
	}

	fallback, _ := weights.Metadata["fallback"].(bool)
	pr.fitted = PolynomialModel{
		Weights:  append([]float64(nil), weights.Coefficients...),
		Fallback: fallback,
	}
	pr.degree = pr.fitted.Degree()
	pr.SetFitted()
	return nil
}
