package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Fitter
	Predictor
	// Score はモデルの決定係数（R²）を計算する
	Score(X, y mat.Matrix) (float64, error)
}

// Clusterer は教師なしクラスタリングのインターフェース
type Clusterer interface {
	// Fit はラベルなしデータでモデルを学習させる（y は無視される）
	Fit(X, y mat.Matrix) error
	Predictor
	// PredictProba は各クラスタへの所属確率を返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}
