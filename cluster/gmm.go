package cluster

import (
	"sync"

	"github.com/YuminosukeSato/simulix/core/linalg"
	"github.com/YuminosukeSato/simulix/core/model"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// GaussianMixture は EM で学習する2次元ガウス混合モデル
type GaussianMixture struct {
	model.BaseEstimator

	// ハイパーパラメータ
	cfg Config

	// 学習パラメータ
	components_ []Component
	labels_     []int
	nIter_      int
	phase_      model.Phase
	history_    []State

	mu sync.RWMutex
}

// GMMOption はGaussianMixtureの設定オプション
type GMMOption func(*GaussianMixture)

// WithNComponents は成分数を設定
func WithNComponents(n int) GMMOption {
	return func(g *GaussianMixture) {
		g.cfg.NClusters = n
	}
}

// WithMaxIter は最大イテレーション数を設定
func WithMaxIter(maxIter int) GMMOption {
	return func(g *GaussianMixture) {
		g.cfg.MaxIterations = maxIter
	}
}

// WithTol は平均の移動距離による収束判定の閾値を設定
func WithTol(tol float64) GMMOption {
	return func(g *GaussianMixture) {
		g.cfg.ConvergenceThreshold = tol
	}
}

// WithRandomState は初期化の乱数シードを設定
func WithRandomState(seed uint64) GMMOption {
	return func(g *GaussianMixture) {
		g.cfg.InitSeed = seed
	}
}

// NewGaussianMixture は新しいGaussianMixtureを作成
func NewGaussianMixture(options ...GMMOption) *GaussianMixture {
	g := &GaussianMixture{cfg: DefaultConfig()}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func pointsFrom(X mat.Matrix) ([]Point, error) {
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.NewModelError("GaussianMixture", "empty data", errors.ErrEmptyData)
	}
	if cols != 2 {
		return nil, errors.NewDimensionError("GaussianMixture", 2, cols, 1)
	}
	points := make([]Point, rows)
	for i, row := range linalg.FromDense(X) {
		points[i] = Point{X: row[0], Y: row[1]}
	}
	return points, nil
}

// Fit はラベルなしデータ X (n×2) でモデルを学習する。y は無視される
func (g *GaussianMixture) Fit(X, _ mat.Matrix) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	points, err := pointsFrom(X)
	if err != nil {
		return err
	}
	history, err := Run(points, g.cfg)
	if err != nil {
		return err
	}

	final := history[len(history)-1]
	g.components_ = final.Components
	g.labels_ = final.Labels
	g.nIter_ = final.Iteration
	g.phase_ = final.Phase
	g.history_ = history

	g.SetFitted()
	return nil
}

// PredictProba は各成分への負担率 (n×k) を返す
func (g *GaussianMixture) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GaussianMixture", "PredictProba")
	}
	points, err := pointsFrom(X)
	if err != nil {
		return nil, err
	}

	return linalg.ToDense(EStep(points, g.components_)), nil
}

// Predict は負担率が最大の成分の番号 (n×1) を返す
func (g *GaussianMixture) Predict(X mat.Matrix) (mat.Matrix, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GaussianMixture", "Predict")
	}
	points, err := pointsFrom(X)
	if err != nil {
		return nil, err
	}

	labels := Labels(EStep(points, g.components_))
	out := mat.NewDense(len(points), 1, nil)
	for i, l := range labels {
		out.Set(i, 0, float64(l))
	}
	return out, nil
}

// FitPredict は学習と予測を同時に行う
func (g *GaussianMixture) FitPredict(X, y mat.Matrix) (mat.Matrix, error) {
	if err := g.Fit(X, y); err != nil {
		return nil, err
	}
	return g.Predict(X)
}

// Means は学習した各成分の平均を返す
func (g *GaussianMixture) Means() [][2]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return State{Components: g.components_}.Means()
}

// Components は学習した成分のコピーを返す
func (g *GaussianMixture) Components() []Component {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Component, len(g.components_))
	for i, c := range g.components_ {
		out[i] = c.Clone()
	}
	return out
}

// Labels は学習データの各点のラベルを返す
func (g *GaussianMixture) Labels() []int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]int(nil), g.labels_...)
}

// NIterations は実行されたイテレーション数を返す
func (g *GaussianMixture) NIterations() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nIter_
}

// Converged は収束判定を満たして終了したかどうかを返す
func (g *GaussianMixture) Converged() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase_ == model.PhaseConverged
}

// History は学習中のすべての State を返す
func (g *GaussianMixture) History() []State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]State, len(g.history_))
	for i, s := range g.history_ {
		out[i] = s.Clone()
	}
	return out
}

var _ model.Clusterer = (*GaussianMixture)(nil)
