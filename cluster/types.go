// Package cluster implements a two-dimensional Gaussian-mixture clusterer
// fitted by Expectation-Maximization.
//
// The iteration is exposed as a functional state machine (Initialize, Step,
// Run) so a host can animate it one iteration per tick and keep a history
// for playback, and as a GaussianMixture estimator over gonum matrices.
package cluster

import (
	"math"

	"github.com/YuminosukeSato/simulix/core/linalg"
	"github.com/YuminosukeSato/simulix/core/model"
	"github.com/YuminosukeSato/simulix/pkg/errors"
)

const (
	// CovarianceRegularizer は M ステップで共分散の対角に加える値
	CovarianceRegularizer = 1e-6
	// DensityEpsilon はすべての密度に加える値で、負担率が厳密に0になるのを防ぐ
	DensityEpsilon = 1e-10
	// MinDeterminant 以下の行列式は退化とみなし、近似単位行列に置き換える
	MinDeterminant = 1e-12
	// vanishingWeight 未満の有効重みを持つ成分は前回のパラメータを保持する
	vanishingWeight = 1e-10
)

// Point は2次元の観測点
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Component は混合分布の1成分
// Weight は有効重み N_k / N で、表示用。E ステップでは使わない。
type Component struct {
	Mean       [2]float64    `json:"mean"`
	Covariance linalg.Matrix `json:"covariance"`
	Weight     float64       `json:"weight"`
}

// Clone は共分散行列も含めた深いコピーを返す
func (c Component) Clone() Component {
	c.Covariance = c.Covariance.Clone()
	return c
}

// State は EM の1反復後の状態
// Step は常に新しい State を返し、入力の State とスライスを共有しない。
type State struct {
	Phase            model.Phase `json:"phase"`
	Components       []Component `json:"components"`
	Responsibilities [][]float64 `json:"responsibilities,omitempty"`
	Labels           []int       `json:"labels,omitempty"`
	Iteration        int         `json:"iteration"`
	MaxShift         float64     `json:"max_shift"`
	LogLikelihood    float64     `json:"log_likelihood"`
}

// Clone は State の深いコピーを返す
func (s State) Clone() State {
	out := s
	out.Components = make([]Component, len(s.Components))
	for i, c := range s.Components {
		out.Components[i] = c.Clone()
	}
	if s.Responsibilities != nil {
		out.Responsibilities = linalg.Matrix(s.Responsibilities).Clone()
	}
	if s.Labels != nil {
		out.Labels = append([]int(nil), s.Labels...)
	}
	return out
}

// Means は各成分の平均を返す
func (s State) Means() [][2]float64 {
	out := make([][2]float64, len(s.Components))
	for i, c := range s.Components {
		out[i] = c.Mean
	}
	return out
}

// Config は EM クラスタリングのパラメータ
type Config struct {
	NClusters            int     `json:"n_clusters"`
	SamplesPerCluster    int     `json:"samples_per_cluster"`
	MaxIterations        int     `json:"max_iterations"`
	ConvergenceThreshold float64 `json:"convergence_threshold"`

	// DataSeed と InitSeed は再現性のために固定する
	DataSeed uint64 `json:"data_seed"`
	InitSeed uint64 `json:"init_seed"`

	// Spread はデータ生成時のクラスタの標準偏差
	Spread float64 `json:"spread"`
	// CenterRange はクラスタ中心を [-CenterRange, CenterRange]² から選ぶ範囲
	CenterRange float64 `json:"center_range"`
}

// DefaultConfig returns the defaults: 3 clusters of 100 points, seeds 42 and 7.
func DefaultConfig() Config {
	return Config{
		NClusters:            3,
		SamplesPerCluster:    100,
		MaxIterations:        50,
		ConvergenceThreshold: 1e-4,
		DataSeed:             42,
		InitSeed:             7,
		Spread:               1.0,
		CenterRange:          6.0,
	}
}

// Validate はパラメータを検証する
func (c Config) Validate() error {
	if c.NClusters < 1 {
		return errors.NewValidationError("nClusters", "must be >= 1", c.NClusters)
	}
	if c.MaxIterations < 1 {
		return errors.NewValidationError("maxIterations", "must be >= 1", c.MaxIterations)
	}
	if !(c.ConvergenceThreshold > 0) || math.IsInf(c.ConvergenceThreshold, 0) {
		return errors.NewValidationError("convergenceThreshold", "must be a finite positive value", c.ConvergenceThreshold)
	}
	return nil
}
