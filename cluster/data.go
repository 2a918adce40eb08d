package cluster

import (
	"math"

	"github.com/YuminosukeSato/simulix/core/linalg"
	"github.com/YuminosukeSato/simulix/core/model"
	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/pkg/errors"
)

// Dataset は生成したデータと、その生成に使った正解ラベルと中心
type Dataset struct {
	Points  []Point `json:"points"`
	Labels  []int   `json:"labels"`
	Centers []Point `json:"centers"`
}

// GenerateData は cfg.DataSeed から決定的に、NClusters 個の正規分布の塊を生成する
func GenerateData(cfg Config) (Dataset, error) {
	if cfg.NClusters < 1 {
		return Dataset{}, errors.NewValidationError("nClusters", "must be >= 1", cfg.NClusters)
	}
	if cfg.SamplesPerCluster < 1 {
		return Dataset{}, errors.NewValidationError("samplesPerCluster", "must be >= 1", cfg.SamplesPerCluster)
	}

	src := random.New(cfg.DataSeed)

	ds := Dataset{
		Points:  make([]Point, 0, cfg.NClusters*cfg.SamplesPerCluster),
		Labels:  make([]int, 0, cfg.NClusters*cfg.SamplesPerCluster),
		Centers: make([]Point, cfg.NClusters),
	}
	for k := range ds.Centers {
		ds.Centers[k] = Point{
			X: random.Uniform(src, -cfg.CenterRange, cfg.CenterRange),
			Y: random.Uniform(src, -cfg.CenterRange, cfg.CenterRange),
		}
	}
	for k, c := range ds.Centers {
		for i := 0; i < cfg.SamplesPerCluster; i++ {
			ds.Points = append(ds.Points, Point{
				X: random.Normal(src, c.X, cfg.Spread),
				Y: random.Normal(src, c.Y, cfg.Spread),
			})
			ds.Labels = append(ds.Labels, k)
		}
	}
	return ds, nil
}

// BoundingBox はデータを囲む最小の矩形を返す
func BoundingBox(points []Point) (lo, hi Point) {
	lo = Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range points {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// Initialize は cfg.InitSeed の乱数で、平均をデータの外接矩形内の一様乱数、
// 共分散を単位行列として初期状態を作る
func Initialize(points []Point, cfg Config) (State, error) {
	if len(points) == 0 {
		return State{}, errors.NewModelError("cluster.Initialize", "empty data", errors.ErrEmptyData)
	}
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}

	src := random.New(cfg.InitSeed)
	lo, hi := BoundingBox(points)

	comps := make([]Component, cfg.NClusters)
	for k := range comps {
		comps[k] = Component{
			Mean: [2]float64{
				random.Uniform(src, lo.X, hi.X),
				random.Uniform(src, lo.Y, hi.Y),
			},
			Covariance: linalg.Identity(2),
			Weight:     1 / float64(cfg.NClusters),
		}
	}

	return State{
		Phase:         model.PhaseInitialized,
		Components:    comps,
		LogLikelihood: LogLikelihood(points, comps),
	}, nil
}
