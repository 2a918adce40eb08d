package cluster

import (
	"math"

	"github.com/YuminosukeSato/simulix/core/linalg"
	"github.com/YuminosukeSato/simulix/core/model"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
	"gonum.org/v1/gonum/floats"
)

// fallbackCovariance は退化した共分散の代わりに使う近似単位行列
func fallbackCovariance() linalg.Matrix {
	return linalg.AddDiagonal(linalg.Identity(2), CovarianceRegularizer)
}

// Density は点 p における成分 c の2変量正規密度に DensityEpsilon を加えた値を返す
// 共分散が退化している場合や 2×2 でない場合は近似単位行列で計算し、NaN や Inf は返さない。
func Density(p Point, c Component) float64 {
	inv, det, ok := linalg.Inverse2x2(c.Covariance, MinDeterminant)
	if !ok {
		inv, det, _ = linalg.Inverse2x2(fallbackCovariance(), MinDeterminant)
	}

	dx := p.X - c.Mean[0]
	dy := p.Y - c.Mean[1]
	mahal := dx*(inv[0][0]*dx+inv[0][1]*dy) + dy*(inv[1][0]*dx+inv[1][1]*dy)

	d := math.Exp(-0.5*mahal) / (2 * math.Pi * math.Sqrt(det))
	if !errors.IsFinite(d) {
		d = 0
	}
	return d + DensityEpsilon
}

// EStep は各点の各成分に対する負担率を計算する。各行の和は1になる
func EStep(points []Point, comps []Component) [][]float64 {
	resp := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, len(comps))
		for k, c := range comps {
			row[k] = Density(p, c)
		}
		floats.Scale(1/floats.Sum(row), row)
		resp[i] = row
	}
	return resp
}

// MStep は負担率から各成分の平均と共分散を更新する
// 有効重みが消失した成分は prev のパラメータをそのまま保持する。
func MStep(points []Point, resp [][]float64, prev []Component) []Component {
	n := float64(len(points))
	comps := make([]Component, len(prev))
	for k := range prev {
		var nk, mx, my float64
		for i, p := range points {
			r := resp[i][k]
			nk += r
			mx += r * p.X
			my += r * p.Y
		}
		if nk < vanishingWeight {
			comps[k] = prev[k].Clone()
			continue
		}
		mx /= nk
		my /= nk

		cov := linalg.New(2, 2)
		for i, p := range points {
			r := resp[i][k]
			dx, dy := p.X-mx, p.Y-my
			cov[0][0] += r * dx * dx
			cov[0][1] += r * dx * dy
			cov[1][1] += r * dy * dy
		}
		cov[0][0] = cov[0][0]/nk + CovarianceRegularizer
		cov[0][1] /= nk
		cov[1][0] = cov[0][1]
		cov[1][1] = cov[1][1]/nk + CovarianceRegularizer

		comps[k] = Component{
			Mean:       [2]float64{mx, my},
			Covariance: cov,
			Weight:     nk / n,
		}
	}
	return comps
}

// LogLikelihood は重み付き混合分布の対数尤度を返す（診断用）
func LogLikelihood(points []Point, comps []Component) float64 {
	var ll float64
	for _, p := range points {
		var mix float64
		for _, c := range comps {
			mix += c.Weight * Density(p, c)
		}
		ll += errors.StabilizeLog(mix)
	}
	return ll
}

// Labels は負担率が最大の成分の番号を返す
func Labels(resp [][]float64) []int {
	labels := make([]int, len(resp))
	for i, row := range resp {
		labels[i] = floats.MaxIdx(row)
	}
	return labels
}

// maxMeanShift は成分の平均の移動距離の最大値
func maxMeanShift(prev, next []Component) float64 {
	var shift float64
	for k := range prev {
		dx := next[k].Mean[0] - prev[k].Mean[0]
		dy := next[k].Mean[1] - prev[k].Mean[1]
		shift = math.Max(shift, math.Hypot(dx, dy))
	}
	return shift
}

// Step は E ステップと M ステップを1回ずつ行い、新しい State を返す
//
// 平均の最大移動距離が ConvergenceThreshold 未満なら PhaseConverged、
// 反復回数が MaxIterations に達したら PhaseMaxIterationsReached となる。
// 終端状態の State はコピーをそのまま返す。
func Step(points []Point, state State, cfg Config) (State, error) {
	if len(points) == 0 {
		return State{}, errors.NewModelError("cluster.Step", "empty data", errors.ErrEmptyData)
	}
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}
	if state.Phase == model.PhaseUninitialized || state.Phase == "" {
		return State{}, errors.NewModelError("cluster.Step", "state is not initialized", nil)
	}
	if state.Phase.Terminal() {
		return state.Clone(), nil
	}
	if len(state.Components) != cfg.NClusters {
		return State{}, errors.NewDimensionError("cluster.Step", cfg.NClusters, len(state.Components), 1)
	}

	resp := EStep(points, state.Components)
	comps := MStep(points, resp, state.Components)

	next := State{
		Phase:            model.PhaseRunning,
		Components:       comps,
		Responsibilities: resp,
		Labels:           Labels(resp),
		Iteration:        state.Iteration + 1,
		MaxShift:         maxMeanShift(state.Components, comps),
		LogLikelihood:    LogLikelihood(points, comps),
	}

	switch {
	case next.MaxShift < cfg.ConvergenceThreshold:
		next.Phase = model.PhaseConverged
	case next.Iteration >= cfg.MaxIterations:
		next.Phase = model.PhaseMaxIterationsReached
		errors.Warn(errors.NewConvergenceWarning("EM", next.Iteration,
			"mean shift still above the convergence threshold"))
	}

	logger := log.GetLoggerWithName("cluster.em")
	logger.Debug("EM step",
		log.OperationKey, log.OperationStep,
		log.IterationKey, next.Iteration,
		log.MaxShiftKey, next.MaxShift,
		log.LogLikelihoodKey, next.LogLikelihood,
		log.PhaseKey, string(next.Phase),
	)
	return next, nil
}

// Run は初期化から終端状態までを実行し、初期状態を含むすべての State を返す
func Run(points []Point, cfg Config) ([]State, error) {
	state, err := Initialize(points, cfg)
	if err != nil {
		return nil, err
	}

	history := []State{state}
	for !state.Phase.Terminal() {
		state, err = Step(points, state, cfg)
		if err != nil {
			return nil, err
		}
		history = append(history, state)
	}

	log.GetLoggerWithName("cluster.em").Info("EM finished",
		log.OperationKey, log.OperationRun,
		log.ClustersKey, cfg.NClusters,
		log.SamplesKey, len(points),
		log.IterationKey, state.Iteration,
		log.PhaseKey, string(state.Phase),
	)
	return history, nil
}
