package chart

import (
	"fmt"

	"github.com/YuminosukeSato/simulix/anneal"
	"github.com/YuminosukeSato/simulix/bootstrap"
	"github.com/YuminosukeSato/simulix/cluster"
	"github.com/YuminosukeSato/simulix/linear"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/sampling"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// histogramBins はブートストラップ分布のビン数
const histogramBins = 30

// TradeoffPlot は次数ごとのバイアス²・分散・総誤差と既約誤差の水準を描く
func TradeoffPlot(curve *linear.TradeoffCurve) (*plot.Plot, error) {
	if curve == nil || len(curve.Degrees) == 0 {
		return nil, errors.NewModelError("TradeoffPlot", "plot", errors.ErrEmptyData)
	}
	xs := make([]float64, len(curve.Degrees))
	for i, d := range curve.Degrees {
		xs[i] = float64(d)
	}

	p := newPlot("Bias-variance tradeoff", "polynomial degree", "error")
	for i, s := range []struct {
		name string
		ys   []float64
	}{
		{"bias²", curve.Bias},
		{"variance", curve.Variance},
		{"total", curve.Total},
	} {
		if err := addLine(p, i, s.name, series(xs, s.ys)); err != nil {
			return nil, err
		}
	}
	if curve.Noise > 0 {
		noise := plotter.XYs{{X: xs[0], Y: curve.Noise}, {X: xs[len(xs)-1], Y: curve.Noise}}
		if err := addLine(p, 3, "noise²", noise); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// FitPlot は学習データ、真の関数、フィットした多項式を重ねて描く
func FitPlot(x, y []float64, model linear.PolynomialModel) (*plot.Plot, error) {
	if len(x) == 0 {
		return nil, errors.NewModelError("FitPlot", "plot", errors.ErrEmptyData)
	}
	p := newPlot(fmt.Sprintf("Polynomial fit (degree %d)", model.Degree()), "x", "y")
	if err := addPoints(p, 0, "samples", series(x, y), vg.Points(2.5)); err != nil {
		return nil, err
	}

	grid := linear.EvaluationGrid()
	truth := make([]float64, len(grid))
	for i, g := range grid {
		truth[i] = linear.TrueFunction(g)
	}
	if err := addLine(p, 1, "true function", series(grid, truth)); err != nil {
		return nil, err
	}
	if err := addLine(p, 2, "fit", series(grid, model.PredictAll(grid))); err != nil {
		return nil, err
	}
	return p, nil
}

// BootstrapHistogram はブートストラップ統計量の分布、信頼区間、真値を描く
func BootstrapHistogram(res *bootstrap.Result) (*plot.Plot, error) {
	if res == nil || len(res.Statistics) == 0 {
		return nil, errors.NewModelError("BootstrapHistogram", "plot", errors.ErrEmptyData)
	}
	p := newPlot("Bootstrap distribution", "statistic", "count")

	h, err := plotter.NewHist(plotter.Values(res.Statistics), histogramBins)
	if err != nil {
		return nil, errors.Wrap(err, "histogram")
	}
	p.Add(h)

	// 縦線の高さはヒストグラムの最大ビンに合わせる
	top := 0.0
	for _, b := range h.Bins {
		top = max(top, b.Weight)
	}
	vline := func(x float64) plotter.XYs {
		return plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}}
	}
	if err := addLine(p, 1, "CI lower", vline(res.Interval.Lower)); err != nil {
		return nil, err
	}
	if err := addLine(p, 1, "CI upper", vline(res.Interval.Upper)); err != nil {
		return nil, err
	}
	if err := addLine(p, 2, "true value", vline(res.TrueValue)); err != nil {
		return nil, err
	}
	return p, nil
}

// ClusterScatter は点を state のハードラベルで色分けし、各成分の平均を大きな点で描く
func ClusterScatter(points []cluster.Point, state cluster.State) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, errors.NewModelError("ClusterScatter", "plot", errors.ErrEmptyData)
	}
	k := len(state.Components)
	groups := make([]plotter.XYs, max(k, 1))
	for i, pt := range points {
		label := 0
		if i < len(state.Labels) && state.Labels[i] >= 0 && state.Labels[i] < len(groups) {
			label = state.Labels[i]
		}
		groups[label] = append(groups[label], plotter.XY{X: pt.X, Y: pt.Y})
	}

	title := fmt.Sprintf("EM clustering (iteration %d, %s)", state.Iteration, state.Phase)
	p := newPlot(title, "x", "y")
	for i, g := range groups {
		if len(g) == 0 {
			continue
		}
		if err := addPoints(p, i, fmt.Sprintf("cluster %d", i), g, vg.Points(2)); err != nil {
			return nil, err
		}
	}
	for i, m := range state.Means() {
		mean := plotter.XYs{{X: m[0], Y: m[1]}}
		if err := addPoints(p, i, "", mean, vg.Points(6)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AnnealingTrace は現在値と最良値の推移を描く
func AnnealingTrace(title string, trace anneal.Trace) (*plot.Plot, error) {
	if len(trace.Best) == 0 {
		return nil, errors.NewModelError("AnnealingTrace", "plot", errors.ErrEmptyData)
	}
	p := newPlot(title, "iteration", "value")
	if err := addLine(p, 0, "current", indexed(trace.Current)); err != nil {
		return nil, err
	}
	if err := addLine(p, 1, "best", indexed(trace.Best)); err != nil {
		return nil, err
	}
	return p, nil
}

// TourPlot は都市と巡回路（都市 0 から出て戻る）を描く
func TourPlot(cities []anneal.City, tour []int) (*plot.Plot, error) {
	if len(cities) == 0 {
		return nil, errors.NewModelError("TourPlot", "plot", errors.ErrEmptyData)
	}
	if err := anneal.ValidateTour(tour, len(cities)); err != nil {
		return nil, err
	}
	path := make(plotter.XYs, 0, len(tour)+2)
	path = append(path, plotter.XY{X: cities[0].X, Y: cities[0].Y})
	for _, idx := range tour {
		path = append(path, plotter.XY{X: cities[idx].X, Y: cities[idx].Y})
	}
	path = append(path, path[0])

	p := newPlot("Best tour", "x", "y")
	if err := addLine(p, 0, "tour", path); err != nil {
		return nil, err
	}
	if err := addPoints(p, 1, "cities", path[:len(path)-1], vg.Points(3)); err != nil {
		return nil, err
	}
	return p, nil
}

// ConvergencePlot はサンプル数に対する推定値の推移を推定法ごとに描き、真値を水平線で示す
func ConvergencePlot(curves map[sampling.Method][]sampling.ConvergencePoint) (*plot.Plot, error) {
	p := newPlot("Importance sampling convergence", "samples", "estimate")
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	var (
		lo, hi    float64
		truth     float64
		haveRange bool
	)
	for i, m := range sampling.Methods() {
		pts := curves[m]
		if len(pts) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xys[j] = plotter.XY{X: float64(pt.N), Y: pt.Estimate}
		}
		if err := addLine(p, i, string(m), xys); err != nil {
			return nil, err
		}
		if !haveRange {
			lo, hi = float64(pts[0].N), float64(pts[0].N)
			haveRange = true
		}
		lo = min(lo, float64(pts[0].N))
		hi = max(hi, float64(pts[len(pts)-1].N))
		truth = pts[0].TrueValue
	}
	if !haveRange {
		return nil, errors.NewModelError("ConvergencePlot", "plot", errors.ErrEmptyData)
	}
	if err := addLine(p, 3, "true value", plotter.XYs{{X: lo, Y: truth}, {X: hi, Y: truth}}); err != nil {
		return nil, err
	}
	return p, nil
}
