package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/simulix/anneal"
	"github.com/YuminosukeSato/simulix/bootstrap"
	"github.com/YuminosukeSato/simulix/cluster"
	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/linear"
	"github.com/YuminosukeSato/simulix/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
)

func saveAll(t *testing.T, p *plot.Plot) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(p, path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}
}

func TestTradeoffPlot(t *testing.T) {
	curve, err := linear.CalculateTradeoffCurve(context.Background(),
		linear.TradeoffParams{SampleSize: 20, NoiseLevel: 0.2, Trials: 3}, random.New(1))
	require.NoError(t, err)

	p, err := TradeoffPlot(curve)
	require.NoError(t, err)
	saveAll(t, p)

	_, err = TradeoffPlot(&linear.TradeoffCurve{})
	assert.Error(t, err)
}

func TestFitPlot(t *testing.T) {
	src := random.New(3)
	x, y, err := linear.GenerateTrainingData(src, 30, 0.2)
	require.NoError(t, err)
	model, err := linear.FitPolynomialModel(x, y, 3, linear.WithRandomSource(src))
	require.NoError(t, err)

	p, err := FitPlot(x, y, model)
	require.NoError(t, err)
	saveAll(t, p)
}

func TestBootstrapHistogram(t *testing.T) {
	res, err := bootstrap.Run(random.New(5), bootstrap.DefaultParams())
	require.NoError(t, err)

	p, err := BootstrapHistogram(res)
	require.NoError(t, err)
	saveAll(t, p)

	_, err = BootstrapHistogram(&bootstrap.Result{})
	assert.Error(t, err)
}

func TestClusterScatter(t *testing.T) {
	cfg := cluster.DefaultConfig()
	data, err := cluster.GenerateData(cfg)
	require.NoError(t, err)
	history, err := cluster.Run(data.Points, cfg)
	require.NoError(t, err)

	p, err := ClusterScatter(data.Points, history[len(history)-1])
	require.NoError(t, err)
	saveAll(t, p)

	// 初期化直後の状態はラベルを持たない
	p, err = ClusterScatter(data.Points, history[0])
	require.NoError(t, err)
	saveAll(t, p)
}

func TestAnnealingPlots(t *testing.T) {
	src := random.New(9)
	cities := anneal.RandomCities(src, 12)
	state, trace, err := anneal.RunTSP(src, cities, anneal.TSPParams{InitialTemperature: 500, CoolingRate: 0.99, TotalIterations: 300})
	require.NoError(t, err)

	p, err := AnnealingTrace("TSP", trace)
	require.NoError(t, err)
	saveAll(t, p)

	p, err = TourPlot(cities, state.BestPath)
	require.NoError(t, err)
	saveAll(t, p)

	_, err = TourPlot(cities, []int{1, 1})
	assert.Error(t, err)

	_, err = AnnealingTrace("empty", anneal.Trace{})
	assert.Error(t, err)
}

func TestConvergencePlot(t *testing.T) {
	src := random.New(11)
	sizes := sampling.SampleSizes(2000, 6)
	curves := map[sampling.Method][]sampling.ConvergencePoint{}
	for _, m := range sampling.Methods() {
		pts, err := sampling.Convergence(context.Background(), random.Derive(src), m, sampling.DefaultParams, sizes, 2)
		require.NoError(t, err)
		curves[m] = pts
	}

	p, err := ConvergencePlot(curves)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(p, &buf, "png"))
	assert.Equal(t, []byte("\x89PNG"), buf.Bytes()[:4])

	_, err = ConvergencePlot(nil)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "png", FormatOf("a/b/trace.PNG"))
	assert.Equal(t, "svg", FormatOf("x.svg"))
	assert.Equal(t, "", FormatOf("noext"))
}
