package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/simulix/anneal"
	"github.com/YuminosukeSato/simulix/bootstrap"
	"github.com/YuminosukeSato/simulix/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreInRange(t *testing.T) {
	d := Default()
	assert.Equal(t, *d, d.Clamp(), "defaults must already satisfy Clamp")

	require.NoError(t, d.Tradeoff.Params().Validate())
	require.NoError(t, d.EM.Params().Validate())
	require.NoError(t, d.TSP.Params().Validate())
	require.NoError(t, d.Toy.Params().Validate())
}

func TestClampTradeoff(t *testing.T) {
	tests := []struct {
		name string
		in   TradeoffConfig
		want TradeoffConfig
	}{
		{"below", TradeoffConfig{0, 0.0, 1, 0}, TradeoffConfig{1, 0.05, 20, 1}},
		{"above", TradeoffConfig{40, 5, 1000, 1e6}, TradeoffConfig{15, 1.0, 200, 500}},
		{"inside", TradeoffConfig{7, 0.4, 50, 10}, TradeoffConfig{7, 0.4, 50, 10}},
		{"nan noise", TradeoffConfig{3, math.NaN(), 30, 5}, TradeoffConfig{3, 0.3, 30, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp())
		})
	}
}

func TestClampBootstrap(t *testing.T) {
	got := BootstrapConfig{
		SampleSize:          1,
		NumBootstrapSamples: 5000,
		ConfidenceLevel:     1.5,
		Statistic:           "mode",
		PopulationMean:      math.Inf(1),
		PopulationStdDev:    -2,
	}.Clamp()

	assert.Equal(t, 10, got.SampleSize)
	assert.Equal(t, 1000, got.NumBootstrapSamples)
	assert.Equal(t, 0.99, got.ConfidenceLevel)
	assert.Equal(t, bootstrap.Mean, got.Statistic)
	assert.Equal(t, bootstrap.DefaultPopulation.Mean, got.PopulationMean)
	assert.Equal(t, bootstrap.DefaultPopulation.StdDev, got.PopulationStdDev)

	median := DefaultBootstrap()
	median.Statistic = bootstrap.Median
	assert.Equal(t, bootstrap.Median, median.Clamp().Params().Statistic)
}

func TestClampEM(t *testing.T) {
	got := EMConfig{SamplesPerCluster: 10, NClusters: 9, MaxIterations: 1000, ConvergenceThreshold: 0}.Clamp()
	assert.Equal(t, 50, got.SamplesPerCluster)
	assert.Equal(t, 5, got.NClusters)
	assert.Equal(t, 100, got.MaxIterations)
	assert.Equal(t, DefaultEM().ConvergenceThreshold, got.ConvergenceThreshold)
}

func TestClampImportance(t *testing.T) {
	got := ImportanceConfig{Method: sampling.MethodMC, ProposalT: -10, ScaleH: 3, NTrialsVar: 0}.Clamp()
	assert.Equal(t, sampling.MethodStandard, got.Method)
	assert.Equal(t, -3.0, got.ProposalT)
	assert.Equal(t, 1.0, got.ScaleH)
	assert.Equal(t, 2, got.NTrialsVar)
	assert.Equal(t, 10, got.MaxSamples)
}

func TestClampAnnealing(t *testing.T) {
	tsp := TSPConfig{InitialTemperature: -1, CoolingRate: 1, TotalIterations: 0, Cities: 1}.Clamp()
	assert.Equal(t, DefaultTSP().InitialTemperature, tsp.InitialTemperature)
	assert.Less(t, tsp.CoolingRate, 1.0)
	assert.Equal(t, 1, tsp.TotalIterations)
	assert.Equal(t, 3, tsp.Cities)
	require.NoError(t, tsp.Params().Validate())

	toy := ToyConfig{R: 64, NeighborType: "teleport", CoolingSchedule: "cubic", Coefficients: []float64{math.NaN()}}.Clamp()
	assert.Equal(t, anneal.MaxBits, toy.R)
	assert.Equal(t, anneal.SingleBitFlip, toy.NeighborType)
	assert.Equal(t, anneal.Geometric, toy.CoolingSchedule)
	assert.Equal(t, DefaultToy().Coefficients, toy.Coefficients)
	require.NoError(t, toy.Params().Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, *Default(), *cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simulix.yaml")
	content := `
seed: 99
tradeoff:
  noise_level: 0.5
  sample_size: 500
bootstrap:
  statistic: median
toy:
  r: 6
  neighbor_type: random_walk
  coefficients: [1, -2, 0.5]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SIMULIX_EM_N_CLUSTERS", "4")
	t.Setenv("SIMULIX_TRADEOFF_NOISE_LEVEL", "0.25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, 0.25, cfg.Tradeoff.NoiseLevel, "environment overrides the file")
	assert.Equal(t, 200, cfg.Tradeoff.SampleSize, "clamped")
	assert.Equal(t, bootstrap.Median, cfg.Bootstrap.Statistic)
	assert.Equal(t, 4, cfg.EM.NClusters)
	assert.Equal(t, 6, cfg.Toy.R)
	assert.Equal(t, anneal.RandomWalk, cfg.Toy.NeighborType)
	assert.Equal(t, []float64{1, -2, 0.5}, cfg.Toy.Coefficients)
	assert.Equal(t, DefaultTSP(), cfg.TSP, "untouched sections keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteThenLoad(t *testing.T) {
	cfg := Default()
	cfg.Seed = 7
	cfg.Importance.Method = sampling.MethodNormalized
	cfg.Toy.Coefficients = []float64{0, 1}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	assert.Contains(t, buf.String(), "proposal_t:")

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, *cfg, *loaded)
}
