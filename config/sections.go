package config

import (
	"math"

	"github.com/YuminosukeSato/simulix/anneal"
	"github.com/YuminosukeSato/simulix/bootstrap"
	"github.com/YuminosukeSato/simulix/cluster"
	"github.com/YuminosukeSato/simulix/linear"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/sampling"
)

// clampFloat は v を [lo, hi] に収める。NaN は fallback になる
func clampFloat(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return errors.ClipValue(v, lo, hi)
}

// positive は v が有限の正の値ならそのまま、そうでなければ fallback を返す
func positive(v, fallback float64) float64 {
	if v > 0 && !math.IsInf(v, 0) {
		return v
	}
	return fallback
}

// ============================================================================
// Bias-variance
// ============================================================================

// TradeoffConfig はバイアス・バリアンスのデモの設定
type TradeoffConfig struct {
	// PolynomialDegree は単一フィットの表示に使う次数
	PolynomialDegree int     `mapstructure:"polynomial_degree" yaml:"polynomial_degree"`
	NoiseLevel       float64 `mapstructure:"noise_level" yaml:"noise_level"`
	SampleSize       int     `mapstructure:"sample_size" yaml:"sample_size"`
	Trials           int     `mapstructure:"trials" yaml:"trials"`
}

const (
	minNoiseLevel = 0.05
	maxNoiseLevel = 1.0
	minTradeoffN  = 20
	maxTradeoffN  = 200
	maxTrials     = 500
)

// DefaultTradeoff は次数 3、ノイズ 0.3、30 サンプル
func DefaultTradeoff() TradeoffConfig {
	return TradeoffConfig{PolynomialDegree: 3, NoiseLevel: 0.3, SampleSize: 30, Trials: linear.DefaultTrials}
}

// Clamp は degree 1..15, noise 0.05..1.0, samples 20..200 に収める
func (c TradeoffConfig) Clamp() TradeoffConfig {
	c.PolynomialDegree = errors.ClipInt(c.PolynomialDegree, linear.MinDegree, linear.MaxDegree)
	c.NoiseLevel = clampFloat(c.NoiseLevel, minNoiseLevel, maxNoiseLevel, DefaultTradeoff().NoiseLevel)
	c.SampleSize = errors.ClipInt(c.SampleSize, minTradeoffN, maxTradeoffN)
	c.Trials = errors.ClipInt(c.Trials, 1, maxTrials)
	return c
}

// Params は linear.CalculateTradeoffCurve の引数に変換する
func (c TradeoffConfig) Params() linear.TradeoffParams {
	return linear.TradeoffParams{SampleSize: c.SampleSize, NoiseLevel: c.NoiseLevel, Trials: c.Trials}
}

// ============================================================================
// Bootstrap
// ============================================================================

// BootstrapConfig はブートストラップの設定
type BootstrapConfig struct {
	SampleSize          int                 `mapstructure:"sample_size" yaml:"sample_size"`
	NumBootstrapSamples int                 `mapstructure:"num_bootstrap_samples" yaml:"num_bootstrap_samples"`
	ConfidenceLevel     float64             `mapstructure:"confidence_level" yaml:"confidence_level"`
	Statistic           bootstrap.Statistic `mapstructure:"statistic" yaml:"statistic"`
	PopulationMean      float64             `mapstructure:"population_mean" yaml:"population_mean"`
	PopulationStdDev    float64             `mapstructure:"population_std_dev" yaml:"population_std_dev"`
}

// DefaultBootstrap は bootstrap.DefaultParams と同じ値
func DefaultBootstrap() BootstrapConfig {
	p := bootstrap.DefaultParams()
	return BootstrapConfig{
		SampleSize:          p.SampleSize,
		NumBootstrapSamples: p.NumBootstrapSamples,
		ConfidenceLevel:     p.ConfidenceLevel,
		Statistic:           p.Statistic,
		PopulationMean:      p.Population.Mean,
		PopulationStdDev:    p.Population.StdDev,
	}
}

// Clamp は sampleSize 10..100, resamples 50..1000, level 0.80..0.99 に収める
func (c BootstrapConfig) Clamp() BootstrapConfig {
	d := DefaultBootstrap()
	c.SampleSize = errors.ClipInt(c.SampleSize, 10, 100)
	c.NumBootstrapSamples = errors.ClipInt(c.NumBootstrapSamples, 50, 1000)
	c.ConfidenceLevel = clampFloat(c.ConfidenceLevel, 0.80, 0.99, d.ConfidenceLevel)
	c.Statistic = clampStatistic(c.Statistic)
	if math.IsNaN(c.PopulationMean) || math.IsInf(c.PopulationMean, 0) {
		c.PopulationMean = d.PopulationMean
	}
	c.PopulationStdDev = positive(c.PopulationStdDev, d.PopulationStdDev)
	return c
}

// Params は bootstrap.Run の引数に変換する
func (c BootstrapConfig) Params() bootstrap.Params {
	return bootstrap.Params{
		SampleSize:          c.SampleSize,
		NumBootstrapSamples: c.NumBootstrapSamples,
		ConfidenceLevel:     c.ConfidenceLevel,
		Statistic:           c.Statistic,
		Population:          bootstrap.Population{Mean: c.PopulationMean, StdDev: c.PopulationStdDev},
	}
}

// ============================================================================
// EM clustering
// ============================================================================

// EMConfig は EM クラスタリングの設定
type EMConfig struct {
	SamplesPerCluster    int     `mapstructure:"samples_per_cluster" yaml:"samples_per_cluster"`
	NClusters            int     `mapstructure:"n_clusters" yaml:"n_clusters"`
	MaxIterations        int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	ConvergenceThreshold float64 `mapstructure:"convergence_threshold" yaml:"convergence_threshold"`
	DataSeed             uint64  `mapstructure:"data_seed" yaml:"data_seed"`
	InitSeed             uint64  `mapstructure:"init_seed" yaml:"init_seed"`
}

// DefaultEM は cluster.DefaultConfig と同じ値
func DefaultEM() EMConfig {
	d := cluster.DefaultConfig()
	return EMConfig{
		SamplesPerCluster:    d.SamplesPerCluster,
		NClusters:            d.NClusters,
		MaxIterations:        d.MaxIterations,
		ConvergenceThreshold: d.ConvergenceThreshold,
		DataSeed:             d.DataSeed,
		InitSeed:             d.InitSeed,
	}
}

// Clamp は samplesPerCluster 50..300, nClusters 2..5, maxIterations 10..100 に収める
func (c EMConfig) Clamp() EMConfig {
	c.SamplesPerCluster = errors.ClipInt(c.SamplesPerCluster, 50, 300)
	c.NClusters = errors.ClipInt(c.NClusters, 2, 5)
	c.MaxIterations = errors.ClipInt(c.MaxIterations, 10, 100)
	c.ConvergenceThreshold = positive(c.ConvergenceThreshold, DefaultEM().ConvergenceThreshold)
	return c
}

// Params は cluster.Config に変換する。分布の形は cluster.DefaultConfig のまま
func (c EMConfig) Params() cluster.Config {
	cfg := cluster.DefaultConfig()
	cfg.SamplesPerCluster = c.SamplesPerCluster
	cfg.NClusters = c.NClusters
	cfg.MaxIterations = c.MaxIterations
	cfg.ConvergenceThreshold = c.ConvergenceThreshold
	cfg.DataSeed = c.DataSeed
	cfg.InitSeed = c.InitSeed
	return cfg
}

// ============================================================================
// Importance sampling
// ============================================================================

// ImportanceConfig は重点サンプリングの設定
type ImportanceConfig struct {
	Method      sampling.Method `mapstructure:"method" yaml:"method"`
	ProposalT   float64         `mapstructure:"proposal_t" yaml:"proposal_t"`
	ScaleH      float64         `mapstructure:"scale_h" yaml:"scale_h"`
	NDemo       int             `mapstructure:"n_demo" yaml:"n_demo"`
	NTrialsConv int             `mapstructure:"n_trials_conv" yaml:"n_trials_conv"`
	NTrialsVar  int             `mapstructure:"n_trials_var" yaml:"n_trials_var"`
	MaxSamples  int             `mapstructure:"max_samples" yaml:"max_samples"`
}

const maxImportanceSamples = 1_000_000

// DefaultImportance は standard, t = 1.0, scale = 0.5
func DefaultImportance() ImportanceConfig {
	return ImportanceConfig{
		Method:      sampling.MethodStandard,
		ProposalT:   sampling.DefaultParams.ProposalT,
		ScaleH:      sampling.DefaultParams.Scale,
		NDemo:       1000,
		NTrialsConv: 20,
		NTrialsVar:  200,
		MaxSamples:  10000,
	}
}

// Clamp は method standard|normalized, proposalT -3..3, scaleH 0.1..1.0 に収める
func (c ImportanceConfig) Clamp() ImportanceConfig {
	d := DefaultImportance()
	if c.Method != sampling.MethodStandard && c.Method != sampling.MethodNormalized {
		c.Method = d.Method
	}
	c.ProposalT = clampFloat(c.ProposalT, -3, 3, d.ProposalT)
	c.ScaleH = clampFloat(c.ScaleH, 0.1, 1.0, d.ScaleH)
	c.NDemo = errors.ClipInt(c.NDemo, 1, maxImportanceSamples)
	c.NTrialsConv = errors.ClipInt(c.NTrialsConv, 1, 10000)
	c.NTrialsVar = errors.ClipInt(c.NTrialsVar, 2, 10000)
	c.MaxSamples = errors.ClipInt(c.MaxSamples, 10, maxImportanceSamples)
	return c
}

// Params は sampling の推定量の引数に変換する
func (c ImportanceConfig) Params() sampling.Params {
	return sampling.Params{ProposalT: c.ProposalT, Scale: c.ScaleH}
}

// ============================================================================
// Annealing
// ============================================================================

// TSPConfig は TSP 焼きなましの設定
type TSPConfig struct {
	InitialTemperature float64 `mapstructure:"initial_temperature" yaml:"initial_temperature"`
	CoolingRate        float64 `mapstructure:"cooling_rate" yaml:"cooling_rate"`
	TotalIterations    int     `mapstructure:"total_iterations" yaml:"total_iterations"`
	// Cities はランダム生成する都市の数
	Cities int `mapstructure:"cities" yaml:"cities"`
}

const (
	minCoolingRate = 0.5
	maxCoolingRate = 0.9999
	maxAnnealIter  = 1_000_000
)

// DefaultTSP は anneal.DefaultTSPParams と 20 都市
func DefaultTSP() TSPConfig {
	p := anneal.DefaultTSPParams()
	return TSPConfig{
		InitialTemperature: p.InitialTemperature,
		CoolingRate:        p.CoolingRate,
		TotalIterations:    p.TotalIterations,
		Cities:             20,
	}
}

// Clamp は coolingRate を (0, 1) の内側に、都市数を 3..200 に収める
func (c TSPConfig) Clamp() TSPConfig {
	d := DefaultTSP()
	c.InitialTemperature = positive(c.InitialTemperature, d.InitialTemperature)
	c.CoolingRate = clampFloat(c.CoolingRate, minCoolingRate, maxCoolingRate, d.CoolingRate)
	c.TotalIterations = errors.ClipInt(c.TotalIterations, 1, maxAnnealIter)
	c.Cities = errors.ClipInt(c.Cities, 3, 200)
	return c
}

// Params は anneal.TSPParams に変換する
func (c TSPConfig) Params() anneal.TSPParams {
	return anneal.TSPParams{
		InitialTemperature: c.InitialTemperature,
		CoolingRate:        c.CoolingRate,
		TotalIterations:    c.TotalIterations,
	}
}

// ToyConfig は離散焼きなましの設定
type ToyConfig struct {
	R                  int                 `mapstructure:"r" yaml:"r"`
	MaxIterations      int                 `mapstructure:"max_iterations" yaml:"max_iterations"`
	InitialTemperature float64             `mapstructure:"initial_temperature" yaml:"initial_temperature"`
	CoolingRate        float64             `mapstructure:"cooling_rate" yaml:"cooling_rate"`
	NeighborType       anneal.NeighborType `mapstructure:"neighbor_type" yaml:"neighbor_type"`
	CoolingSchedule    anneal.Schedule     `mapstructure:"cooling_schedule" yaml:"cooling_schedule"`
	Coefficients       []float64           `mapstructure:"coefficients" yaml:"coefficients,flow"`
}

// DefaultToy は anneal.DefaultToyParams と同じ値
func DefaultToy() ToyConfig {
	p := anneal.DefaultToyParams()
	return ToyConfig{
		R:                  p.Bits,
		MaxIterations:      p.MaxIterations,
		InitialTemperature: p.InitialTemperature,
		CoolingRate:        p.CoolingRate,
		NeighborType:       p.Neighbor,
		CoolingSchedule:    p.Schedule,
		Coefficients:       p.Coefficients,
	}
}

// Clamp は r を 1..anneal.MaxBits に収め、不明な近傍・スケジュールを既定値に戻す
func (c ToyConfig) Clamp() ToyConfig {
	d := DefaultToy()
	c.R = errors.ClipInt(c.R, 1, anneal.MaxBits)
	c.MaxIterations = errors.ClipInt(c.MaxIterations, 1, maxAnnealIter)
	c.InitialTemperature = positive(c.InitialTemperature, d.InitialTemperature)
	c.CoolingRate = clampFloat(c.CoolingRate, minCoolingRate, maxCoolingRate, d.CoolingRate)
	c.NeighborType = clampNeighbor(c.NeighborType)
	c.CoolingSchedule = clampSchedule(c.CoolingSchedule)

	coeffs := make([]float64, 0, len(c.Coefficients))
	for _, v := range c.Coefficients {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			coeffs = append(coeffs, v)
		}
	}
	if len(coeffs) == 0 {
		coeffs = d.Coefficients
	}
	c.Coefficients = coeffs
	return c
}

// Params は anneal.ToyParams に変換する
func (c ToyConfig) Params() anneal.ToyParams {
	return anneal.ToyParams{
		Bits:               c.R,
		MaxIterations:      c.MaxIterations,
		InitialTemperature: c.InitialTemperature,
		CoolingRate:        c.CoolingRate,
		Neighbor:           c.NeighborType,
		Schedule:           c.CoolingSchedule,
		Coefficients:       append([]float64(nil), c.Coefficients...),
	}
}
