// Package config holds the parameter objects of every engine together with
// the ranges an interactive host accepts for them.
//
// Values are loaded with viper from an optional YAML file and SIMULIX_*
// environment variables, then clamped into range with Clamp. The engines
// themselves still reject values on which their arithmetic would fail, so
// Clamp is the layer that turns arbitrary user input into a valid call.
package config

import (
	"io"
	"strings"

	"github.com/YuminosukeSato/simulix/anneal"
	"github.com/YuminosukeSato/simulix/bootstrap"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix は環境変数のプレフィックス。tradeoff.noise_level は SIMULIX_TRADEOFF_NOISE_LEVEL になる
const EnvPrefix = "SIMULIX"

// Config は全エンジンの設定
type Config struct {
	// Seed が 0 の場合、EM 以外のエンジンは実行ごとに異なる乱数を使う
	Seed     uint64 `mapstructure:"seed" yaml:"seed"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Tradeoff   TradeoffConfig   `mapstructure:"tradeoff" yaml:"tradeoff"`
	Bootstrap  BootstrapConfig  `mapstructure:"bootstrap" yaml:"bootstrap"`
	EM         EMConfig         `mapstructure:"em" yaml:"em"`
	Importance ImportanceConfig `mapstructure:"importance" yaml:"importance"`
	TSP        TSPConfig        `mapstructure:"tsp" yaml:"tsp"`
	Toy        ToyConfig        `mapstructure:"toy" yaml:"toy"`
}

// Default は既定値の設定を返す
func Default() *Config {
	return &Config{
		LogLevel:   "warn",
		Tradeoff:   DefaultTradeoff(),
		Bootstrap:  DefaultBootstrap(),
		EM:         DefaultEM(),
		Importance: DefaultImportance(),
		TSP:        DefaultTSP(),
		Toy:        DefaultToy(),
	}
}

// Clamp は全セクションを有効範囲に収めた設定を返す
func (c Config) Clamp() Config {
	c.Tradeoff = c.Tradeoff.Clamp()
	c.Bootstrap = c.Bootstrap.Clamp()
	c.EM = c.EM.Clamp()
	c.Importance = c.Importance.Clamp()
	c.TSP = c.TSP.Clamp()
	c.Toy = c.Toy.Clamp()
	return c
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("seed", d.Seed)
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("tradeoff.polynomial_degree", d.Tradeoff.PolynomialDegree)
	v.SetDefault("tradeoff.noise_level", d.Tradeoff.NoiseLevel)
	v.SetDefault("tradeoff.sample_size", d.Tradeoff.SampleSize)
	v.SetDefault("tradeoff.trials", d.Tradeoff.Trials)

	v.SetDefault("bootstrap.sample_size", d.Bootstrap.SampleSize)
	v.SetDefault("bootstrap.num_bootstrap_samples", d.Bootstrap.NumBootstrapSamples)
	v.SetDefault("bootstrap.confidence_level", d.Bootstrap.ConfidenceLevel)
	v.SetDefault("bootstrap.statistic", string(d.Bootstrap.Statistic))
	v.SetDefault("bootstrap.population_mean", d.Bootstrap.PopulationMean)
	v.SetDefault("bootstrap.population_std_dev", d.Bootstrap.PopulationStdDev)

	v.SetDefault("em.samples_per_cluster", d.EM.SamplesPerCluster)
	v.SetDefault("em.n_clusters", d.EM.NClusters)
	v.SetDefault("em.max_iterations", d.EM.MaxIterations)
	v.SetDefault("em.convergence_threshold", d.EM.ConvergenceThreshold)
	v.SetDefault("em.data_seed", d.EM.DataSeed)
	v.SetDefault("em.init_seed", d.EM.InitSeed)

	v.SetDefault("importance.method", string(d.Importance.Method))
	v.SetDefault("importance.proposal_t", d.Importance.ProposalT)
	v.SetDefault("importance.scale_h", d.Importance.ScaleH)
	v.SetDefault("importance.n_demo", d.Importance.NDemo)
	v.SetDefault("importance.n_trials_conv", d.Importance.NTrialsConv)
	v.SetDefault("importance.n_trials_var", d.Importance.NTrialsVar)
	v.SetDefault("importance.max_samples", d.Importance.MaxSamples)

	v.SetDefault("tsp.initial_temperature", d.TSP.InitialTemperature)
	v.SetDefault("tsp.cooling_rate", d.TSP.CoolingRate)
	v.SetDefault("tsp.total_iterations", d.TSP.TotalIterations)
	v.SetDefault("tsp.cities", d.TSP.Cities)

	v.SetDefault("toy.r", d.Toy.R)
	v.SetDefault("toy.max_iterations", d.Toy.MaxIterations)
	v.SetDefault("toy.initial_temperature", d.Toy.InitialTemperature)
	v.SetDefault("toy.cooling_rate", d.Toy.CoolingRate)
	v.SetDefault("toy.neighbor_type", string(d.Toy.NeighborType))
	v.SetDefault("toy.cooling_schedule", string(d.Toy.CoolingSchedule))
	v.SetDefault("toy.coefficients", d.Toy.Coefficients)
}

// Load は path の YAML ファイル（空なら既定値のみ）と SIMULIX_* 環境変数から
// 設定を読み込み、Clamp した結果を返す
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg = cfg.Clamp()

	log.GetLoggerWithName("config").Debug("configuration loaded",
		log.ComponentKey, "config",
		log.ConfigFileKey, v.ConfigFileUsed(),
		log.RandomSeedKey, cfg.Seed,
	)
	return &cfg, nil
}

// Write は設定を YAML として w に書き出す
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(enc.Close(), "encode config")
}

func clampStatistic(s bootstrap.Statistic) bootstrap.Statistic {
	if st, err := bootstrap.ParseStatistic(string(s)); err == nil {
		return st
	}
	return bootstrap.Mean
}

func clampNeighbor(n anneal.NeighborType) anneal.NeighborType {
	switch n {
	case anneal.SingleBitFlip, anneal.TwoBitFlip, anneal.RandomWalk:
		return n
	}
	return anneal.SingleBitFlip
}

func clampSchedule(s anneal.Schedule) anneal.Schedule {
	switch s {
	case anneal.Geometric, anneal.Linear, anneal.Logarithmic:
		return s
	}
	return anneal.Geometric
}
