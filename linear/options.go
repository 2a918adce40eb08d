package linear

import "github.com/YuminosukeSato/simulix/core/random"

// DefaultRidge は正規方程式の対角に加える安定化項
const DefaultRidge = 1e-8

type fitConfig struct {
	ridge    float64
	fallback FallbackPolicy
	src      random.Source
}

func newFitConfig(opts []Option) fitConfig {
	cfg := fitConfig{
		ridge:    DefaultRidge,
		fallback: DefaultFallbackPolicy,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.src == nil {
		cfg.src = random.NewUnseeded()
	}
	return cfg
}

// Option is a function that configures polynomial fitting
type Option func(*fitConfig)

// WithRidge sets the value added to the diagonal of XᵀX before inversion
func WithRidge(ridge float64) Option {
	return func(c *fitConfig) {
		c.ridge = ridge
	}
}

// WithFallbackPolicy replaces the policy applied to invalid weights
func WithFallbackPolicy(p FallbackPolicy) Option {
	return func(c *fitConfig) {
		c.fallback = p
	}
}

// WithRandomSource sets the source used to draw fallback weights
func WithRandomSource(src random.Source) Option {
	return func(c *fitConfig) {
		c.src = src
	}
}
