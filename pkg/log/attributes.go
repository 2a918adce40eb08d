// Package log defines standard attribute keys for simulation operations.
//
// Keys follow a hierarchical naming convention (e.g. "sim.iteration",
// "data.samples") so that records from different engines can be filtered
// with the same queries.

package log

// Operation context
const (
	// ComponentKey identifies the engine producing the record.
	// Examples: "linalg", "linear", "bootstrap", "cluster", "sampling", "anneal", "worker"
	ComponentKey = "sim.component"

	// OperationKey specifies the operation being performed.
	// Examples: "fit", "tradeoff", "resample", "step", "estimate"
	OperationKey = "sim.operation"

	// RequestIDKey correlates a worker request with its response.
	RequestIDKey = "sim.request_id"

	// MethodKey names the estimator or policy in use.
	// Examples: "standard", "normalized", "single_bit_flip", "geometric"
	MethodKey = "sim.method"
)

// Data shape
const (
	// SamplesKey indicates the number of samples in a dataset.
	SamplesKey = "data.samples"

	// ResamplesKey indicates the number of bootstrap resamples.
	ResamplesKey = "data.resamples"

	// TrialsKey indicates the number of independent trials.
	TrialsKey = "data.trials"

	// RowsKey describes the order of a square matrix.
	RowsKey = "data.rows"

	// ClustersKey indicates the number of mixture components.
	ClustersKey = "data.clusters"

	// CitiesKey indicates the number of cities in a tour.
	CitiesKey = "data.cities"
)

// Iterative progress
const (
	// IterationKey records the current iteration of an iterative process.
	IterationKey = "sim.iteration"

	// DegreeKey records the polynomial degree being fitted.
	DegreeKey = "model.degree"

	// TemperatureKey records the current annealing temperature.
	TemperatureKey = "anneal.temperature"

	// CostKey records the current objective value (distance or fitness).
	CostKey = "anneal.cost"

	// BestCostKey records the best objective value so far.
	BestCostKey = "anneal.best_cost"

	// MaxShiftKey records the largest mean shift between EM iterations.
	MaxShiftKey = "em.max_shift"

	// LogLikelihoodKey records the mixture log-likelihood.
	LogLikelihoodKey = "em.log_likelihood"

	// PhaseKey records the state machine phase.
	PhaseKey = "sim.phase"

	// AcceptedWorseKey counts moves accepted despite a worse objective.
	AcceptedWorseKey = "anneal.accepted_worse"
)

// Numerical diagnostics
const (
	// RegularizedPivotsKey counts pivots that required regularization.
	RegularizedPivotsKey = "linalg.regularized_pivots"

	// EpsilonKey records a regularization constant that was applied.
	EpsilonKey = "linalg.epsilon"

	// EstimateKey records an estimator output.
	EstimateKey = "est.value"

	// BiasKey and VarianceKey record a bias² / variance decomposition or the
	// empirical variance of an estimator.
	BiasKey     = "stat.bias"
	VarianceKey = "stat.variance"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RandomSeedKey records a seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// ConfigFileKey records the configuration file that was read.
	ConfigFileKey = "config.file"
)

// Standard attribute values.
const (
	OperationTradeoff = "tradeoff"
	OperationResample = "resample"
	OperationStep     = "step"
	OperationRun      = "run"
	OperationEstimate = "estimate"
	OperationInvert   = "invert"
)
