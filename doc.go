// Package simulix is a set of numerical simulation engines for teaching
// statistics and optimization: polynomial regression and the bias-variance
// tradeoff, bootstrap confidence intervals, EM for Gaussian mixtures,
// importance sampling, and simulated annealing.
//
// Each engine is a small library of pure functions or step functions over
// explicit state values. A host (a UI, the simulix CLI, a test) supplies
// parameters and a random source, calls one computation, and receives plain
// data back. Step functions never mutate their input state, so a caller can
// keep a history of states for playback.
//
// # Packages
//
//   - core/linalg: dense matrix multiply, transpose and regularized Gauss-Jordan inversion
//   - core/random: injectable random sources, seeded PCG and replayable sequences
//   - core/parallel: CPU fan-out with context cancellation
//   - core/model: estimator lifecycle, simulation phases and weight export
//   - linear: polynomial regression, fit fallback policy, bias-variance tradeoff curve
//   - bootstrap: resampling, percentile confidence intervals, bias/MSE, coverage
//   - cluster: EM Gaussian-mixture clustering as step functions and as an estimator
//   - sampling: Monte Carlo, importance sampling and self-normalized estimators
//   - anneal: TSP annealing (minimizes distance) and toy bit-string annealing (maximizes value)
//   - metrics: regression and summary statistics
//   - worker: CALCULATE_TRADEOFF request/response runner and NDJSON serving loop
//   - config: parameter objects, ranges, viper loading and YAML export
//   - chart: gonum/plot renderings of engine results
//   - pkg/errors, pkg/log: structured errors and warnings, zerolog-backed logging
//
// # Quick Start
//
//	src := random.New(42)
//	x, y, err := linear.GenerateTrainingData(src, 30, 0.3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := linear.FitPolynomialModel(x, y, 3, linear.WithRandomSource(src))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.Weights)
//
// The same engines are available from the command line:
//
//	simulix tradeoff --samples 40 --noise 0.3 --plot tradeoff.png
//	simulix anneal toy --r 8 --neighbor random_walk
//	simulix worker < requests.ndjson
//
// # Randomness
//
// EM clustering is strictly reproducible from its data and initialization
// seeds. The other engines draw from whatever random.Source they are given;
// pass random.New(seed) for repeatable runs or random.NewUnseeded() for a
// fresh stream.
//
// # Error handling
//
// Shape mismatches and empty inputs are returned as errors. Near-singular
// matrices and implausible regression weights are recovered locally and
// reported as warnings through errors.Warn, so interactive callers keep
// getting a renderable result.
package simulix
