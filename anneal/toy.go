package anneal

import (
	"math"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
)

const (
	// MaxBits は状態を int で表せる範囲に抑えるための上限
	MaxBits = 30
	// MaxEnumerateBits 以下のビット長では全状態を列挙できる
	MaxEnumerateBits = 8
)

// ToyParams は toy 焼きなましのパラメータ
type ToyParams struct {
	Bits               int          `json:"r"`
	MaxIterations      int          `json:"max_iterations"`
	InitialTemperature float64      `json:"initial_temperature"`
	CoolingRate        float64      `json:"cooling_rate"`
	Neighbor           NeighborType `json:"neighbor_type"`
	Schedule           Schedule     `json:"cooling_schedule"`
	// Coefficients は多項式の係数で、次数の昇順
	Coefficients []float64 `json:"coefficients"`
}

// DefaultToyParams は 5 ビット、f(x) = 2 + 3x − 0.1x² の設定
func DefaultToyParams() ToyParams {
	return ToyParams{
		Bits:               5,
		MaxIterations:      200,
		InitialTemperature: 10,
		CoolingRate:        0.95,
		Neighbor:           SingleBitFlip,
		Schedule:           Geometric,
		Coefficients:       []float64{2, 3, -0.1},
	}
}

// Validate はパラメータを検証する
func (p ToyParams) Validate() error {
	if p.Bits < 1 || p.Bits > MaxBits {
		return errors.NewValidationError("r", "must be in [1, 30]", p.Bits)
	}
	if p.MaxIterations < 0 {
		return errors.NewValidationError("maxIterations", "must be >= 0", p.MaxIterations)
	}
	if !(p.InitialTemperature > 0) || math.IsInf(p.InitialTemperature, 0) {
		return errors.NewValidationError("initialTemperature", "must be a finite positive value", p.InitialTemperature)
	}
	if p.Schedule == Geometric && !(p.CoolingRate > 0 && p.CoolingRate < 1) {
		return errors.NewValidationError("coolingRate", "must be in (0, 1)", p.CoolingRate)
	}
	if len(p.Coefficients) == 0 {
		return errors.NewValidationError("coefficients", "must not be empty", p.Coefficients)
	}
	if !p.Schedule.valid() {
		return errors.NewValidationError("coolingSchedule", "must be geometric, linear or logarithmic", string(p.Schedule))
	}
	if !p.Neighbor.valid() {
		return errors.NewValidationError("neighborType", "must be single_bit_flip, two_bit_flip or random_walk", string(p.Neighbor))
	}
	return nil
}

// Evaluate は係数 coeffs（次数の昇順）の多項式を x で評価する
func Evaluate(coeffs []float64, x int) float64 {
	var y float64
	fx := float64(x)
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = y*fx + coeffs[i]
	}
	return y
}

// ToyState は toy 焼きなましの状態。値は最大化される
// BestState と BestValue は厳密に大きい値が見つかったときだけ更新される。
type ToyState struct {
	CurrentState  int     `json:"current_state"`
	CurrentValue  float64 `json:"current_value"`
	BestState     int     `json:"best_state"`
	BestValue     float64 `json:"best_value"`
	Temperature   float64 `json:"temperature"`
	Iteration     int     `json:"iteration"`
	AcceptedWorse int     `json:"accepted_worse"`
	Done          bool    `json:"done"`
}

// NewToyState は一様に選んだ状態から始める初期状態を作る
func NewToyState(src random.Source, p ToyParams) (ToyState, error) {
	if err := p.Validate(); err != nil {
		return ToyState{}, err
	}
	s := src.IntN(1 << p.Bits)
	v := Evaluate(p.Coefficients, s)
	return ToyState{
		CurrentState: s,
		CurrentValue: v,
		BestState:    s,
		BestValue:    v,
		Temperature:  p.InitialTemperature,
		Done:         p.MaxIterations == 0,
	}, nil
}

// StepToy は近傍を1つ提案し、値が大きくなるなら採択、小さくなるなら
// 確率 exp((neighbor - current)/T) で採択する
func StepToy(src random.Source, state ToyState, p ToyParams) (ToyState, error) {
	next := state
	if state.Done {
		return next, nil
	}

	cand, err := p.Neighbor.Neighbor(src, state.CurrentState, p.Bits)
	if err != nil {
		return ToyState{}, err
	}
	cv := Evaluate(p.Coefficients, cand)

	if cv >= state.CurrentValue {
		next.CurrentState, next.CurrentValue = cand, cv
	} else if src.Float64() < math.Exp((cv-state.CurrentValue)/state.Temperature) {
		next.CurrentState, next.CurrentValue = cand, cv
		next.AcceptedWorse++
	}
	if next.CurrentValue > next.BestValue {
		next.BestState, next.BestValue = next.CurrentState, next.CurrentValue
	}

	next.Iteration++
	next.Temperature, err = p.Schedule.Temperature(p.InitialTemperature, p.CoolingRate, next.Iteration, p.MaxIterations)
	if err != nil {
		return ToyState{}, err
	}
	next.Done = next.Iteration >= p.MaxIterations
	return next, nil
}

// RunToy は Done になるまで StepToy を繰り返し、最終状態と値の推移を返す
func RunToy(src random.Source, p ToyParams) (ToyState, Trace, error) {
	state, err := NewToyState(src, p)
	if err != nil {
		return ToyState{}, Trace{}, err
	}

	var trace Trace
	trace.record(state.CurrentValue, state.BestValue, state.Temperature)
	for !state.Done {
		if state, err = StepToy(src, state, p); err != nil {
			return ToyState{}, Trace{}, err
		}
		trace.record(state.CurrentValue, state.BestValue, state.Temperature)
	}

	log.GetLoggerWithName("anneal.toy").Debug("annealing finished",
		log.OperationKey, log.OperationRun,
		log.MethodKey, string(p.Neighbor),
		log.IterationKey, state.Iteration,
		log.CostKey, state.CurrentValue,
		log.BestCostKey, state.BestValue,
		log.AcceptedWorseKey, state.AcceptedWorse,
	)
	return state, trace, nil
}

// Enumeration は全状態の値と最大値
type Enumeration struct {
	Values    []float64 `json:"values"`
	BestState int       `json:"best_state"`
	BestValue float64   `json:"best_value"`
}

// Enumerate は r <= 8 のとき全 2^r 状態の値を計算する。可視化用で探索には使わない
func Enumerate(p ToyParams) (Enumeration, error) {
	if p.Bits < 1 || p.Bits > MaxEnumerateBits {
		return Enumeration{}, errors.NewValidationError("r", "enumeration requires 1 <= r <= 8", p.Bits)
	}
	if len(p.Coefficients) == 0 {
		return Enumeration{}, errors.NewValidationError("coefficients", "must not be empty", p.Coefficients)
	}

	e := Enumeration{Values: make([]float64, 1<<p.Bits), BestValue: math.Inf(-1)}
	for s := range e.Values {
		v := Evaluate(p.Coefficients, s)
		e.Values[s] = v
		if v > e.BestValue {
			e.BestState, e.BestValue = s, v
		}
	}
	return e, nil
}
