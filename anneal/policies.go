package anneal

import (
	"math"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/pkg/errors"
)

// TemperatureFloor は線形・対数スケジュールの温度の下限
const TemperatureFloor = 1e-3

// NeighborType は toy 焼きなましの近傍の生成方法
type NeighborType string

const (
	// SingleBitFlip はランダムな1ビットを反転する
	SingleBitFlip NeighborType = "single_bit_flip"
	// TwoBitFlip は異なる2ビットを反転する。1ビットの状態では1ビット反転になる
	TwoBitFlip NeighborType = "two_bit_flip"
	// RandomWalk は状態全体を一様に引き直す。局所的な近傍ではない
	RandomWalk NeighborType = "random_walk"
)

func (n NeighborType) valid() bool {
	return n == SingleBitFlip || n == TwoBitFlip || n == RandomWalk
}

// Neighbor は bits ビットの状態 state の近傍を返す
func (n NeighborType) Neighbor(src random.Source, state, bits int) (int, error) {
	switch n {
	case SingleBitFlip:
		return state ^ (1 << src.IntN(bits)), nil
	case TwoBitFlip:
		if bits < 2 {
			return state ^ 1, nil
		}
		i := src.IntN(bits)
		j := src.IntN(bits - 1)
		if j >= i {
			j++
		}
		return state ^ (1 << i) ^ (1 << j), nil
	case RandomWalk:
		return src.IntN(1 << bits), nil
	default:
		return 0, errors.NewValidationError("neighborType", "must be single_bit_flip, two_bit_flip or random_walk", string(n))
	}
}

// Schedule は冷却スケジュール
type Schedule string

const (
	// Geometric は T₀·rate^iteration
	Geometric Schedule = "geometric"
	// Linear は T₀·(1 − iteration/maxIterations)、TemperatureFloor で下限を取る
	Linear Schedule = "linear"
	// Logarithmic は T₀ / (1 + ln(1 + iteration + 1))、TemperatureFloor で下限を取る
	Logarithmic Schedule = "logarithmic"
)

func (s Schedule) valid() bool {
	return s == Geometric || s == Linear || s == Logarithmic
}

// Temperature は反復 iteration における温度を返す
func (s Schedule) Temperature(t0, rate float64, iteration, maxIterations int) (float64, error) {
	switch s {
	case Geometric:
		return t0 * math.Pow(rate, float64(iteration)), nil
	case Linear:
		frac := 0.0
		if maxIterations > 0 {
			frac = float64(iteration) / float64(maxIterations)
		}
		return math.Max(t0*(1-frac), TemperatureFloor), nil
	case Logarithmic:
		return math.Max(t0/(1+math.Log(1+float64(iteration)+1)), TemperatureFloor), nil
	default:
		return 0, errors.NewValidationError("coolingSchedule", "must be geometric, linear or logarithmic", string(s))
	}
}
