// Package anneal implements two simulated-annealing engines.
//
// The TSP engine MINIMIZES the cyclic great-circle length of a tour. The toy
// engine MAXIMIZES a polynomial over r-bit integers. The two sign conventions
// differ on purpose and are not unified: each step function documents which
// direction its Metropolis rule favours.
package anneal

import (
	"math"
	"time"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
)

// EarthRadiusKm は大円距離の計算に使う地球の半径
const EarthRadiusKm = 6371.0

// City は正規化座標 [0,1]² 上の都市
type City struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// LonLat は正規化座標を経度 360x−180、緯度 90−180y に写す
func (c City) LonLat() (lon, lat float64) {
	return 360*c.X - 180, 90 - 180*c.Y
}

// Haversine は2都市間の大円距離 (km) を返す
func Haversine(a, b City) float64 {
	lon1, lat1 := a.LonLat()
	lon2, lat2 := b.LonLat()

	toRad := math.Pi / 180
	dLat := (lat2 - lat1) * toRad
	dLon := (lon2 - lon1) * toRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*toRad)*math.Cos(lat2*toRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = errors.ClipValue(h, 0, 1)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// TourDistance は都市0から tour の順に巡り都市0に戻る巡回路の長さを返す
func TourDistance(cities []City, tour []int) float64 {
	if len(cities) == 0 {
		return 0
	}
	var d float64
	prev := 0
	for _, c := range tour {
		d += Haversine(cities[prev], cities[c])
		prev = c
	}
	return d + Haversine(cities[prev], cities[0])
}

// ValidateTour は tour が {1, ..., n-1} の順列であることを検証する
func ValidateTour(tour []int, n int) error {
	if n < 1 || len(tour) != n-1 {
		return errors.NewDimensionError("ValidateTour", n-1, len(tour), 0)
	}
	seen := make([]bool, n)
	for _, v := range tour {
		if v < 1 || v >= n {
			return errors.NewValueError("ValidateTour", "city index out of range or start city in tour")
		}
		if seen[v] {
			return errors.NewValueError("ValidateTour", "duplicate city in tour")
		}
		seen[v] = true
	}
	return nil
}

// TSPParams は TSP 焼きなましのパラメータ
type TSPParams struct {
	InitialTemperature float64 `json:"initial_temperature"`
	CoolingRate        float64 `json:"cooling_rate"`
	TotalIterations    int     `json:"total_iterations"`
}

// DefaultTSPParams returns T₀ = 1000 km, rate 0.995 and 2000 iterations.
func DefaultTSPParams() TSPParams {
	return TSPParams{InitialTemperature: 1000, CoolingRate: 0.995, TotalIterations: 2000}
}

// Validate はパラメータを検証する
func (p TSPParams) Validate() error {
	if !(p.InitialTemperature > 0) || math.IsInf(p.InitialTemperature, 0) {
		return errors.NewValidationError("initialTemperature", "must be a finite positive value", p.InitialTemperature)
	}
	if !(p.CoolingRate > 0 && p.CoolingRate < 1) {
		return errors.NewValidationError("coolingRate", "must be in (0, 1)", p.CoolingRate)
	}
	if p.TotalIterations < 0 {
		return errors.NewValidationError("totalIterations", "must be >= 0", p.TotalIterations)
	}
	return nil
}

// TSPState は TSP 焼きなましの状態。距離は最小化される
// BestPath と BestDistance は厳密に短い巡回路が見つかったときだけ更新される。
type TSPState struct {
	CurrentPath     []int   `json:"current_path"`
	BestPath        []int   `json:"best_path"`
	CurrentDistance float64 `json:"current_distance"`
	BestDistance    float64 `json:"best_distance"`
	Temperature     float64 `json:"temperature"`
	Iteration       int     `json:"iteration"`
	Done            bool    `json:"done"`
}

// Clone は経路のスライスを含めた深いコピーを返す
func (s TSPState) Clone() TSPState {
	s.CurrentPath = append([]int(nil), s.CurrentPath...)
	s.BestPath = append([]int(nil), s.BestPath...)
	return s
}

// NewTSPState は都市0を始点とし、残りの都市をシャッフルした初期状態を作る
// 都市が3未満の場合は最初から Done となる。
func NewTSPState(src random.Source, cities []City, p TSPParams) (TSPState, error) {
	if err := p.Validate(); err != nil {
		return TSPState{}, err
	}
	path := make([]int, 0, max(len(cities)-1, 0))
	for i := 1; i < len(cities); i++ {
		path = append(path, i)
	}
	random.Shuffle(src, path)

	d := TourDistance(cities, path)
	return TSPState{
		CurrentPath:     path,
		BestPath:        append([]int(nil), path...),
		CurrentDistance: d,
		BestDistance:    d,
		Temperature:     p.InitialTemperature,
		Done:            len(cities) < 3 || p.TotalIterations == 0,
	}, nil
}

// StepTSP は2つの位置を独立に選んで入れ替える近傍を提案し、メトロポリス基準で採否を決める
//
// 提案の距離が短ければ採択し、長ければ確率 exp((current - proposed)/T) で採択する。
// 2つの位置が一致した場合は提案なしとして扱うが、反復回数と冷却は進む。
// 都市の追加や削除で CurrentPath が cities の順列でなくなっている場合はエラーを返す。
func StepTSP(src random.Source, cities []City, state TSPState, p TSPParams) (TSPState, error) {
	next := state.Clone()
	if state.Done || len(cities) < 3 {
		next.Done = true
		return next, nil
	}
	if err := ValidateTour(state.CurrentPath, len(cities)); err != nil {
		return state, errors.Wrap(err, "StepTSP: current path does not match cities")
	}

	n := len(next.CurrentPath)
	i, j := src.IntN(n), src.IntN(n)
	if i != j {
		proposed := append([]int(nil), next.CurrentPath...)
		proposed[i], proposed[j] = proposed[j], proposed[i]
		pd := TourDistance(cities, proposed)

		if pd < next.CurrentDistance || src.Float64() < math.Exp((next.CurrentDistance-pd)/next.Temperature) {
			next.CurrentPath = proposed
			next.CurrentDistance = pd
		}
		if next.CurrentDistance < next.BestDistance {
			next.BestPath = append([]int(nil), next.CurrentPath...)
			next.BestDistance = next.CurrentDistance
		}
	}

	next.Temperature *= p.CoolingRate
	next.Iteration++
	next.Done = next.Iteration >= p.TotalIterations
	return next, nil
}

// Trace は反復ごとの現在値と最良値
type Trace struct {
	Current     []float64 `json:"current"`
	Best        []float64 `json:"best"`
	Temperature []float64 `json:"temperature"`
}

func (t *Trace) record(current, best, temperature float64) {
	t.Current = append(t.Current, current)
	t.Best = append(t.Best, best)
	t.Temperature = append(t.Temperature, temperature)
}

// RunTSP は Done になるまで StepTSP を繰り返し、最終状態と距離の推移を返す
func RunTSP(src random.Source, cities []City, p TSPParams) (TSPState, Trace, error) {
	start := time.Now()
	state, err := NewTSPState(src, cities, p)
	if err != nil {
		return TSPState{}, Trace{}, err
	}

	var trace Trace
	trace.record(state.CurrentDistance, state.BestDistance, state.Temperature)
	for !state.Done {
		if state, err = StepTSP(src, cities, state, p); err != nil {
			return TSPState{}, Trace{}, err
		}
		trace.record(state.CurrentDistance, state.BestDistance, state.Temperature)
	}

	log.GetLoggerWithName("anneal.tsp").Info("annealing finished",
		log.OperationKey, log.OperationRun,
		log.CitiesKey, len(cities),
		log.IterationKey, state.Iteration,
		log.CostKey, state.CurrentDistance,
		log.BestCostKey, state.BestDistance,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return state, trace, nil
}

// RandomCities は正規化座標上に n 個の都市を一様に配置する
func RandomCities(src random.Source, n int) []City {
	cities := make([]City, n)
	for i := range cities {
		cities[i] = City{ID: i, X: src.Float64(), Y: src.Float64()}
	}
	return cities
}
