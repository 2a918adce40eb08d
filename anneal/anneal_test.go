package anneal

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	a := City{X: 0.5, Y: 0.5} // (0°, 0°)
	assert.Equal(t, 0.0, Haversine(a, a))

	// 赤道上で経度90°離れた点: 地球一周の1/4
	b := City{X: 0.75, Y: 0.5}
	assert.InDelta(t, math.Pi/2*EarthRadiusKm, Haversine(a, b), 1e-6)

	// 北極と南極
	n := City{X: 0.2, Y: 0}
	s := City{X: 0.9, Y: 1}
	assert.InDelta(t, math.Pi*EarthRadiusKm, Haversine(n, s), 1e-6)
	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-12)
}

func TestTourDistanceIsCyclic(t *testing.T) {
	cities := []City{{0, 0.5, 0.5}, {1, 0.75, 0.5}, {2, 0.5, 0.25}}
	want := Haversine(cities[0], cities[1]) + Haversine(cities[1], cities[2]) + Haversine(cities[2], cities[0])
	assert.InDelta(t, want, TourDistance(cities, []int{1, 2}), 1e-9)
	// 逆回りでも同じ長さ
	assert.InDelta(t, want, TourDistance(cities, []int{2, 1}), 1e-9)
}

func TestValidateTour(t *testing.T) {
	assert.NoError(t, ValidateTour([]int{3, 1, 2}, 4))
	assert.Error(t, ValidateTour([]int{1, 1, 2}, 4))
	assert.Error(t, ValidateTour([]int{0, 1, 2}, 4))
	assert.Error(t, ValidateTour([]int{1, 2}, 4))
}

func TestTSPPermutationInvariant(t *testing.T) {
	src := random.New(31)
	cities := RandomCities(src, 12)
	p := TSPParams{InitialTemperature: 2000, CoolingRate: 0.99, TotalIterations: 500}

	state, err := NewTSPState(src, cities, p)
	require.NoError(t, err)
	for !state.Done {
		state, err = StepTSP(src, cities, state, p)
		require.NoError(t, err)
		require.NoError(t, ValidateTour(state.CurrentPath, len(cities)), "iteration %d", state.Iteration)
		require.NoError(t, ValidateTour(state.BestPath, len(cities)), "iteration %d", state.Iteration)
		assert.InDelta(t, TourDistance(cities, state.CurrentPath), state.CurrentDistance, 1e-6)
		assert.InDelta(t, TourDistance(cities, state.BestPath), state.BestDistance, 1e-6)
	}
	assert.Equal(t, p.TotalIterations, state.Iteration)
}

func TestTSPBestNeverRegresses(t *testing.T) {
	cities := RandomCities(random.New(5), 15)
	final, trace, err := RunTSP(random.New(6), cities, DefaultTSPParams())
	require.NoError(t, err)
	require.Len(t, trace.Best, DefaultTSPParams().TotalIterations+1)

	for i := 1; i < len(trace.Best); i++ {
		assert.LessOrEqual(t, trace.Best[i], trace.Best[i-1], "best distance increased at %d", i)
		assert.LessOrEqual(t, trace.Temperature[i], trace.Temperature[i-1])
	}
	assert.LessOrEqual(t, final.BestDistance, trace.Current[0])
}

func TestTSPStepDoesNotAlias(t *testing.T) {
	src := random.New(9)
	cities := RandomCities(src, 6)
	p := DefaultTSPParams()

	s0, err := NewTSPState(src, cities, p)
	require.NoError(t, err)
	before := s0.Clone()

	s1, err := StepTSP(src, cities, s0, p)
	require.NoError(t, err)
	assert.Equal(t, before, s0)
	s1.CurrentPath[0] = 99
	assert.NotEqual(t, 99, s0.CurrentPath[0])
}

func TestTSPEqualPositionsIsNoOp(t *testing.T) {
	cities := RandomCities(random.New(2), 5)
	p := DefaultTSPParams()
	s0, err := NewTSPState(random.New(3), cities, p)
	require.NoError(t, err)

	// 同じ値を2回返すので i == j となる
	s1, err := StepTSP(random.NewSequence(0.1, 0.1), cities, s0, p)
	require.NoError(t, err)
	assert.Equal(t, s0.CurrentPath, s1.CurrentPath)
	assert.Equal(t, s0.CurrentDistance, s1.CurrentDistance)
	assert.Equal(t, 1, s1.Iteration)
	assert.InDelta(t, s0.Temperature*p.CoolingRate, s1.Temperature, 1e-12)
}

func TestTSPStepRejectsChangedCities(t *testing.T) {
	src := random.New(17)
	cities := RandomCities(src, 6)
	p := DefaultTSPParams()
	s0, err := NewTSPState(src, cities, p)
	require.NoError(t, err)

	tests := []struct {
		name   string
		cities []City
	}{
		{"city added", append(append([]City(nil), cities...), City{ID: 6, X: 0.5, Y: 0.5})},
		{"city removed", cities[:4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var next TSPState
			require.NotPanics(t, func() {
				next, err = StepTSP(random.New(1), tt.cities, s0, p)
			})
			var derr *errors.DimensionError
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.Equal(t, s0, next)
		})
	}
}

func TestTSPTooFewCities(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		state, trace, err := RunTSP(random.New(1), RandomCities(random.New(1), n), DefaultTSPParams())
		require.NoError(t, err)
		assert.True(t, state.Done)
		assert.Equal(t, 0, state.Iteration)
		assert.Len(t, trace.Best, 1)
	}
}

func TestTSPParamsValidate(t *testing.T) {
	bad := []TSPParams{
		{InitialTemperature: 0, CoolingRate: 0.9, TotalIterations: 10},
		{InitialTemperature: 10, CoolingRate: 1, TotalIterations: 10},
		{InitialTemperature: 10, CoolingRate: 0, TotalIterations: 10},
		{InitialTemperature: 10, CoolingRate: 0.9, TotalIterations: -1},
	}
	for _, p := range bad {
		var verr *errors.ValidationError
		assert.True(t, errors.As(p.Validate(), &verr), "%+v", p)
	}
}

func TestNeighbors(t *testing.T) {
	src := random.New(4)
	for i := 0; i < 200; i++ {
		s := src.IntN(1 << 6)

		n1, err := SingleBitFlip.Neighbor(src, s, 6)
		require.NoError(t, err)
		assert.Equal(t, 1, popcount(s^n1))

		n2, err := TwoBitFlip.Neighbor(src, s, 6)
		require.NoError(t, err)
		assert.Equal(t, 2, popcount(s^n2))

		n3, err := RandomWalk.Neighbor(src, s, 6)
		require.NoError(t, err)
		assert.True(t, n3 >= 0 && n3 < 64)
	}

	n, err := TwoBitFlip.Neighbor(src, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = NeighborType("teleport").Neighbor(src, 0, 3)
	assert.Error(t, err)
}

func popcount(x int) int {
	c := 0
	for ; x != 0; x &= x - 1 {
		c++
	}
	return c
}

func TestSchedules(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		iter     int
		want     float64
	}{
		{"geometric start", Geometric, 0, 10},
		{"geometric", Geometric, 2, 10 * 0.9 * 0.9},
		{"linear half", Linear, 50, 5},
		{"linear floored", Linear, 100, TemperatureFloor},
		{"logarithmic start", Logarithmic, 0, 10 / (1 + math.Log(2))},
		{"logarithmic", Logarithmic, 10, 10 / (1 + math.Log(12))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.schedule.Temperature(10, 0.9, tt.iter, 100)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	got, _ := Logarithmic.Temperature(1e-6, 0.9, 5, 100)
	assert.Equal(t, TemperatureFloor, got)
}

func TestToyBestNeverRegresses(t *testing.T) {
	for _, nt := range []NeighborType{SingleBitFlip, TwoBitFlip, RandomWalk} {
		for _, sc := range []Schedule{Geometric, Linear, Logarithmic} {
			p := DefaultToyParams()
			p.Bits = 7
			p.Neighbor = nt
			p.Schedule = sc
			p.Coefficients = []float64{0, 4, -0.2, 0.001}

			final, trace, err := RunToy(random.New(17), p)
			require.NoError(t, err)
			for i := 1; i < len(trace.Best); i++ {
				require.GreaterOrEqual(t, trace.Best[i], trace.Best[i-1], "%s/%s at %d", nt, sc, i)
			}
			assert.Equal(t, Evaluate(p.Coefficients, final.BestState), final.BestValue)
			assert.GreaterOrEqual(t, final.BestValue, final.CurrentValue)
			assert.Equal(t, p.MaxIterations, final.Iteration)
		}
	}
}

func TestToyExhaustiveCheck(t *testing.T) {
	// 多峰な多項式: 局所解を持つ
	p := ToyParams{
		Bits:               8,
		MaxIterations:      5000,
		InitialTemperature: 50,
		CoolingRate:        0.999,
		Neighbor:           RandomWalk,
		Schedule:           Geometric,
		Coefficients:       []float64{0, 30, -0.9, 0.006, -0.00001},
	}

	enum, err := Enumerate(p)
	require.NoError(t, err)
	require.Len(t, enum.Values, 256)

	final, _, err := RunToy(random.New(2024), p)
	require.NoError(t, err)
	assert.Equal(t, enum.BestValue, final.BestValue)
	assert.Equal(t, enum.BestState, final.BestState)
}

func TestToyAcceptedWorseCounted(t *testing.T) {
	p := DefaultToyParams()
	p.InitialTemperature = 1e6
	p.CoolingRate = 0.9999
	p.Neighbor = RandomWalk

	final, _, err := RunToy(random.New(8), p)
	require.NoError(t, err)
	assert.Greater(t, final.AcceptedWorse, 0, "hot runs accept worse moves")
}

func TestEnumerateLimits(t *testing.T) {
	p := DefaultToyParams()
	p.Bits = 9
	_, err := Enumerate(p)
	assert.Error(t, err)

	p.Bits = 3
	p.Coefficients = []float64{1, 1}
	e, err := Enumerate(p)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, e.Values)
	assert.Equal(t, 7, e.BestState)
}

func TestToyParamsValidate(t *testing.T) {
	p := DefaultToyParams()
	p.Bits = 0
	assert.Error(t, p.Validate())

	p = DefaultToyParams()
	p.Schedule = "exponential"
	assert.Error(t, p.Validate())

	p = DefaultToyParams()
	p.Coefficients = nil
	assert.Error(t, p.Validate())
}
