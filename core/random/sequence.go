package random

// Sequence is a deterministic Source that replays a fixed list of uniform
// values in a cycle. IntN maps the next value onto [0, n).
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence returns a Sequence over values, which must lie in [0, 1).
// An empty list behaves like a constant 0.5.
func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	v := make([]float64, len(values))
	copy(v, values)
	return &Sequence{values: v}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// IntN maps the next scripted value onto [0, n).
func (s *Sequence) IntN(n int) int {
	if n <= 0 {
		panic("random: invalid argument to IntN")
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Uint64 scales the next scripted value onto the uint64 range.
func (s *Sequence) Uint64() uint64 {
	return uint64(s.Float64() * (1 << 63))
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int {
	return s.pos
}
