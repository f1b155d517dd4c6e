// Package entropy provides the seeded random source that drives every
// stochastic decision in a simulation. A Source is advanced strictly in
// call order, so replaying the same seed and calls reproduces every draw.
package entropy

import (
	"math"
)

// Source is a mulberry32 generator. It is not safe for concurrent use;
// a simulation owns exactly one and threads it through its systems.
type Source struct {
	state uint32
}

// New creates a Source from a seed.
func New(seed int64) *Source {
	return &Source{state: uint32(seed)}
}

// Restore recreates a Source from a saved state.
func Restore(state uint32) *Source {
	return &Source{state: state}
}

// State returns the current internal state for persistence.
func (s *Source) State() uint32 {
	return s.state
}

func (s *Source) next() uint32 {
	s.state += 0x6d2b79f5
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Float returns a uniform float64 in [0, 1).
func (s *Source) Float() float64 {
	return float64(s.next()) / 4294967296.0
}

// Uniform returns a uniform float64 in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.Float()
}

// IntRange returns a uniform integer in [lo, hi], both inclusive.
func (s *Source) IntRange(lo, hi int) int {
	return int(math.Floor(s.Uniform(float64(lo), float64(hi+1))))
}

// Normal returns a normally distributed value (Box-Muller, one draw pair per call).
func (s *Source) Normal(mean, std float64) float64 {
	u1 := s.Float()
	u2 := s.Float()
	if u1 == 0 {
		// log(0) is -Inf; nudge to the smallest representable draw.
		u1 = 1.0 / 4294967296.0
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + std*z
}

// Chance reports whether a draw falls below p.
func (s *Source) Chance(p float64) bool {
	return s.Float() < p
}

// Pick returns one element of options chosen uniformly.
// It panics on an empty slice, as indexing would.
func Pick[T any](s *Source, options ...T) T {
	return options[int(s.Float()*float64(len(options)))]
}
