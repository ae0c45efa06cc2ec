// Package random provides the seeded pseudo-random source used for every parameter choice in the sketch.
// All randomness flows through a Generator so a run can be reproduced exactly from its seed.
package random

import (
	"math/rand/v2"
	"sync"
)

// generator is the implementation of the Generator interface, backed by a PCG source.
type generator struct {
	mu   *sync.Mutex
	seed uint64
	rng  *rand.Rand
}

// Generator is a seeded source of uniform random values.
// Two generators created with the same seed produce identical sequences for identical call orders.
type Generator interface {
	// Seed returns the seed this generator was created with.
	//
	// Returns:
	//   - uint64: the seed
	Seed() uint64

	// Value returns a uniform float in [0, 1).
	//
	// Returns:
	//   - float64: the next value in the sequence
	Value() float64

	// Range returns a uniform float in [min, max). If max < min the bounds are swapped.
	//
	// Parameters:
	//   - min: the inclusive lower bound
	//   - max: the exclusive upper bound
	//
	// Returns:
	//   - float64: the next value scaled into the range
	Range(min, max float64) float64

	// RangeInt returns a uniform integer in [min, max). Returns min when the range is empty.
	//
	// Parameters:
	//   - min: the inclusive lower bound
	//   - max: the exclusive upper bound
	//
	// Returns:
	//   - int: the next integer in the range
	RangeInt(min, max int) int

	// Pick returns a uniform index in [0, n). Returns -1 when n <= 0.
	//
	// Parameters:
	//   - n: the number of candidates
	//
	// Returns:
	//   - int: the chosen index
	Pick(n int) int
}

var _ Generator = &generator{}

// NewGenerator creates a Generator seeded with the given value.
//
// Parameters:
//   - seed: the seed that fully determines the generated sequence
//
// Returns:
//   - Generator: a new seeded generator
func NewGenerator(seed uint64) Generator {
	return &generator{
		mu:   &sync.Mutex{},
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NewRandomSeed draws a fresh seed from the runtime's global source, for runs that do not request a specific seed.
//
// Returns:
//   - uint64: a new seed
func NewRandomSeed() uint64 {
	return rand.Uint64()
}

func (g *generator) Seed() uint64 {
	return g.seed
}

func (g *generator) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *generator) Range(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	return min + g.Value()*(max-min)
}

func (g *generator) RangeInt(min, max int) int {
	if max <= min {
		return min
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.rng.IntN(max-min)
}

func (g *generator) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return g.RangeInt(0, n)
}
