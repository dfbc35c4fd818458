package utils

import (
	"math/rand"
)

// RandSource is a seeded random number generator. Every stochastic draw in a
// simulation run goes through a single RandSource so that a fixed seed always
// yields an identical run. Not safe for concurrent use; the simulation kernel
// is single-threaded.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed
func NewRandSource(seed int64) *RandSource {
	return &RandSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// ExpFloat64 returns an exponentially distributed random number with rate lambda
func (r *RandSource) ExpFloat64(lambda float64) float64 {
	return r.rng.ExpFloat64() / lambda
}

// NormFloat64 returns a normally distributed random number with mean and stddev
func (r *RandSource) NormFloat64(mean, stddev float64) float64 {
	return r.rng.NormFloat64()*stddev + mean
}

// BernoulliBool returns true with probability p, false otherwise
func (r *RandSource) BernoulliBool(p float64) bool {
	return r.rng.Float64() < p
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}
