package main

import (
	"math"
	"math/rand/v2"
	"time"
)

// vehicleMixStream is the PCG stream used by the once-per-batch vehicle mix
// evaluation. Trial streams are the trial indices, so this never collides.
const vehicleMixStream = math.MaxUint64

// NewSeededRNG returns the generator for one stream of a seeded run
func NewSeededRNG(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// RandomSeed picks a seed when the caller did not supply one
func RandomSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

// NormalSampler draws normal variates with the Box-Muller transform.
// A sampler belongs to exactly one trial and is never shared between goroutines.
type NormalSampler struct {
	rng *rand.Rand
}

func NewNormalSampler(rng *rand.Rand) *NormalSampler {
	return &NormalSampler{rng: rng}
}

// NewTrialSampler builds the sampler for trial index i of a seeded batch
func NewTrialSampler(seed uint64, trial int) *NormalSampler {
	return NewNormalSampler(NewSeededRNG(seed, uint64(trial)))
}

// Draw returns mean + z·sd for a standard normal z
func (s *NormalSampler) Draw(mean, sd float64) float64 {
	u := s.positiveUniform()
	v := s.positiveUniform()
	z := math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
	return mean + z*sd
}

// positiveUniform resamples until the draw is strictly positive so log(u) is finite
func (s *NormalSampler) positiveUniform() float64 {
	u := s.rng.Float64()
	for u == 0 {
		u = s.rng.Float64()
	}
	return u
}
