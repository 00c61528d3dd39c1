package formula

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// NoiseSource perturbs a computed value. Implementations decide where the
// randomness comes from so tests can substitute a deterministic source.
type NoiseSource interface {
	// Perturb returns a draw centred on mean with the given standard deviation
	Perturb(mean, stddev float64) float64
}

// Gaussian draws from a normal distribution on every call.
// A Gaussian built around an explicit rand.Source is not safe for concurrent use.
type Gaussian struct {
	src rand.Source
}

// NewGaussian returns a normal noise source. A nil src uses the global,
// goroutine-safe generator.
func NewGaussian(src rand.Source) *Gaussian {
	return &Gaussian{src: src}
}

// NewSeededGaussian returns a reproducible normal noise source for one stream
func NewSeededGaussian(seed, stream uint64) *Gaussian {
	return &Gaussian{src: rand.NewPCG(seed, stream)}
}

// Perturb draws from N(mean, stddev²)
func (g *Gaussian) Perturb(mean, stddev float64) float64 {
	if stddev == 0 {
		return mean
	}

	return distuv.Normal{Mu: mean, Sigma: stddev, Src: g.src}.Rand()
}

// None leaves values untouched
type None struct{}

// Perturb returns mean
func (None) Perturb(mean, _ float64) float64 {
	return mean
}

// Sigmas shifts every value by a fixed number of standard deviations
type Sigmas float64

// Perturb returns mean + k·stddev
func (k Sigmas) Perturb(mean, stddev float64) float64 {
	return mean + float64(k)*stddev
}
