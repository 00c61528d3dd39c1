// Package formula implements the rate-based response formula that advances a
// calculated variable one year at a time from its driver's movement.
package formula

import (
	"fmt"
	"math"

	"github.com/ethpandaops/projector/pkg/variables"
)

// Response is the response configuration of a calculated variable
type Response struct {
	variables.Coefficients
	NoisePct *float64
}

// FromVariable extracts the response configuration of v
func FromVariable(v *variables.Variable) Response {
	return Response{Coefficients: v.Coefficients, NoisePct: v.NoisePct}
}

// Rate returns the magnitude of relative change between two consecutive
// driver values. It is measured against the smaller of the two, so it is
// never negative for positive drivers.
func Rate(prev, next float64) float64 {
	if next >= prev {
		return (next - prev) / prev
	}

	return (prev - next) / next
}

// Factor returns the multiplicative growth factor for a rate
func (r Response) Factor(rate float64) float64 {
	factor := 1.0

	if c := r.Linear; c != nil {
		factor += *c * rate
	}

	if c := r.Quadratic; c != nil {
		factor += *c * rate * rate
	}

	if c := r.Cubic; c != nil {
		factor += *c * rate * rate * rate
	}

	if c := r.Log; c != nil {
		factor += *c * math.Log(rate+1)
	}

	// Both exponential terms are needed for the exponential response.
	if r.ExpScale != nil && r.ExpRate != nil {
		factor += *r.ExpScale * (math.Exp(*r.ExpRate*rate) - 1)
	}

	return factor
}

// Step computes the next value from the previous one given the driver's move
// from driverPrev to driverNext.
func (r Response) Step(previous, driverPrev, driverNext float64, noise NoiseSource) (float64, error) {
	rate := Rate(driverPrev, driverNext)
	if !finite(rate) {
		return 0, fmt.Errorf("%w: rate between driver values %g and %g", variables.ErrNonFiniteValue, driverPrev, driverNext)
	}

	factor := r.Factor(rate)
	if !finite(factor) {
		return 0, fmt.Errorf("%w: growth factor for rate %g", variables.ErrNonFiniteValue, rate)
	}

	var next float64
	if driverNext >= driverPrev && factor >= 0 {
		next = factor * previous
	} else {
		// Damped fallback keeps the series positive when the driver falls or
		// the combined terms push the factor below zero.
		next = math.Abs(previous / factor)
	}

	if !finite(next) {
		return 0, fmt.Errorf("%w: %g with factor %g", variables.ErrNonFiniteValue, previous, factor)
	}

	if r.NoisePct != nil && *r.NoisePct != 0 && noise != nil {
		next = noise.Perturb(next, math.Abs(*r.NoisePct/100*next))
	}

	return next, nil
}

// Project advances base across the whole driver series. The result has the
// same length as driver and starts with base.
func (r Response) Project(base float64, driver []float64, noise NoiseSource) ([]float64, error) {
	series := make([]float64, 1, max(len(driver), 1))
	series[0] = base

	for i := 0; i+1 < len(driver); i++ {
		next, err := r.Step(series[i], driver[i], driver[i+1], noise)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", variables.BaseYear+i+1, err)
		}

		series = append(series, next)
	}

	return series, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
