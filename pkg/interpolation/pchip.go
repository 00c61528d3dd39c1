// Package interpolation densifies sparse yearly observations into a yearly
// series with a shape-preserving piecewise cubic Hermite (PCHIP) curve.
package interpolation

import (
	"fmt"
	"sort"

	"github.com/ethpandaops/projector/pkg/variables"
	"gonum.org/v1/gonum/interp"
)

// Anchor is a known (year, value) pair the curve passes through
type Anchor struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Anchors builds the sorted anchor set of an input variable: the base level at
// the base year plus every override with a known value. Overrides recorded for
// the base year are ignored in favour of the base level; their count is
// returned as shadowed.
func Anchors(baseLevel float64, overrides []variables.Override) (anchors []Anchor, shadowed int) {
	anchors = make([]Anchor, 0, len(overrides)+1)
	anchors = append(anchors, Anchor{Year: variables.BaseYear, Value: baseLevel})

	seen := map[int]struct{}{variables.BaseYear: {}}
	for _, o := range overrides {
		if o.Value == nil {
			continue
		}

		if _, dup := seen[o.Year]; dup {
			if o.Year == variables.BaseYear {
				shadowed++
			}

			continue
		}

		seen[o.Year] = struct{}{}
		anchors = append(anchors, Anchor{Year: o.Year, Value: *o.Value})
	}

	sort.Slice(anchors, func(i, j int) bool { return anchors[i].Year < anchors[j].Year })

	return anchors, shadowed
}

// Curve is a fitted monotone cubic through a set of anchors
type Curve struct {
	fb interp.FritschButland
	xs []float64
	ys []float64
}

// Fit fits a curve through anchors, which must be sorted by year with no
// duplicate years.
func Fit(anchors []Anchor) (*Curve, error) {
	if len(anchors) < 2 {
		return nil, fmt.Errorf("%w: got %d", variables.ErrInsufficientAnchors, len(anchors))
	}

	xs := make([]float64, len(anchors))
	ys := make([]float64, len(anchors))

	for i, a := range anchors {
		if i > 0 && a.Year <= anchors[i-1].Year {
			return nil, fmt.Errorf("anchor years must be strictly increasing: %d after %d", a.Year, anchors[i-1].Year)
		}

		xs[i] = float64(a.Year)
		ys[i] = a.Value
	}

	c := &Curve{xs: xs, ys: ys}
	if err := c.fb.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("failed to fit curve: %w", err)
	}

	return c, nil
}

// At returns the curve value at x. Outside the anchor range the first or last
// Hermite segment is extended so a trend carries on past the observations.
func (c *Curve) At(x float64) float64 {
	n := len(c.xs)

	switch {
	case x < c.xs[0]:
		return c.hermite(0, x)
	case x > c.xs[n-1]:
		return c.hermite(n-2, x)
	default:
		return c.fb.Predict(x)
	}
}

// hermite evaluates the cubic of segment i at x
func (c *Curve) hermite(i int, x float64) float64 {
	x0, x1 := c.xs[i], c.xs[i+1]
	y0, y1 := c.ys[i], c.ys[i+1]
	d0, d1 := c.slope(i), c.slope(i+1)

	h := x1 - x0
	t := (x - x0) / h
	t2 := t * t
	t3 := t2 * t

	return (2*t3-3*t2+1)*y0 + (t3-2*t2+t)*h*d0 + (-2*t3+3*t2)*y1 + (t3-t2)*h*d1
}

// slope returns the fitted derivative at anchor i
func (c *Curve) slope(i int) float64 {
	return c.fb.PredictDerivative(c.xs[i])
}

// Sample fits anchors and samples the curve at every integer year from the
// base year through target inclusive.
func Sample(anchors []Anchor, target int) ([]float64, error) {
	years, err := variables.Years(target)
	if err != nil {
		return nil, err
	}

	curve, err := Fit(anchors)
	if err != nil {
		return nil, err
	}

	series := make([]float64, len(years))
	for i, y := range years {
		series[i] = curve.At(float64(y))
	}

	return series, nil
}
