// Package comparison pairs the Monte Carlo forecasts of two variables over a
// shared year axis.
package comparison

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethpandaops/projector/pkg/observability"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotEnoughVariables is returned when no default pair can be selected
	ErrNotEnoughVariables = errors.New("at least two distinct variables are needed for a comparison")
)

// Separator joins the two titles of a comparison
const Separator = " VS "

// Series is one side of a comparison
type Series struct {
	VariableID int64            `json:"variable_id"`
	Name       string           `json:"name"`
	Title      simulation.Title `json:"title"`
	Mean       []float64        `json:"mean"`
	StdDev     []float64        `json:"std_dev"`
	Upper      []float64        `json:"upper"`
	Lower      []float64        `json:"lower"`
}

// Comparison is the forecast of two variables over the same years
type Comparison struct {
	Years  []int  `json:"years"`
	First  Series `json:"first"`
	Second Series `json:"second"`
}

// Title returns the combined plain text title
func (c *Comparison) Title() string {
	return c.First.Title.String() + Separator + c.Second.Title.String()
}

// TitleHTML returns the combined title with names in bold
func (c *Comparison) TitleHTML() string {
	return c.First.Title.HTML() + Separator + c.Second.Title.HTML()
}

// Simulator produces the forecast of a single variable
type Simulator interface {
	Simulate(ctx context.Context, id int64, targetYear, runs int) (*simulation.Result, error)
}

// Assembler builds comparisons
type Assembler struct {
	log       logrus.FieldLogger
	reader    variables.Reader
	simulator Simulator
}

// NewAssembler creates a new assembler
func NewAssembler(log logrus.FieldLogger, reader variables.Reader, simulator Simulator) *Assembler {
	return &Assembler{
		log:       log.WithField("service", "comparison"),
		reader:    reader,
		simulator: simulator,
	}
}

// Compare simulates both variables and pairs the results. Either failure fails
// the whole comparison.
func (a *Assembler) Compare(ctx context.Context, firstID, secondID int64, targetYear, runs int) (c *Comparison, err error) {
	defer func() {
		observability.RecordComparison(observability.Status(err))
	}()

	years, err := variables.Years(targetYear)
	if err != nil {
		return nil, err
	}

	var first, second *simulation.Result

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := a.simulator.Simulate(gctx, firstID, targetYear, runs)
		if err != nil {
			return fmt.Errorf("failed to simulate first variable %d: %w", firstID, err)
		}

		first = r

		return nil
	})

	g.Go(func() error {
		r, err := a.simulator.Simulate(gctx, secondID, targetYear, runs)
		if err != nil {
			return fmt.Errorf("failed to simulate second variable %d: %w", secondID, err)
		}

		second = r

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c = &Comparison{
		Years:  years,
		First:  newSeries(first),
		Second: newSeries(second),
	}

	a.log.WithFields(logrus.Fields{
		"first":  firstID,
		"second": secondID,
		"title":  c.Title(),
	}).Debug("Assembled comparison")

	return c, nil
}

// CompareConfigured compares two variables using the stored target year
func (a *Assembler) CompareConfigured(ctx context.Context, firstID, secondID int64, runs int) (*Comparison, error) {
	targetYear, err := a.reader.GetTargetYear(ctx)
	if err != nil {
		return nil, err
	}

	return a.Compare(ctx, firstID, secondID, targetYear, runs)
}

// DefaultPair selects the first variant of each of the first two distinct
// variable names.
func (a *Assembler) DefaultPair(ctx context.Context) (firstID, secondID int64, err error) {
	names, err := a.reader.ListNames(ctx, "")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list variable names: %w", err)
	}

	if len(names) < 2 {
		return 0, 0, fmt.Errorf("%w: found %d", ErrNotEnoughVariables, len(names))
	}

	ids := make([]int64, 2)
	for i, name := range names[:2] {
		variants, err := a.reader.ListVariants(ctx, name)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to list variants of %q: %w", name, err)
		}

		group := variables.GroupByName(variants)
		if len(group) == 0 || len(group[0].Variants) == 0 {
			return 0, 0, fmt.Errorf("%w: %q", variables.ErrVariableNotFound, name)
		}

		ids[i] = group[0].Variants[0].ID
	}

	return ids[0], ids[1], nil
}

func newSeries(r *simulation.Result) Series {
	return Series{
		VariableID: r.VariableID,
		Name:       r.Title.Name,
		Title:      r.Title,
		Mean:       r.Mean,
		StdDev:     r.StdDev,
		Upper:      r.Upper(),
		Lower:      r.Lower(),
	}
}
