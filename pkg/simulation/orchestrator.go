// Package simulation repeats noisy evaluations of a variable's variants and
// reduces them to a per-year mean and standard deviation.
package simulation

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/ethpandaops/projector/pkg/evaluator"
	"github.com/ethpandaops/projector/pkg/formula"
	"github.com/ethpandaops/projector/pkg/observability"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Result is the Monte Carlo forecast of one variable
type Result struct {
	ID         string    `json:"id"`
	VariableID int64     `json:"variable_id"`
	Title      Title     `json:"title"`
	Years      []int     `json:"years"`
	Mean       []float64 `json:"mean"`
	StdDev     []float64 `json:"std_dev"`
	// Runs is the number of runs requested and Completed the number that
	// produced a series.
	Runs      int `json:"runs"`
	Completed int `json:"completed"`
}

// Upper returns mean + one standard deviation per year
func (r *Result) Upper() []float64 {
	out := make([]float64, len(r.Mean))
	for i := range r.Mean {
		out[i] = r.Mean[i] + r.StdDev[i]
	}

	return out
}

// Lower returns mean - one standard deviation per year
func (r *Result) Lower() []float64 {
	out := make([]float64, len(r.Mean))
	for i := range r.Mean {
		out[i] = r.Mean[i] - r.StdDev[i]
	}

	return out
}

// Orchestrator runs simulations against a storage collaborator
type Orchestrator struct {
	log    logrus.FieldLogger
	reader variables.Reader
	config *Config
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(log logrus.FieldLogger, reader variables.Reader, cfg *Config) *Orchestrator {
	return &Orchestrator{
		log:    log.WithField("service", "simulation"),
		reader: reader,
		config: cfg,
	}
}

// Config returns the orchestrator configuration
func (o *Orchestrator) Config() *Config {
	return o.config
}

// Simulate runs the given number of noisy repetitions of every variant sharing
// the selected variable's name. Zero runs uses the configured default.
func (o *Orchestrator) Simulate(ctx context.Context, id int64, targetYear, runs int) (result *Result, err error) {
	start := time.Now()
	label := strconv.FormatInt(id, 10)

	observability.RecordSimulationStart()
	defer func() {
		observability.RecordSimulationComplete(label, observability.Status(err), time.Since(start).Seconds())
	}()

	runs, err = o.config.resolveRuns(runs)
	if err != nil {
		return nil, err
	}

	years, err := o.config.years(targetYear)
	if err != nil {
		return nil, err
	}

	selected, err := o.reader.GetVariable(ctx, id)
	if err != nil {
		return nil, err
	}

	graph, err := o.LoadGraph(ctx, id)
	if err != nil {
		return nil, err
	}

	group := variables.Group{Name: selected.Name, Variants: graph.Variants(selected.Name)}

	simulationID := uuid.NewString()
	log := o.log.WithFields(logrus.Fields{
		"simulation_id": simulationID,
		"variable_id":   id,
		"variable":      selected.Name,
		"variants":      len(group.Variants),
		"runs":          runs,
	})
	log.Debug("Starting simulation")

	series, err := o.run(ctx, log, evaluator.New(log, graph, o.config.MaxDepth), group, targetYear, runs)
	if err != nil {
		return nil, err
	}

	result = &Result{
		ID:         simulationID,
		VariableID: id,
		Title:      NewTitle(group, graph),
		Years:      years,
		Mean:       make([]float64, len(years)),
		StdDev:     make([]float64, len(years)),
		Runs:       runs,
		Completed:  len(series),
	}

	column := make([]float64, len(series))
	for year := range years {
		for r, s := range series {
			column[r] = s[year]
		}

		result.Mean[year], result.StdDev[year] = stat.PopMeanStdDev(column, nil)
	}

	log.WithFields(logrus.Fields{
		"completed": result.Completed,
		"duration":  time.Since(start),
	}).Debug("Simulation complete")

	return result, nil
}

// Series evaluates a single run of the selected variable's variant group.
// Without noise the result is deterministic.
func (o *Orchestrator) Series(ctx context.Context, id int64, targetYear int, noisy bool) ([]float64, error) {
	if _, err := o.config.years(targetYear); err != nil {
		return nil, err
	}

	selected, err := o.reader.GetVariable(ctx, id)
	if err != nil {
		return nil, err
	}

	graph, err := o.LoadGraph(ctx, id)
	if err != nil {
		return nil, err
	}

	group := variables.Group{Name: selected.Name, Variants: graph.Variants(selected.Name)}
	log := o.log.WithField("variable_id", id)

	var noise formula.NoiseSource = formula.None{}
	if noisy {
		noise = o.noise(0)
	}

	mean, _, err := o.aggregate(ctx, log, evaluator.New(log, graph, o.config.MaxDepth), group, targetYear, noise)
	if err != nil {
		return nil, err
	}

	return mean, nil
}

// LoadGraph loads the driver graph of a variable and its variants
func (o *Orchestrator) LoadGraph(ctx context.Context, id int64) (*dependencies.Graph, error) {
	start := time.Now()

	graph, err := dependencies.Load(ctx, o.reader, o.config.MaxDepth, id)
	if err != nil {
		observability.RecordGraphBuild(observability.StatusError, 0, time.Since(start).Seconds())
		return nil, err
	}

	observability.RecordGraphBuild(observability.StatusSuccess, len(graph.Nodes()), time.Since(start).Seconds())

	return graph, nil
}

// run executes the repetitions and returns the series of every non-empty run
func (o *Orchestrator) run(ctx context.Context, log logrus.FieldLogger, eval *evaluator.Evaluator, group variables.Group, targetYear, runs int) ([][]float64, error) {
	results := make([][]float64, runs)

	var (
		mu      sync.Mutex
		lastErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.Concurrency)

	for i := 0; i < runs; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			mean, runErr, err := o.aggregate(gctx, log.WithField("run", i), eval, group, targetYear, o.noise(i))
			if err != nil {
				mu.Lock()
				lastErr = err
				mu.Unlock()

				if runErr != nil {
					return runErr
				}

				observability.RecordRun(group.Name, "empty")

				return nil
			}

			observability.RecordRun(group.Name, "complete")
			results[i] = mean

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	series := make([][]float64, 0, runs)
	for _, s := range results {
		if s != nil {
			series = append(series, s)
		}
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %w", variables.ErrEmptyRunSet, lastErr)
	}

	return series, nil
}

// aggregate evaluates every variant once with the same noise source and
// averages the successful ones. Failing variants are logged and skipped.
// A context error is returned as fatal; any other failure of the whole
// group is returned as err alone.
func (o *Orchestrator) aggregate(ctx context.Context, log logrus.FieldLogger, eval *evaluator.Evaluator, group variables.Group, targetYear int, noise formula.NoiseSource) (mean []float64, fatal, err error) {
	candidates := make([][]float64, 0, len(group.Variants))

	for _, v := range group.Variants {
		series, evalErr := eval.Evaluate(ctx, v.ID, targetYear, noise)
		if evalErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr, ctxErr
			}

			log.WithError(evalErr).WithField("variant_id", v.ID).Warn("Skipping variant that failed to evaluate")
			observability.RecordVariantFailure(group.Name)

			err = evalErr

			continue
		}

		candidates = append(candidates, series)
	}

	if len(candidates) == 0 {
		if err == nil {
			err = fmt.Errorf("%w: %q has no variants", variables.ErrVariableNotFound, group.Name)
		}

		return nil, nil, err
	}

	return evaluator.Mean(candidates), nil, nil
}

// noise returns the noise source of one run
func (o *Orchestrator) noise(run int) formula.NoiseSource {
	if o.config.Seed != nil {
		return formula.NewSeededGaussian(*o.config.Seed, uint64(run)) //nolint:gosec // run is never negative
	}

	return formula.NewGaussian(nil)
}
