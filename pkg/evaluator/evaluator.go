// Package evaluator turns a loaded driver graph into yearly series, walking
// calculated variables down to their input leaves.
package evaluator

import (
	"context"
	"fmt"

	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/ethpandaops/projector/pkg/formula"
	"github.com/ethpandaops/projector/pkg/interpolation"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
)

// Evaluator computes the series of any variable in a loaded graph.
// The graph is only read, so one Evaluator may serve concurrent runs as long
// as each run brings its own noise source.
type Evaluator struct {
	log      logrus.FieldLogger
	graph    dependencies.Reader
	maxDepth int
}

// New creates an evaluator over graph. A maxDepth of zero disables the depth bound.
func New(log logrus.FieldLogger, graph dependencies.Reader, maxDepth int) *Evaluator {
	return &Evaluator{
		log:      log.WithField("component", "evaluator"),
		graph:    graph,
		maxDepth: maxDepth,
	}
}

// Evaluate returns the series of variable id from the base year through
// targetYear inclusive. Noise is drawn from noise for every noisy variable on
// the path; formula.None{} gives a deterministic series.
func (e *Evaluator) Evaluate(ctx context.Context, id int64, targetYear int, noise formula.NoiseSource) ([]float64, error) {
	if _, err := variables.Years(targetYear); err != nil {
		return nil, err
	}

	if noise == nil {
		noise = formula.None{}
	}

	return e.evaluate(ctx, id, targetYear, noise, make(map[int64]struct{}), 0)
}

func (e *Evaluator) evaluate(ctx context.Context, id int64, targetYear int, noise formula.NoiseSource, path map[int64]struct{}, depth int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, onPath := path[id]; onPath {
		return nil, fmt.Errorf("%w: variable %d is its own driver", variables.ErrCyclicDependency, id)
	}

	if e.maxDepth > 0 && depth > e.maxDepth {
		return nil, fmt.Errorf("%w: variable %d is more than %d drivers deep", variables.ErrMaxDepthExceeded, id, e.maxDepth)
	}

	node, err := e.graph.GetNode(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", variables.ErrVariableNotFound, err)
	}

	v := node.Variable
	if v.Kind == variables.KindInput {
		return e.interpolate(node, targetYear)
	}

	path[id] = struct{}{}
	defer delete(path, id)

	driverVariants := e.graph.Variants(node.DriverName)
	if len(driverVariants) == 0 {
		return nil, fmt.Errorf("%w: %q drives %q", variables.ErrNoDriverVariants, node.DriverName, v.Name)
	}

	response := formula.FromVariable(v)
	candidates := make([][]float64, 0, len(driverVariants))

	for _, dv := range driverVariants {
		driver, err := e.evaluate(ctx, dv.ID, targetYear, noise, path, depth+1)
		if err != nil {
			return nil, err
		}

		series, err := response.Project(v.BaseLevel, driver, noise)
		if err != nil {
			return nil, fmt.Errorf("failed to project %q (%d) from driver %d: %w", v.Name, v.ID, dv.ID, err)
		}

		candidates = append(candidates, series)
	}

	return Mean(candidates), nil
}

func (e *Evaluator) interpolate(node *dependencies.Node, targetYear int) ([]float64, error) {
	v := node.Variable

	anchors, shadowed := interpolation.Anchors(v.BaseLevel, node.Overrides)
	if shadowed > 0 {
		e.log.WithFields(logrus.Fields{
			"variable_id": v.ID,
			"variable":    v.Name,
			"overrides":   shadowed,
		}).Debug("Ignoring base year override in favour of the base level")
	}

	series, err := interpolation.Sample(anchors, targetYear)
	if err != nil {
		return nil, fmt.Errorf("failed to interpolate %q (%d): %w", v.Name, v.ID, err)
	}

	return series, nil
}

// Mean averages equally long series element-wise. It returns nil for no series.
func Mean(series [][]float64) []float64 {
	if len(series) == 0 {
		return nil
	}

	out := make([]float64, len(series[0]))
	for _, s := range series {
		for i := range out {
			out[i] += s[i]
		}
	}

	n := float64(len(series))
	for i := range out {
		out[i] /= n
	}

	return out
}
