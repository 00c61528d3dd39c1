package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
)

// ImportResult summarises an import
type ImportResult struct {
	// IDs maps source variable ids to the ids assigned by the store
	IDs        map[int64]int64
	Overrides  int
	TargetYear int
}

// Import copies every variable, override and the target year of src into the
// store. Drivers are inserted before the variables they drive, so src must be
// acyclic.
func (s *Store) Import(ctx context.Context, src variables.Reader) (*ImportResult, error) {
	graph, err := dependencies.LoadAll(ctx, src, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load source records: %w", err)
	}

	info := graph.GetInfo()
	result := &ImportResult{IDs: make(map[int64]int64, info.TotalVariables)}

	for level := 0; level <= info.MaxLevel; level++ {
		for _, srcID := range info.Levels[level] {
			node, err := graph.GetNode(srcID)
			if err != nil {
				return nil, err
			}

			v := *node.Variable
			v.ID = 0

			if v.DriverID != nil {
				mapped, ok := result.IDs[*v.DriverID]
				if !ok {
					return nil, fmt.Errorf("%w: %d referenced by %q", ErrDriverNotFound, *v.DriverID, v.Name)
				}

				v.DriverID = variables.ID(mapped)
			}

			id, err := s.CreateVariable(ctx, &v)
			if err != nil {
				return nil, err
			}

			result.IDs[srcID] = id

			for _, o := range node.Overrides {
				if err := s.SetOverride(ctx, id, o.Year, o.Value); err != nil {
					return nil, err
				}

				result.Overrides++
			}
		}
	}

	target, err := src.GetTargetYear(ctx)
	switch {
	case errors.Is(err, variables.ErrTargetYearNotConfigured):
	case err != nil:
		return nil, err
	default:
		if err := s.SetTargetYear(ctx, target); err != nil {
			return nil, err
		}

		result.TargetYear = target
	}

	s.log.WithFields(logrus.Fields{
		"variables":   len(result.IDs),
		"overrides":   result.Overrides,
		"target_year": result.TargetYear,
	}).Info("Imported records")

	return result, nil
}
