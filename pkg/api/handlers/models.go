package handlers

import (
	"github.com/ethpandaops/projector/pkg/comparison"
	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/ethpandaops/projector/pkg/variables"
)

// VariableGroup is a name together with its variants
type VariableGroup struct {
	Name     string                `json:"name"`
	Variants []*variables.Variable `json:"variants"`
}

// VariablesResponse is returned by GET /variables
type VariablesResponse struct {
	Variables []VariableGroup `json:"variables"`
	Total     int             `json:"total"`
}

// SeriesResponse is returned by GET /variables/{id}/series
type SeriesResponse struct {
	VariableID int64     `json:"variable_id"`
	Noise      bool      `json:"noise"`
	Years      []int     `json:"years"`
	Values     []float64 `json:"values"`
}

// SimulationResponse is returned by GET /variables/{id}/simulation
type SimulationResponse struct {
	*simulation.Result
	Label string    `json:"label"`
	Upper []float64 `json:"upper"`
	Lower []float64 `json:"lower"`
}

// ComparisonResponse is returned by GET /comparison
type ComparisonResponse struct {
	Title  string            `json:"title"`
	Years  []int             `json:"years"`
	First  comparison.Series `json:"first"`
	Second comparison.Series `json:"second"`
}

// GraphVariable is one vertex of the driver graph
type GraphVariable struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Kind       variables.Kind `json:"kind"`
	DriverName string         `json:"driver_name,omitempty"`
	Drivers    []int64        `json:"drivers"`
	Dependents []int64        `json:"dependents"`
}

// GraphResponse is returned by GET /graph
type GraphResponse struct {
	*dependencies.Info
	Variables []GraphVariable `json:"variables"`
}
