// Package variables defines the indicator records the projection engine reads
// and the data-access contract it requires from its storage collaborator.
package variables

import (
	"context"
	"fmt"
)

// BaseYear is the anchor year every base level refers to
const BaseYear = 2023

// Kind distinguishes observed indicators from derived ones
type Kind string

const (
	// KindInput marks a variable densified from sparse yearly overrides
	KindInput Kind = "Input"
	// KindCalculated marks a variable derived from a driver through the response formula
	KindCalculated Kind = "Calculated"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return k == KindInput || k == KindCalculated
}

// Coefficients holds the optional response terms of a calculated variable.
// A nil term is not configured.
type Coefficients struct {
	Linear    *float64 `yaml:"linear,omitempty" json:"linear,omitempty"`
	Quadratic *float64 `yaml:"quadratic,omitempty" json:"quadratic,omitempty"`
	Cubic     *float64 `yaml:"cubic,omitempty" json:"cubic,omitempty"`
	Log       *float64 `yaml:"log,omitempty" json:"log,omitempty"`
	ExpScale  *float64 `yaml:"expScale,omitempty" json:"exp_scale,omitempty"`
	ExpRate   *float64 `yaml:"expRate,omitempty" json:"exp_rate,omitempty"`
}

// IsZero returns true if no term is configured
func (c Coefficients) IsZero() bool {
	return c.Linear == nil && c.Quadratic == nil && c.Cubic == nil &&
		c.Log == nil && c.ExpScale == nil && c.ExpRate == nil
}

// Variable is a named indicator. Several variables may share a name; each is
// then a variant (scenario) of the same conceptual indicator.
type Variable struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Kind      Kind    `json:"kind"`
	BaseLevel float64 `json:"base_level"`
	DriverID  *int64  `json:"driver_id,omitempty"`

	Coefficients
	NoisePct *float64 `json:"noise_pct,omitempty"`

	Options    string `json:"options,omitempty"`
	Definition string `json:"definition,omitempty"`
	Units      string `json:"units,omitempty"`
	Source     string `json:"source,omitempty"`
}

// HasNoise returns true if a non-zero noise percentage is configured
func (v *Variable) HasNoise() bool {
	return v.NoisePct != nil && *v.NoisePct != 0
}

// Validate checks the per-kind invariants of a variable definition
func (v *Variable) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: variable %d has no name", ErrInvalidVariableDefinition, v.ID)
	}

	switch v.Kind {
	case KindInput:
		if v.DriverID != nil || !v.Coefficients.IsZero() || v.NoisePct != nil {
			return fmt.Errorf("%w: input variable %q must not have a driver, coefficients or noise",
				ErrInvalidVariableDefinition, v.Name)
		}
	case KindCalculated:
		if v.DriverID == nil {
			return fmt.Errorf("%w: calculated variable %q has no driver", ErrInvalidVariableDefinition, v.Name)
		}
	default:
		return fmt.Errorf("%w: variable %q has unknown kind %q", ErrInvalidVariableDefinition, v.Name, v.Kind)
	}

	return nil
}

// String returns the variable name
func (v *Variable) String() string {
	return v.Name
}

// Override is a sparse observed value for an input variable in one year.
// A nil Value is not yet known.
type Override struct {
	VariableID int64    `json:"variable_id"`
	Year       int      `json:"year"`
	Value      *float64 `json:"value"`
}

// Reader is the synchronous data-access contract the engine needs from its
// storage collaborator. The engine never writes through it.
type Reader interface {
	// GetVariable returns the variable with the given id or ErrVariableNotFound
	GetVariable(ctx context.Context, id int64) (*Variable, error)

	// ListVariants returns every variable sharing name
	ListVariants(ctx context.Context, name string) ([]*Variable, error)

	// ListOverrides returns the yearly overrides recorded for a variable
	ListOverrides(ctx context.Context, variableID int64) ([]Override, error)

	// GetTargetYear returns the last year to project through or ErrTargetYearNotConfigured
	GetTargetYear(ctx context.Context) (int, error)

	// ListNames returns the distinct variable names in insertion order.
	// An empty kind lists every name.
	ListNames(ctx context.Context, kind Kind) ([]string, error)
}

// Float returns a pointer to f
func Float(f float64) *float64 {
	return &f
}

// ID returns a pointer to id
func ID(id int64) *int64 {
	return &id
}
