package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethpandaops/projector/pkg/variables"
)

// VariableOption is a functional option for customizing test variables.
type VariableOption func(*variables.Variable)

// WithLinear sets the linear response coefficient.
func WithLinear(c float64) VariableOption {
	return func(v *variables.Variable) {
		v.Linear = variables.Float(c)
	}
}

// WithCoefficients replaces all response coefficients.
func WithCoefficients(c variables.Coefficients) VariableOption {
	return func(v *variables.Variable) {
		v.Coefficients = c
	}
}

// WithNoise sets the noise percentage.
func WithNoise(pct float64) VariableOption {
	return func(v *variables.Variable) {
		v.NoisePct = variables.Float(pct)
	}
}

// WithBaseLevel sets the level at the base year.
func WithBaseLevel(level float64) VariableOption {
	return func(v *variables.Variable) {
		v.BaseLevel = level
	}
}

// Input creates an input variable.
func Input(id int64, name string, baseLevel float64) *variables.Variable {
	return &variables.Variable{ID: id, Name: name, Kind: variables.KindInput, BaseLevel: baseLevel}
}

// Calculated creates a calculated variable driven by driverID with a base level of 100.
func Calculated(id int64, name string, driverID int64, opts ...VariableOption) *variables.Variable {
	v := &variables.Variable{
		ID:        id,
		Name:      name,
		Kind:      variables.KindCalculated,
		BaseLevel: 100,
		DriverID:  variables.ID(driverID),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Store is an in-memory variables.Reader for unit tests.
type Store struct {
	mu        sync.RWMutex
	vars      []*variables.Variable
	overrides map[int64][]variables.Override
	target    *int

	// OverridesErr, when set, is returned by ListOverrides.
	OverridesErr error

	calls map[string]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		overrides: make(map[int64][]variables.Override),
		calls:     make(map[string]int),
	}
}

// Add appends variables in insertion order.
func (s *Store) Add(vars ...*variables.Variable) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vars = append(s.vars, vars...)

	return s
}

// Override records a known value for a variable in a year.
func (s *Store) Override(id int64, year int, value float64) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[id] = append(s.overrides[id], variables.Override{VariableID: id, Year: year, Value: variables.Float(value)})

	return s
}

// Placeholder records an override with no known value.
func (s *Store) Placeholder(id int64, year int) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[id] = append(s.overrides[id], variables.Override{VariableID: id, Year: year})

	return s
}

// WithTargetYear sets the target year.
func (s *Store) WithTargetYear(year int) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.target = &year

	return s
}

// Calls returns how many times a Reader method was invoked.
func (s *Store) Calls(method string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.calls[method]
}

func (s *Store) count(method string) {
	s.calls[method]++
}

// GetVariable implements variables.Reader.
func (s *Store) GetVariable(_ context.Context, id int64) (*variables.Variable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("GetVariable")

	for _, v := range s.vars {
		if v.ID == id {
			clone := *v
			return &clone, nil
		}
	}

	return nil, fmt.Errorf("%w: %d", variables.ErrVariableNotFound, id)
}

// ListVariants implements variables.Reader.
func (s *Store) ListVariants(_ context.Context, name string) ([]*variables.Variable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListVariants")

	out := make([]*variables.Variable, 0)
	for _, v := range s.vars {
		if v.Name == name {
			clone := *v
			out = append(out, &clone)
		}
	}

	return out, nil
}

// ListOverrides implements variables.Reader.
func (s *Store) ListOverrides(_ context.Context, variableID int64) ([]variables.Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListOverrides")

	if s.OverridesErr != nil {
		return nil, s.OverridesErr
	}

	return append([]variables.Override(nil), s.overrides[variableID]...), nil
}

// GetTargetYear implements variables.Reader.
func (s *Store) GetTargetYear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("GetTargetYear")

	if s.target == nil {
		return 0, variables.ErrTargetYearNotConfigured
	}

	return *s.target, nil
}

// ListNames implements variables.Reader.
func (s *Store) ListNames(_ context.Context, kind variables.Kind) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListNames")

	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, v := range s.vars {
		if kind != "" && v.Kind != kind {
			continue
		}
		if _, ok := seen[v.Name]; ok {
			continue
		}
		seen[v.Name] = struct{}{}
		names = append(names, v.Name)
	}

	return names, nil
}

// GDPTax returns the worked example: GDP (input, 100 in 2023, 120 in 2025)
// driving Tax (linear 0.5) with a target year of 2027.
func GDPTax() *Store {
	return NewStore().
		Add(
			Input(1, "GDP", 100),
			Calculated(2, "Tax", 1, WithLinear(0.5)),
		).
		Override(1, 2025, 120).
		WithTargetYear(2027)
}

var _ variables.Reader = (*Store)(nil)
