package variables

import "errors"

// Engine errors. Each one is terminal for the evaluation or simulation it occurs in.
var (
	// ErrVariableNotFound is returned when a variable id does not resolve
	ErrVariableNotFound = errors.New("variable not found")
	// ErrNoDriverVariants is returned when no variable carries the driver's name
	ErrNoDriverVariants = errors.New("no variants found for driver")
	// ErrInsufficientAnchors is returned when fewer than two anchor years are known
	ErrInsufficientAnchors = errors.New("at least two anchor years are required for interpolation")
	// ErrMissingOverrideData is returned when the yearly overrides could not be read
	ErrMissingOverrideData = errors.New("yearly override data is missing")
	// ErrCyclicDependency is returned when the driver relation contains a cycle
	ErrCyclicDependency = errors.New("cyclic driver dependency")
	// ErrTargetYearNotConfigured is returned when no target year is stored
	ErrTargetYearNotConfigured = errors.New("target year is not configured")
	// ErrEmptyRunSet is returned when no simulation run produced a series
	ErrEmptyRunSet = errors.New("no simulation run produced a result")
	// ErrInvalidVariableDefinition is returned when a variable violates its kind's invariants
	ErrInvalidVariableDefinition = errors.New("invalid variable definition")
	// ErrNonFiniteValue is returned when the response formula produces Inf or NaN
	ErrNonFiniteValue = errors.New("projection produced a non-finite value")
	// ErrInvalidTargetYear is returned when the target year precedes the base year
	ErrInvalidTargetYear = errors.New("target year precedes the base year")
	// ErrMaxDepthExceeded is returned when a driver chain is deeper than allowed
	ErrMaxDepthExceeded = errors.New("driver chain exceeds the maximum depth")
	// ErrInvalidRuns is returned when a simulation is requested with an out-of-range run count
	ErrInvalidRuns = errors.New("invalid number of simulation runs")
)
