package sqlite

import (
	"context"
	"fmt"

	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
)

// CreateVariable validates and inserts v, returning the new id. A calculated
// variable's driver must already exist.
func (s *Store) CreateVariable(ctx context.Context, v *variables.Variable) (int64, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}

	if v.DriverID != nil {
		if _, err := s.GetVariable(ctx, *v.DriverID); err != nil {
			return 0, fmt.Errorf("%w: %d referenced by %q", ErrDriverNotFound, *v.DriverID, v.Name)
		}
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO variables (
			name, kind, base_level, driver_id,
			linear_coeff, quadratic_coeff, cubic_coeff, log_coeff, exp_coeff, exp_rate_coeff,
			noise_pct, options, definition, units, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Name, string(v.Kind), v.BaseLevel, nullInt(v.DriverID),
		nullFloat(v.Linear), nullFloat(v.Quadratic), nullFloat(v.Cubic), nullFloat(v.Log),
		nullFloat(v.ExpScale), nullFloat(v.ExpRate),
		nullFloat(v.NoisePct), v.Options, v.Definition, v.Units, v.Source,
	)
	record("create_variable", err)

	if err != nil {
		return 0, fmt.Errorf("failed to create variable %q: %w", v.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read id of variable %q: %w", v.Name, err)
	}

	s.log.WithFields(logrus.Fields{
		"variable_id": id,
		"variable":    v.Name,
		"kind":        v.Kind,
	}).Debug("Created variable")

	return id, nil
}

// SetOverride records the value of an input variable in a year. A nil value
// stores a placeholder that is excluded from interpolation.
func (s *Store) SetOverride(ctx context.Context, variableID int64, year int, value *float64) error {
	v, err := s.GetVariable(ctx, variableID)
	if err != nil {
		return err
	}

	if v.Kind != variables.KindInput {
		return fmt.Errorf("%w: %q is %s", ErrNotInputVariable, v.Name, v.Kind)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO yearly_input_values (variable_id, year, value)
		VALUES (?, ?, ?)
		ON CONFLICT (variable_id, year) DO UPDATE SET value = excluded.value`,
		variableID, year, nullFloat(value))
	record("set_override", err)

	if err != nil {
		return fmt.Errorf("failed to set override %d/%d: %w", variableID, year, err)
	}

	return nil
}

// SetTargetYear stores the last year simulations project through
func (s *Store) SetTargetYear(ctx context.Context, year int) error {
	if year < variables.BaseYear {
		return fmt.Errorf("%w: %d < %d", variables.ErrInvalidTargetYear, year, variables.BaseYear)
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO target_year (id, year) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET year = excluded.year`, year)
	record("set_target_year", err)

	if err != nil {
		return fmt.Errorf("failed to set target year: %w", err)
	}

	return nil
}

// EnsureOverrideGrid creates an empty override for every input variable and
// every year after the base year through the target year that has none yet.
// It returns the number of placeholders created.
func (s *Store) EnsureOverrideGrid(ctx context.Context) (int64, error) {
	target, err := s.GetTargetYear(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var created int64

	for year := variables.BaseYear + 1; year <= target; year++ {
		res, err := tx.ExecContext(ctx, `INSERT INTO yearly_input_values (variable_id, year, value)
			SELECT id, ?, NULL FROM variables WHERE kind = ?
			ON CONFLICT (variable_id, year) DO NOTHING`, year, string(variables.KindInput))
		if err != nil {
			record("ensure_override_grid", err)
			return 0, fmt.Errorf("failed to create placeholders for %d: %w", year, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count placeholders for %d: %w", year, err)
		}

		created += n
	}

	err = tx.Commit()
	record("ensure_override_grid", err)

	if err != nil {
		return 0, fmt.Errorf("failed to commit placeholders: %w", err)
	}

	return created, nil
}
