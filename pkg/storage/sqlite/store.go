// Package sqlite stores variables, yearly overrides and the target year in a
// SQLite database and serves them through variables.Reader.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethpandaops/projector/pkg/observability"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var (
	// ErrPathRequired is returned when no database path is given
	ErrPathRequired = errors.New("storage path is required")
	// ErrDriverNotFound is returned when a calculated variable references an unknown driver
	ErrDriverNotFound = errors.New("driver variable not found")
	// ErrNotInputVariable is returned when an override is written for a calculated variable
	ErrNotInputVariable = errors.New("overrides can only be recorded for input variables")
)

const variableColumns = `id, name, kind, base_level, driver_id,
	linear_coeff, quadratic_coeff, cubic_coeff, log_coeff, exp_coeff, exp_rate_coeff,
	noise_pct, options, definition, units, source`

// Store is a SQLite-backed variables.Reader with the administrative writes
// needed to maintain the records.
type Store struct {
	log logrus.FieldLogger
	db  *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations.
// Use ":memory:" for a private in-memory database.
func Open(log logrus.FieldLogger, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}

	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &Store{
		log: log.WithField("component", "storage.sqlite"),
		db:  db,
	}

	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// record reports the outcome of a storage query
func record(operation string, err error) {
	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusError
	}

	observability.RecordStorageQuery(operation, status)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVariable(row scanner) (*variables.Variable, error) {
	var (
		v                                         variables.Variable
		kind                                      string
		driverID                                  sql.NullInt64
		linear, quadratic, cubic, logc, exp, rate sql.NullFloat64
		noise                                     sql.NullFloat64
	)

	if err := row.Scan(&v.ID, &v.Name, &kind, &v.BaseLevel, &driverID,
		&linear, &quadratic, &cubic, &logc, &exp, &rate,
		&noise, &v.Options, &v.Definition, &v.Units, &v.Source); err != nil {
		return nil, err
	}

	v.Kind = variables.Kind(kind)
	if driverID.Valid {
		v.DriverID = variables.ID(driverID.Int64)
	}

	v.Linear = nullable(linear)
	v.Quadratic = nullable(quadratic)
	v.Cubic = nullable(cubic)
	v.Log = nullable(logc)
	v.ExpScale = nullable(exp)
	v.ExpRate = nullable(rate)
	v.NoisePct = nullable(noise)

	return &v, nil
}

func nullable(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}

	return variables.Float(f.Float64)
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *i, Valid: true}
}

// GetVariable implements variables.Reader
func (s *Store) GetVariable(ctx context.Context, id int64) (*variables.Variable, error) {
	v, err := scanVariable(s.db.QueryRowContext(ctx,
		`SELECT `+variableColumns+` FROM variables WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		record("get_variable", nil)
		return nil, fmt.Errorf("%w: %d", variables.ErrVariableNotFound, id)
	}

	record("get_variable", err)

	if err != nil {
		return nil, fmt.Errorf("failed to get variable %d: %w", id, err)
	}

	return v, nil
}

// ListVariants implements variables.Reader
func (s *Store) ListVariants(ctx context.Context, name string) ([]*variables.Variable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+variableColumns+` FROM variables WHERE name = ? ORDER BY id`, name)
	record("list_variants", err)

	if err != nil {
		return nil, fmt.Errorf("failed to list variants of %q: %w", name, err)
	}
	defer rows.Close()

	out := make([]*variables.Variable, 0)
	for rows.Next() {
		v, err := scanVariable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variable: %w", err)
		}

		out = append(out, v)
	}

	return out, rows.Err()
}

// ListOverrides implements variables.Reader
func (s *Store) ListOverrides(ctx context.Context, variableID int64) ([]variables.Override, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT variable_id, year, value FROM yearly_input_values WHERE variable_id = ? ORDER BY year`, variableID)
	record("list_overrides", err)

	if err != nil {
		return nil, fmt.Errorf("failed to list overrides of %d: %w", variableID, err)
	}
	defer rows.Close()

	out := make([]variables.Override, 0)
	for rows.Next() {
		var (
			o     variables.Override
			value sql.NullFloat64
		)

		if err := rows.Scan(&o.VariableID, &o.Year, &value); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}

		o.Value = nullable(value)
		out = append(out, o)
	}

	return out, rows.Err()
}

// GetTargetYear implements variables.Reader
func (s *Store) GetTargetYear(ctx context.Context) (int, error) {
	var year int

	err := s.db.QueryRowContext(ctx, `SELECT year FROM target_year WHERE id = 1`).Scan(&year)
	if errors.Is(err, sql.ErrNoRows) {
		record("get_target_year", nil)
		return 0, variables.ErrTargetYearNotConfigured
	}

	record("get_target_year", err)

	if err != nil {
		return 0, fmt.Errorf("failed to get target year: %w", err)
	}

	return year, nil
}

// ListNames implements variables.Reader. Names are ordered by their first id.
func (s *Store) ListNames(ctx context.Context, kind variables.Kind) ([]string, error) {
	query := `SELECT name FROM variables GROUP BY name ORDER BY MIN(id)`
	args := []any{}

	if kind != "" {
		query = `SELECT name FROM variables WHERE kind = ? GROUP BY name ORDER BY MIN(id)`
		args = append(args, string(kind))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	record("list_names", err)

	if err != nil {
		return nil, fmt.Errorf("failed to list variable names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

var _ variables.Reader = (*Store)(nil)
