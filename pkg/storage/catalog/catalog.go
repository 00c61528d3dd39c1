// Package catalog serves variables, overrides and the target year from YAML
// files. It is read-only and is typically used to seed a database or to run
// simulations without one.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateID is returned when two entries claim the same id
	ErrDuplicateID = errors.New("duplicate variable id")
	// ErrUnknownDriver is returned when a driver reference does not resolve
	ErrUnknownDriver = errors.New("unknown driver")
	// ErrConflictingTargetYear is returned when files set different target years
	ErrConflictingTargetYear = errors.New("conflicting target years")
	// ErrAmbiguousDriver is returned when an entry sets both driver forms
	ErrAmbiguousDriver = errors.New("driver and driverId are mutually exclusive")
)

// File is the YAML layout of one catalog file
type File struct {
	TargetYear *int    `yaml:"targetYear,omitempty"`
	Variables  []Entry `yaml:"variables"`
}

// Entry is one variable in a catalog file
type Entry struct {
	ID        int64          `yaml:"id,omitempty"`
	Name      string         `yaml:"name"`
	Kind      variables.Kind `yaml:"kind" default:"Input"`
	BaseLevel float64        `yaml:"baseLevel"`
	// Driver references the driver by name, resolving to its lowest id variant
	Driver string `yaml:"driver,omitempty"`
	// DriverID references the driver by id
	DriverID     *int64                 `yaml:"driverId,omitempty"`
	Coefficients variables.Coefficients `yaml:"coefficients,omitempty"`
	NoisePct     *float64               `yaml:"noisePct,omitempty"`
	Overrides    map[int]*float64       `yaml:"overrides,omitempty"`

	Options    string `yaml:"options,omitempty"`
	Definition string `yaml:"definition,omitempty"`
	Units      string `yaml:"units,omitempty"`
	Source     string `yaml:"source,omitempty"`
}

// Catalog is an in-memory variables.Reader built from catalog files
type Catalog struct {
	log       logrus.FieldLogger
	vars      []*variables.Variable
	byID      map[int64]*variables.Variable
	overrides map[int64][]variables.Override
	target    *int
}

// Load discovers and parses every catalog file under the configured paths
func Load(log logrus.FieldLogger, cfg *Config) (*Catalog, error) {
	files, err := Discover(cfg.GetPaths())
	if err != nil {
		return nil, err
	}

	return LoadFiles(log, files...)
}

// LoadFiles parses the given catalog files in order
func LoadFiles(log logrus.FieldLogger, paths ...string) (*Catalog, error) {
	parsed := make([]File, 0, len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
		}

		f, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
		}

		parsed = append(parsed, *f)
	}

	c, err := New(log, parsed...)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"files":     len(paths),
		"variables": len(c.vars),
	}).Info("Loaded catalog")

	return c, nil
}

// Parse decodes one catalog file and applies entry defaults
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	for i := range f.Variables {
		if err := defaults.Set(&f.Variables[i]); err != nil {
			return nil, fmt.Errorf("failed to set defaults for %q: %w", f.Variables[i].Name, err)
		}
	}

	return &f, nil
}

// New builds a catalog from parsed files. Entries without an id are numbered
// after the highest explicit id, in file order.
func New(log logrus.FieldLogger, files ...File) (*Catalog, error) {
	c := &Catalog{
		log:       log.WithField("component", "storage.catalog"),
		byID:      make(map[int64]*variables.Variable),
		overrides: make(map[int64][]variables.Override),
	}

	var (
		entries []Entry
		nextID  int64
	)

	for _, f := range files {
		if f.TargetYear != nil {
			if c.target != nil && *c.target != *f.TargetYear {
				return nil, fmt.Errorf("%w: %d and %d", ErrConflictingTargetYear, *c.target, *f.TargetYear)
			}

			year := *f.TargetYear
			c.target = &year
		}

		for _, e := range f.Variables {
			if e.ID > nextID {
				nextID = e.ID
			}

			entries = append(entries, e)
		}
	}

	for i := range entries {
		if entries[i].ID == 0 {
			nextID++
			entries[i].ID = nextID
		}

		if _, dup := c.byID[entries[i].ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, entries[i].ID)
		}

		v := entries[i].variable()
		c.vars = append(c.vars, v)
		c.byID[v.ID] = v
	}

	for _, e := range entries {
		if err := c.resolveDriver(e); err != nil {
			return nil, err
		}

		if err := c.byID[e.ID].Validate(); err != nil {
			return nil, err
		}

		if len(e.Overrides) > 0 && e.Kind != variables.KindInput {
			return nil, fmt.Errorf("%w: calculated variable %q has overrides", variables.ErrInvalidVariableDefinition, e.Name)
		}

		for year, value := range e.Overrides {
			c.overrides[e.ID] = append(c.overrides[e.ID], variables.Override{VariableID: e.ID, Year: year, Value: value})
		}

		sort.Slice(c.overrides[e.ID], func(i, j int) bool {
			return c.overrides[e.ID][i].Year < c.overrides[e.ID][j].Year
		})
	}

	return c, nil
}

func (e Entry) variable() *variables.Variable {
	return &variables.Variable{
		ID:           e.ID,
		Name:         e.Name,
		Kind:         e.Kind,
		BaseLevel:    e.BaseLevel,
		Coefficients: e.Coefficients,
		NoisePct:     e.NoisePct,
		Options:      e.Options,
		Definition:   e.Definition,
		Units:        e.Units,
		Source:       e.Source,
	}
}

func (c *Catalog) resolveDriver(e Entry) error {
	v := c.byID[e.ID]

	switch {
	case e.Driver != "" && e.DriverID != nil:
		return fmt.Errorf("%w: %q", ErrAmbiguousDriver, e.Name)
	case e.DriverID != nil:
		if _, ok := c.byID[*e.DriverID]; !ok {
			return fmt.Errorf("%w: id %d referenced by %q", ErrUnknownDriver, *e.DriverID, e.Name)
		}

		v.DriverID = variables.ID(*e.DriverID)
	case e.Driver != "":
		var driver *variables.Variable
		for _, candidate := range c.vars {
			if candidate.Name == e.Driver && (driver == nil || candidate.ID < driver.ID) {
				driver = candidate
			}
		}

		if driver == nil {
			return fmt.Errorf("%w: %q referenced by %q", ErrUnknownDriver, e.Driver, e.Name)
		}

		v.DriverID = variables.ID(driver.ID)
	}

	return nil
}

func clone(v *variables.Variable) *variables.Variable {
	out := *v
	return &out
}

// GetVariable implements variables.Reader
func (c *Catalog) GetVariable(_ context.Context, id int64) (*variables.Variable, error) {
	v, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", variables.ErrVariableNotFound, id)
	}

	return clone(v), nil
}

// ListVariants implements variables.Reader
func (c *Catalog) ListVariants(_ context.Context, name string) ([]*variables.Variable, error) {
	out := make([]*variables.Variable, 0)
	for _, v := range c.vars {
		if v.Name == name {
			out = append(out, clone(v))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// ListOverrides implements variables.Reader
func (c *Catalog) ListOverrides(_ context.Context, variableID int64) ([]variables.Override, error) {
	return append([]variables.Override{}, c.overrides[variableID]...), nil
}

// GetTargetYear implements variables.Reader
func (c *Catalog) GetTargetYear(_ context.Context) (int, error) {
	if c.target == nil {
		return 0, variables.ErrTargetYearNotConfigured
	}

	return *c.target, nil
}

// ListNames implements variables.Reader. Names keep their catalog order.
func (c *Catalog) ListNames(_ context.Context, kind variables.Kind) ([]string, error) {
	groups := variables.GroupByName(c.vars)

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		for _, v := range g.Variants {
			if kind == "" || v.Kind == kind {
				names = append(names, g.Name)
				break
			}
		}
	}

	return names, nil
}

var _ variables.Reader = (*Catalog)(nil)
