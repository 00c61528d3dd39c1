package storage

import (
	"fmt"
	"io"

	"github.com/ethpandaops/projector/pkg/storage/catalog"
	"github.com/ethpandaops/projector/pkg/storage/sqlite"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured reader and a closer releasing it
func Open(log logrus.FieldLogger, cfg *Config) (variables.Reader, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.Driver {
	case DriverCatalog:
		c, err := catalog.Load(log, &cfg.Catalog)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
		}

		return c, nopCloser{}, nil
	default:
		s, err := sqlite.Open(log, cfg.Path)
		if err != nil {
			return nil, nil, err
		}

		return s, s, nil
	}
}
