package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethpandaops/projector/pkg/api/handlers"
	"github.com/ethpandaops/projector/pkg/comparison"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/sirupsen/logrus"
)

// Service defines the API service interface
type Service interface {
	Start(ctx context.Context) error
	Stop() error
}

type service struct {
	app          *fiber.App
	server       *http.Server
	config       *Config
	reader       variables.Reader
	orchestrator *simulation.Orchestrator
	assembler    *comparison.Assembler
	log          logrus.FieldLogger
}

// NewService creates a new API service
func NewService(cfg *Config, reader variables.Reader, orchestrator *simulation.Orchestrator, assembler *comparison.Assembler, log logrus.FieldLogger) Service {
	return &service{
		config:       cfg,
		reader:       reader,
		orchestrator: orchestrator,
		assembler:    assembler,
		log:          log.WithField("service", "api"),
	}
}

// NewApp builds the fiber application serving the API under /api/v1
func NewApp(cfg *Config, reader variables.Reader, orchestrator *simulation.Orchestrator, assembler *comparison.Assembler, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		AppName:      "Projector API",
	})

	setupMiddleware(app, cfg)

	handlers.NewServer(reader, orchestrator, assembler, log).Register(app.Group("/api/v1"))

	return app
}

// Start initializes and starts the API server
func (s *service) Start(_ context.Context) error {
	if !s.config.Enabled {
		s.log.Info("API service is disabled")
		return nil
	}

	s.app = NewApp(s.config, s.reader, s.orchestrator, s.assembler, s.log)

	// fiber is served through net/http so shutdown drains in-flight simulations.
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           adaptor.FiberApp(s.app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.log.WithField("addr", s.config.Addr).Info("Starting API server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Server failed to start")
		}
	}()

	return nil
}

// Stop gracefully shuts down the API server
func (s *service) Stop() error {
	if s.server == nil {
		return nil
	}

	s.log.Info("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.shutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
