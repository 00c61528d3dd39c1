package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // pprof is intentionally exposed when pprofAddr is configured
	"time"

	"github.com/ethpandaops/projector/pkg/api"
	"github.com/ethpandaops/projector/pkg/cache"
	"github.com/ethpandaops/projector/pkg/comparison"
	"github.com/ethpandaops/projector/pkg/observability"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/ethpandaops/projector/pkg/storage"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service encapsulates the projector application
type Service struct {
	config *Config
	log    *logrus.Logger

	reader       variables.Reader
	storage      io.Closer
	orchestrator *simulation.Orchestrator
	assembler    *comparison.Assembler
	api          api.Service

	// Servers
	healthServer *http.Server
	pprofServer  *http.Server

	redisClient *redis.Client
}

// NewService opens storage and builds the simulation services. Nothing is
// served until Start is called.
func NewService(log *logrus.Logger, cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	reader, closer, err := storage.Open(log, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	svc := &Service{
		log:     log,
		config:  cfg,
		reader:  reader,
		storage: closer,
	}

	if cfg.Redis.Enabled() {
		svc.redisClient, err = cfg.Redis.NewClient()
		if err != nil {
			_ = closer.Close()
			return nil, err
		}

		svc.reader = cache.NewReader(log, reader, svc.redisClient, &cfg.Redis)
	}

	svc.orchestrator = simulation.NewOrchestrator(log, svc.reader, &cfg.Simulation)
	svc.assembler = comparison.NewAssembler(log, svc.reader, svc.orchestrator)
	svc.api = api.NewService(&cfg.API, svc.reader, svc.orchestrator, svc.assembler, log)

	return svc, nil
}

// Reader returns the (possibly cached) record reader
func (a *Service) Reader() variables.Reader {
	return a.reader
}

// Orchestrator returns the simulation orchestrator
func (a *Service) Orchestrator() *simulation.Orchestrator {
	return a.orchestrator
}

// Assembler returns the comparison assembler
func (a *Service) Assembler() *comparison.Assembler {
	return a.assembler
}

// Start starts the metrics, health check, pprof and API servers
func (a *Service) Start(ctx context.Context) error {
	a.log.Info("Starting projector...")

	if a.config.MetricsAddr != "" {
		observability.StartMetricsServer(a.config.MetricsAddr)
		a.log.WithField("addr", a.config.MetricsAddr).Info("Started metrics server")
	}

	if a.config.HealthCheckAddr != "" {
		a.startHealthCheck()
	}

	if a.config.PProfAddr != "" {
		a.startPProf()
	}

	if err := a.api.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API service: %w", err)
	}

	a.log.Info("Projector started successfully")

	return nil
}

// Stop shuts down the servers and releases storage and Redis
func (a *Service) Stop() error {
	a.log.Info("Shutting down projector...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopService := func(name string, stopFunc func() error) {
		if err := stopFunc(); err != nil {
			a.log.WithError(err).Errorf("Failed to stop %s", name)
		}
	}

	// 1. Stop accepting requests
	if a.api != nil {
		stopService("API service", a.api.Stop)
	}

	// 2. Close Redis (now safe, nothing is using it)
	if a.redisClient != nil {
		stopService("Redis client", a.redisClient.Close)
	}

	if a.healthServer != nil {
		stopService("health check server", func() error { return a.healthServer.Shutdown(ctx) })
	}
	if a.pprofServer != nil {
		stopService("pprof server", func() error { return a.pprofServer.Shutdown(ctx) })
	}
	stopService("metrics server", func() error { return observability.StopMetricsServer(ctx) })

	// Storage last (critical - return error if fails)
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.log.WithError(err).Error("Failed to close storage")
			return err
		}
	}

	return nil
}

// ready checks that the storage answers a lookup
func (a *Service) ready(ctx context.Context) error {
	_, err := a.reader.ListNames(ctx, "")
	return err
}

func (a *Service) healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := a.ready(r.Context()); err != nil {
			a.log.WithError(err).Warn("Readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

func (a *Service) startHealthCheck() {
	a.log.WithField("addr", a.config.HealthCheckAddr).Info("Starting health check server")

	a.healthServer = &http.Server{
		Addr:              a.config.HealthCheckAddr,
		Handler:           a.healthHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("Health check server failed")
		}
	}()
}

func (a *Service) startPProf() {
	a.log.WithField("addr", a.config.PProfAddr).Info("Starting pprof server")

	a.pprofServer = &http.Server{
		Addr:              a.config.PProfAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	go func() {
		if err := a.pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("Pprof server failed")
		}
	}()
}
