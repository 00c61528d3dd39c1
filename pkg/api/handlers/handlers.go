// Package handlers implements the request handlers of the projector API.
package handlers

import (
	"github.com/ethpandaops/projector/pkg/comparison"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// Server serves variable records, forecasts and comparisons
type Server struct {
	reader       variables.Reader
	orchestrator *simulation.Orchestrator
	assembler    *comparison.Assembler
	log          logrus.FieldLogger
}

// NewServer creates a new API server instance
func NewServer(reader variables.Reader, orchestrator *simulation.Orchestrator, assembler *comparison.Assembler, log logrus.FieldLogger) *Server {
	return &Server{
		reader:       reader,
		orchestrator: orchestrator,
		assembler:    assembler,
		log:          log.WithField("component", "api.handlers"),
	}
}

// Register mounts every handler on router
func (s *Server) Register(router fiber.Router) {
	router.Get("/variables", s.ListVariables)
	router.Get("/variables/:id", s.GetVariable)
	router.Get("/variables/:id/series", s.GetSeries)
	router.Get("/variables/:id/simulation", s.GetSimulation)
	router.Get("/comparison", s.GetComparison)
	router.Get("/graph", s.GetGraph)
	router.Get("/graph/dot", s.GetGraphDOT)
}
