package handlers

import (
	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/gofiber/fiber/v3"
)

// GetGraph handles GET /api/v1/graph
func (s *Server) GetGraph(c fiber.Ctx) error {
	graph, err := s.loadGraph(c)
	if err != nil {
		return err
	}

	nodes := graph.Nodes()
	out := make([]GraphVariable, 0, len(nodes))

	for _, node := range nodes {
		out = append(out, GraphVariable{
			ID:         node.Variable.ID,
			Name:       node.Variable.Name,
			Kind:       node.Variable.Kind,
			DriverName: node.DriverName,
			Drivers:    graph.GetDependencies(node.Variable.ID),
			Dependents: graph.GetDependents(node.Variable.ID),
		})
	}

	return c.Status(fiber.StatusOK).JSON(GraphResponse{
		Info:      graph.GetInfo(),
		Variables: out,
	})
}

// GetGraphDOT handles GET /api/v1/graph/dot
func (s *Server) GetGraphDOT(c fiber.Ctx) error {
	graph, err := s.loadGraph(c)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/vnd.graphviz; charset=utf-8")

	return c.Status(fiber.StatusOK).SendString(graph.GenerateDOTFormat())
}

func (s *Server) loadGraph(c fiber.Ctx) (*dependencies.Graph, error) {
	graph, err := dependencies.LoadAll(c.Context(), s.reader, s.orchestrator.Config().MaxDepth)
	if err != nil {
		s.log.WithError(err).Warn("Failed to load driver graph")
		return nil, toFiberError(err)
	}

	return graph, nil
}
