package handlers

import (
	"strconv"

	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/gofiber/fiber/v3"
)

// ListVariables handles GET /api/v1/variables
func (s *Server) ListVariables(c fiber.Ctx) error {
	kind := variables.Kind(c.Query("kind"))
	if kind != "" && !kind.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid kind, expected Input or Calculated")
	}

	names, err := s.reader.ListNames(c.Context(), kind)
	if err != nil {
		return toFiberError(err)
	}

	groups := make([]VariableGroup, 0, len(names))
	for _, name := range names {
		variants, err := s.reader.ListVariants(c.Context(), name)
		if err != nil {
			return toFiberError(err)
		}

		groups = append(groups, VariableGroup{Name: name, Variants: variants})
	}

	return c.Status(fiber.StatusOK).JSON(VariablesResponse{
		Variables: groups,
		Total:     len(groups),
	})
}

// GetVariable handles GET /api/v1/variables/{id}
func (s *Server) GetVariable(c fiber.Ctx) error {
	id, err := variableID(c.Params("id"))
	if err != nil {
		return err
	}

	v, err := s.reader.GetVariable(c.Context(), id)
	if err != nil {
		return toFiberError(err)
	}

	return c.Status(fiber.StatusOK).JSON(v)
}

// GetSeries handles GET /api/v1/variables/{id}/series. Noise is applied
// unless noise=false is given.
func (s *Server) GetSeries(c fiber.Ctx) error {
	id, err := variableID(c.Params("id"))
	if err != nil {
		return err
	}

	noisy := true
	if raw := c.Query("noise"); raw != "" {
		noisy, err = strconv.ParseBool(raw)
		if err != nil {
			return ErrInvalidNoiseParam
		}
	}

	target, err := s.targetYear(c)
	if err != nil {
		return err
	}

	values, err := s.orchestrator.Series(c.Context(), id, target, noisy)
	if err != nil {
		return toFiberError(err)
	}

	years, err := variables.Years(target)
	if err != nil {
		return toFiberError(err)
	}

	return c.Status(fiber.StatusOK).JSON(SeriesResponse{
		VariableID: id,
		Noise:      noisy,
		Years:      years,
		Values:     values,
	})
}

// GetSimulation handles GET /api/v1/variables/{id}/simulation
func (s *Server) GetSimulation(c fiber.Ctx) error {
	id, err := variableID(c.Params("id"))
	if err != nil {
		return err
	}

	runs, err := runsParam(c)
	if err != nil {
		return err
	}

	target, err := s.targetYear(c)
	if err != nil {
		return err
	}

	result, err := s.orchestrator.Simulate(c.Context(), id, target, runs)
	if err != nil {
		return toFiberError(err)
	}

	label := result.Title.String()
	if c.Query("markup") == "html" {
		label = result.Title.HTML()
	}

	return c.Status(fiber.StatusOK).JSON(SimulationResponse{
		Result: result,
		Label:  label,
		Upper:  result.Upper(),
		Lower:  result.Lower(),
	})
}

// targetYear reads the targetYear parameter, falling back to the stored year
func (s *Server) targetYear(c fiber.Ctx) (int, error) {
	raw := c.Query("targetYear")
	if raw == "" {
		year, err := s.reader.GetTargetYear(c.Context())
		if err != nil {
			return 0, toFiberError(err)
		}

		return year, nil
	}

	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid targetYear, expected an integer")
	}

	return year, nil
}

func variableID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidVariableID
	}

	return id, nil
}

func runsParam(c fiber.Ctx) (int, error) {
	raw := c.Query("runs")
	if raw == "" {
		return 0, nil
	}

	runs, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidRunsParam
	}

	return runs, nil
}
