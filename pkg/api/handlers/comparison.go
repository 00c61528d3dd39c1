package handlers

import (
	"github.com/ethpandaops/projector/pkg/comparison"
	"github.com/gofiber/fiber/v3"
)

// GetComparison handles GET /api/v1/comparison. Without first and second the
// first two distinct variables are compared.
func (s *Server) GetComparison(c fiber.Ctx) error {
	firstRaw, secondRaw := c.Query("first"), c.Query("second")

	var (
		first, second int64
		err           error
	)

	switch {
	case firstRaw == "" && secondRaw == "":
		first, second, err = s.assembler.DefaultPair(c.Context())
		if err != nil {
			return toFiberError(err)
		}
	case firstRaw == "" || secondRaw == "":
		return ErrIncompletePair
	default:
		if first, err = variableID(firstRaw); err != nil {
			return err
		}

		if second, err = variableID(secondRaw); err != nil {
			return err
		}
	}

	runs, err := runsParam(c)
	if err != nil {
		return err
	}

	target, err := s.targetYear(c)
	if err != nil {
		return err
	}

	result, err := s.assembler.Compare(c.Context(), first, second, target, runs)
	if err != nil {
		return toFiberError(err)
	}

	return c.Status(fiber.StatusOK).JSON(newComparisonResponse(result, c.Query("markup") == "html"))
}

func newComparisonResponse(result *comparison.Comparison, html bool) ComparisonResponse {
	title := result.Title()
	if html {
		title = result.TitleHTML()
	}

	return ComparisonResponse{
		Title:  title,
		Years:  result.Years,
		First:  result.First,
		Second: result.Second,
	}
}
