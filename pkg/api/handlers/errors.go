package handlers

import (
	"context"
	"errors"

	"github.com/ethpandaops/projector/pkg/comparison"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/gofiber/fiber/v3"
)

// ErrInvalidVariableID is returned when a variable id is not a positive integer
var ErrInvalidVariableID = fiber.NewError(fiber.StatusBadRequest, "invalid variable id, expected a positive integer")

// ErrInvalidRunsParam is returned when the runs parameter is not an integer
var ErrInvalidRunsParam = fiber.NewError(fiber.StatusBadRequest, "invalid runs, expected an integer")

// ErrInvalidNoiseParam is returned when the noise parameter is not a boolean
var ErrInvalidNoiseParam = fiber.NewError(fiber.StatusBadRequest, "invalid noise, expected true or false")

// ErrIncompletePair is returned when only one side of a comparison is given
var ErrIncompletePair = fiber.NewError(fiber.StatusBadRequest, "first and second must be given together")

var notFound = []error{
	variables.ErrVariableNotFound,
}

var unprocessable = []error{
	variables.ErrNoDriverVariants,
	variables.ErrInsufficientAnchors,
	variables.ErrMissingOverrideData,
	variables.ErrCyclicDependency,
	variables.ErrTargetYearNotConfigured,
	variables.ErrInvalidVariableDefinition,
	variables.ErrNonFiniteValue,
	variables.ErrMaxDepthExceeded,
	comparison.ErrNotEnoughVariables,
}

var badRequest = []error{
	variables.ErrInvalidRuns,
	variables.ErrInvalidTargetYear,
}

// toFiberError maps engine errors onto HTTP status codes. Anything unknown
// is passed through and ends up as a 500.
func toFiberError(err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return err
	}

	switch {
	case errors.Is(err, variables.ErrEmptyRunSet):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case matches(err, notFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case matches(err, badRequest):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case matches(err, unprocessable):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	}

	return err
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
