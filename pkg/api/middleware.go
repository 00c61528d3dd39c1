package api

import (
	"errors"
	"strconv"

	"github.com/ethpandaops/projector/pkg/observability"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// requestLogFormat keeps the query string since targetYear and runs shape each forecast
const requestLogFormat = "${time} ${status} ${method} ${path}?${queryParams} ${latency}\n"

// setupMiddleware applies the middleware shared by every route
func setupMiddleware(app *fiber.App, cfg *Config) {
	// A panicking formula evaluation answers 500 instead of killing the server.
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: requestLogFormat,
	}))

	// Dashboards on other origins only read forecasts.
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.origins(),
		AllowMethods: []string{fiber.MethodGet, fiber.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))
}

// errorHandler renders every failure as {error, code} and counts server-side ones
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if ok := errors.As(err, &fiberErr); ok {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		observability.RecordError("api", strconv.Itoa(code))
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
