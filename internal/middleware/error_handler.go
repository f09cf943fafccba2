package middleware

import (
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the global Fiber error handler for errors that handlers
// did not convert themselves.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := response.StatusOf(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("Unhandled error")
	}
	return response.FromError(c, err)
}
