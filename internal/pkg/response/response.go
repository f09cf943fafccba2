package response

import (
	"errors"

	"foundersbook-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the JSON shape of every 4xx/5xx response.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is used by endpoints that only acknowledge an action.
type MessageBody struct {
	Message string `json:"message"`
}

// StatusOf maps a service error onto its HTTP status.
func StatusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrFailedPrecondition):
		return fiber.StatusConflict
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError writes err using the status from StatusOf. Domain errors expose
// only their message; anything else passes its raw text through.
func FromError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	return Error(c, StatusOf(err), msg)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorBody{Error: message})
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func OK(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusOK).JSON(body)
}

func Created(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

func Message(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(MessageBody{Message: message})
}
