package projections

import (
	projsvc "foundersbook-backend/internal/application/projections"
	"foundersbook-backend/internal/middleware"
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *projsvc.Service
}

// CreateProjection POST /projection
func (h *Handlers) CreateProjection(c *fiber.Ctx) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}
	var in projsvc.Input
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p, calc, err := h.Service.Create(c.Context(), u.ID(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{
		"message":     "Projection created successfully",
		"projection":  p,
		"calculation": calc,
	})
}

type calculateRequest struct {
	ProjectionID string `json:"projectionId"`
}

// CalculateProjection POST /projection/calculate re-runs the engine for a
// stored projection.
func (h *Handlers) CalculateProjection(c *fiber.Ctx) error {
	var req calculateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	calc, err := h.Service.Calculate(c.Context(), req.ProjectionID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, calc)
}

// GetAllProjections GET /projection/all
func (h *Handlers) GetAllProjections(c *fiber.Ctx) error {
	rows, err := h.Service.ListAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	if rows == nil {
		rows = []projsvc.Summary{}
	}
	return response.OK(c, fiber.Map{"projections": rows})
}

// GetProjection GET /projection/:id
func (h *Handlers) GetProjection(c *fiber.Ctx) error {
	p, err := h.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, p)
}

// EditProjection PUT /projection/:id
func (h *Handlers) EditProjection(c *fiber.Ctx) error {
	var in projsvc.Input
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p, calc, err := h.Service.Edit(c.Context(), c.Params("id"), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{
		"message":     "Projection updated successfully",
		"projection":  p,
		"calculation": calc,
	})
}

// DeleteProjection DELETE /projection/:id
func (h *Handlers) DeleteProjection(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.Context(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, fiber.StatusOK, "Projection deleted successfully")
}
