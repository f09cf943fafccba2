package equity

import (
	eqsvc "foundersbook-backend/internal/application/equity"
	"foundersbook-backend/internal/middleware"
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *eqsvc.Service
}

// GetEquitySplit GET /api/equity-split
func (h *Handlers) GetEquitySplit(c *fiber.Ctx) error {
	v, err := h.Service.View(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, v)
}

type saveRequest struct {
	Founders []eqsvc.ShareInput `json:"founders"`
}

// SaveEquitySplit POST /api/equity-split replaces the whole registry.
func (h *Handlers) SaveEquitySplit(c *fiber.Ctx) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}
	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	saved, err := h.Service.Save(c.Context(), u.ID(), req.Founders)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{
		"message":     "Equity split saved successfully",
		"equitySplit": eqsvc.View{Configured: true, Founders: saved},
	})
}
