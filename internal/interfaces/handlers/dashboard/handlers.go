package dashboard

import (
	dashsvc "foundersbook-backend/internal/application/dashboard"
	"foundersbook-backend/internal/middleware"
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *dashsvc.Service
}

// GetDashboard GET /dashboard for the session user.
func (h *Handlers) GetDashboard(c *fiber.Ctx) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}
	d, err := h.Service.ForUser(c.Context(), u.ID())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, d)
}
