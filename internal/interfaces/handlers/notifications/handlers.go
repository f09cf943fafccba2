package notifications

import (
	notifsvc "foundersbook-backend/internal/application/notifications"
	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/middleware"
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *notifsvc.Service
}

func (h *Handlers) GetNotifications(c *fiber.Ctx) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}
	rows, err := h.Service.ListForUser(c.Context(), u.ID())
	if err != nil {
		return response.FromError(c, err)
	}
	if rows == nil {
		rows = []domain.Notification{}
	}
	return response.OK(c, rows)
}

// MarkAsRead PUT /notifications/:id/read
func (h *Handlers) MarkAsRead(c *fiber.Ctx) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}
	n, err := h.Service.MarkRead(c.Context(), c.Params("id"), u.ID())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, n)
}
