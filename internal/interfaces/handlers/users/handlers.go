package users

import (
	usersvc "foundersbook-backend/internal/application/users"
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *usersvc.Service
}

type userName struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// GetUsers GET /users returns ids and names only.
func (h *Handlers) GetUsers(c *fiber.Ctx) error {
	rows, err := h.Service.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	out := make([]userName, 0, len(rows))
	for _, u := range rows {
		out = append(out, userName{ID: u.ID, Name: u.Name})
	}
	return response.OK(c, out)
}
