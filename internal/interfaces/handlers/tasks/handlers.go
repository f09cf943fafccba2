package tasks

import (
	tasksvc "foundersbook-backend/internal/application/tasks"
	"foundersbook-backend/internal/middleware"
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *tasksvc.Service
}

func actor(c *fiber.Ctx) (tasksvc.Actor, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return tasksvc.Actor{}, false
	}
	return tasksvc.Actor{ID: u.ID(), Name: u.Name}, true
}

func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c)
	}
	var in tasksvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v, err := h.Service.Create(c.Context(), a, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, v)
}

// GetTasks GET /tasks?category=&subcategory=&status=&assignedTo=
func (h *Handlers) GetTasks(c *fiber.Ctx) error {
	rows, err := h.Service.List(c.Context(), tasksvc.Filter{
		CategoryID:  c.Query("category"),
		Subcategory: c.Query("subcategory"),
		Status:      c.Query("status"),
		AssignedTo:  c.Query("assignedTo"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	if rows == nil {
		rows = []tasksvc.View{}
	}
	return response.OK(c, rows)
}

func (h *Handlers) GetTask(c *fiber.Ctx) error {
	v, err := h.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, v)
}

func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var in tasksvc.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v, err := h.Service.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, v)
}

func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.Context(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, fiber.StatusOK, "Task deleted successfully")
}

type noteRequest struct {
	Content string `json:"content"`
}

// AddNote POST /tasks/:id/notes responds with every note on the task.
func (h *Handlers) AddNote(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c)
	}
	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	notes, err := h.Service.AddNote(c.Context(), c.Params("id"), a, req.Content)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, notes)
}
