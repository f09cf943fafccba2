package categories

import (
	catsvc "foundersbook-backend/internal/application/categories"
	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves both expense categories (/categories) and task
// categories (/task-categories).
type Handlers struct {
	Service *catsvc.Service
}

type expenseCategoryRequest struct {
	CategoryName    string `json:"category_name"`
	SubcategoryName string `json:"subcategory_name"`
}

func (h *Handlers) CreateExpenseCategory(c *fiber.Ctx) error {
	var req expenseCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cat, err := h.Service.CreateExpenseCategory(c.Context(), req.CategoryName, req.SubcategoryName)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, cat)
}

func (h *Handlers) GetExpenseCategories(c *fiber.Ctx) error {
	rows, err := h.Service.ListExpenseCategories(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	if rows == nil {
		rows = []domain.Category{}
	}
	return response.OK(c, rows)
}

type taskCategoryRequest struct {
	CategoryName  string   `json:"categoryName"`
	Subcategories []string `json:"subcategories"`
}

// UpsertTaskCategory POST /task-categories creates the category or merges
// new subcategories into it.
func (h *Handlers) UpsertTaskCategory(c *fiber.Ctx) error {
	var req taskCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cat, _, err := h.Service.UpsertTaskCategory(c.Context(), req.CategoryName, req.Subcategories)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, cat)
}

func (h *Handlers) GetTaskCategories(c *fiber.Ctx) error {
	rows, err := h.Service.ListTaskCategories(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	if rows == nil {
		rows = []domain.TaskCategory{}
	}
	return response.OK(c, rows)
}
