package expenses

import (
	"strconv"
	"strings"
	"time"

	expsvc "foundersbook-backend/internal/application/expenses"
	paritysvc "foundersbook-backend/internal/application/parity"
	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/middleware"
	"foundersbook-backend/internal/pkg/response"
	"foundersbook-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *expsvc.Service
	Parity  *paritysvc.Service
}

// CreateExpense POST /expenses
func (h *Handlers) CreateExpense(c *fiber.Ctx) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}
	var in expsvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	res, err := h.Service.Create(c.Context(), expsvc.Actor{ID: u.ID(), Name: u.Name}, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, res)
}

// GetExpenses GET /expenses
func (h *Handlers) GetExpenses(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return response.FromError(c, err)
	}
	page, err := h.Service.List(c.Context(), expsvc.ListQuery{
		Filter:    f,
		SortBy:    c.Query("sortBy"),
		SortOrder: strings.ToLower(c.Query("sortOrder")),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", expsvc.DefaultLimit),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, page)
}

// GetMonthlySummary GET /expenses/monthly-summary
func (h *Handlers) GetMonthlySummary(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Service.MonthlySummary(c.Context(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	if rows == nil {
		rows = []expsvc.SummaryRow{}
	}
	return response.OK(c, rows)
}

// GetInvestmentParity GET /expenses/investment-parity?month=&year=
// Recomputes the requested month (unless settled) and returns every
// snapshot up to and including it.
func (h *Handlers) GetInvestmentParity(c *fiber.Ctx) error {
	p, err := periodFrom(c.Query("month"), c.Query("year"))
	if err != nil {
		return response.FromError(c, err)
	}
	if _, err := h.Parity.ComputeParity(c.Context(), p); err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Parity.GetAllUpTo(c.Context(), p)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, rows)
}

type settleRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// SettleMonth POST /expenses/settle-month
func (h *Handlers) SettleMonth(c *fiber.Ctx) error {
	var req settleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	mp, err := h.Parity.Settle(c.Context(), paritysvc.Period{Month: req.Month, Year: req.Year})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"message": "Month marked as settled", "monthlyParity": mp})
}

// GetAllParities GET /expenses/all-parities
func (h *Handlers) GetAllParities(c *fiber.Ctx) error {
	rows, err := h.Parity.ListAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	if len(rows) == 0 {
		return response.Error(c, fiber.StatusNotFound, "No monthly parity data found.")
	}
	return response.OK(c, rows)
}

func periodFrom(month, year string) (paritysvc.Period, error) {
	m, errM := strconv.Atoi(strings.TrimSpace(month))
	y, errY := strconv.Atoi(strings.TrimSpace(year))
	if errM != nil || errY != nil {
		return paritysvc.Period{}, domain.InvalidArgument("month and year are required")
	}
	p := paritysvc.Period{Month: m, Year: y}
	return p, p.Validate()
}

func parseFilter(c *fiber.Ctx) (expsvc.Filter, error) {
	f := expsvc.Filter{
		User:        c.Query("user"),
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
	}
	amount := func(key string) (*decimal.Decimal, error) {
		raw := c.Query(key)
		if raw == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, domain.InvalidArgument("Invalid " + key)
		}
		return &d, nil
	}
	var err error
	if f.MinAmount, err = amount("minAmount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = amount("maxAmount"); err != nil {
		return f, err
	}
	if raw := c.Query("startDate"); raw != "" {
		t, err := validation.ParseDate(raw)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := validation.ParseDate(raw)
		if err != nil {
			return f, err
		}
		// a bare date covers the whole day
		if validation.IsDateOnly(raw) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.EndDate = &t
	}
	return f, nil
}
