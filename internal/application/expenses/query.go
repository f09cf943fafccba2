package expenses

import (
	"context"
	"fmt"
	"sort"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// sortColumns whitelists the sortable fields.
var sortColumns = map[string]string{
	"date":     "date",
	"amount":   "amount",
	"name":     "name",
	"category": "category",
}

// Filter narrows the ledger. User matches the assigned founder by id or name.
type Filter struct {
	User        string
	Category    string
	Subcategory string
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
}

type ListQuery struct {
	Filter
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type Page struct {
	Expenses      []domain.Expense `json:"expenses"`
	TotalPages    int              `json:"totalPages"`
	CurrentPage   int              `json:"currentPage"`
	TotalExpenses int64            `json:"totalExpenses"`
}

type SummaryRow struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	User        string          `json:"user"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (s *Service) scoped(ctx context.Context, f Filter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&domain.Expense{})
	if f.User != "" {
		if id, err := uuid.Parse(f.User); err == nil {
			q = q.Where("assigned_founder_id = ?", id)
		} else {
			q = q.Where("assigned_founder_id IN (?)", s.DB.WithContext(ctx).Model(&domain.User{}).Select("id").Where("name = ?", f.User))
		}
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Subcategory != "" {
		q = q.Where("subcategory = ?", f.Subcategory)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.StartDate != nil {
		q = q.Where("date >= ?", f.StartDate.UTC())
	}
	if f.EndDate != nil {
		q = q.Where("date <= ?", f.EndDate.UTC())
	}
	return q
}

// List returns one page of filtered, sorted expenses. Without SortBy the
// newest expenses come first.
func (s *Service) List(ctx context.Context, lq ListQuery) (*Page, error) {
	order := "date DESC"
	if lq.SortBy != "" {
		col, ok := sortColumns[lq.SortBy]
		if !ok {
			return nil, domain.InvalidArgument(fmt.Sprintf("Cannot sort by %q", lq.SortBy))
		}
		dir := "ASC"
		if lq.SortOrder == "desc" {
			dir = "DESC"
		}
		order = col + " " + dir
	}
	page, limit := lq.Page, lq.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var total int64
	if err := s.scoped(ctx, lq.Filter).Count(&total).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Expense, 0, limit)
	if err := s.scoped(ctx, lq.Filter).
		Order(order).Order("id").
		Offset((page - 1) * limit).Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return &Page{
		Expenses:      out,
		TotalPages:    int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage:   page,
		TotalExpenses: total,
	}, nil
}

// MonthlySummary totals expenses per (year, month, founder, category,
// subcategory), most recent month and largest total first.
func (s *Service) MonthlySummary(ctx context.Context, f Filter) ([]SummaryRow, error) {
	var rows []domain.Expense
	if err := s.scoped(ctx, f).Find(&rows).Error; err != nil {
		return nil, err
	}
	var users []domain.User
	if err := s.DB.WithContext(ctx).Select("id", "name").Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	type key struct {
		year, month                 int
		user, category, subcategory string
	}
	totals := make(map[key]decimal.Decimal)
	for _, e := range rows {
		d := e.Date.UTC()
		k := key{year: d.Year(), month: int(d.Month()), category: e.Category}
		if e.AssignedFounderID != nil {
			k.user = names[*e.AssignedFounderID]
		}
		if e.Subcategory != nil {
			k.subcategory = *e.Subcategory
		}
		totals[k] = totals[k].Add(e.Amount)
	}

	out := make([]SummaryRow, 0, len(totals))
	for k, v := range totals {
		out = append(out, SummaryRow{
			Year:        k.year,
			Month:       k.month,
			User:        k.user,
			Category:    k.category,
			Subcategory: k.subcategory,
			TotalAmount: v,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		if c := a.TotalAmount.Cmp(b.TotalAmount); c != 0 {
			return c > 0
		}
		if a.User != b.User {
			return a.User < b.User
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Subcategory < b.Subcategory
	})
	return out, nil
}
