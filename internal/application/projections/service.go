package projections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EquityReader supplies the current equity registry.
type EquityReader interface {
	Registry(ctx context.Context) ([]domain.FounderShare, error)
}

type ExpenseInput struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Amount      decimal.Decimal `json:"amount"`
	Recurrence  string          `json:"recurrence"`
	Notes       *string         `json:"notes"`
}

type Input struct {
	Name           string         `json:"name"`
	DurationMonths int            `json:"durationMonths"`
	Expenses       []ExpenseInput `json:"expenses"`
}

func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.InvalidArgument("name is required")
	}
	if in.DurationMonths < 1 {
		return domain.InvalidArgument("durationMonths must be at least 1")
	}
	for i, e := range in.Expenses {
		if strings.TrimSpace(e.Name) == "" {
			return domain.InvalidArgument(fmt.Sprintf("expenses[%d]: name is required", i))
		}
		if e.Amount.IsNegative() {
			return domain.InvalidArgument(fmt.Sprintf("expenses[%d]: amount must not be negative", i))
		}
		if !domain.Recurrence(e.Recurrence).Valid() {
			return domain.InvalidArgument(fmt.Sprintf("expenses[%d]: unknown recurrence %q", i, e.Recurrence))
		}
	}
	return nil
}

// ContributionSummary is a founder contribution formatted for listing.
type ContributionSummary struct {
	FounderName          string `json:"founderName"`
	ContributionPerMonth string `json:"contributionPerMonth"`
	TotalContribution    string `json:"totalContribution"`
}

type Summary struct {
	ID                    uuid.UUID               `json:"id"`
	Name                  string                  `json:"name"`
	DurationMonths        int                     `json:"durationMonths"`
	TotalProjectedExpense decimal.Decimal         `json:"totalProjectedExpense"`
	OverallMonthlyExpense string                  `json:"overallMonthlyExpense"`
	FounderContributions  []ContributionSummary   `json:"founderContributions"`
	MonthlyExpenses       []domain.MonthlyExpense `json:"monthlyExpenses"`
}

type Service struct {
	DB     *gorm.DB
	Equity EquityReader
}

func parseID(id string) (uuid.UUID, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.InvalidArgument("Invalid projection ID")
	}
	return pid, nil
}

func children(projectionID uuid.UUID, in []ExpenseInput) []domain.ProjectedExpense {
	out := make([]domain.ProjectedExpense, 0, len(in))
	for _, e := range in {
		out = append(out, domain.ProjectedExpense{
			ProjectionID: projectionID,
			Name:         strings.TrimSpace(e.Name),
			Category:     e.Category,
			Subcategory:  e.Subcategory,
			Amount:       e.Amount,
			Recurrence:   domain.Recurrence(e.Recurrence),
			Notes:        e.Notes,
		})
	}
	return out
}

// apply stores calc on p, rounding the total to the column's two decimals.
func apply(p *domain.Projection, calc *Calculation) {
	calc.TotalProjectedExpense = calc.TotalProjectedExpense.Round(2)
	p.TotalProjectedExpense = calc.TotalProjectedExpense
	p.MonthlyExpenses = datatypes.NewJSONType(calc.MonthlyExpenses)
	p.FounderContributions = datatypes.NewJSONType(calc.FounderContributions)
}

// Create stores a projection with its expenses and calculates it in one
// transaction.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, in Input) (*domain.Projection, *Calculation, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	founders, err := s.Equity.Registry(ctx)
	if err != nil {
		return nil, nil, err
	}

	p := &domain.Projection{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		DurationMonths: in.DurationMonths,
		CreatedBy:      actor,
	}
	p.Expenses = children(p.ID, in.Expenses)
	calc := Calculate(p.DurationMonths, p.Expenses, founders)
	apply(p, &calc)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if len(p.Expenses) > 0 {
			return tx.Create(&p.Expenses).Error
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return p, &calc, nil
}

// Calculate recomputes and overwrites the stored derived fields.
func (s *Service) Calculate(ctx context.Context, id string) (*Calculation, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	founders, err := s.Equity.Registry(ctx)
	if err != nil {
		return nil, err
	}
	calc := Calculate(p.DurationMonths, p.Expenses, founders)
	apply(p, &calc)
	err = s.DB.WithContext(ctx).Model(p).Select("total_projected_expense", "monthly_expenses", "founder_contributions", "updated_at").Updates(p).Error
	if err != nil {
		return nil, err
	}
	return &calc, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Projection, error) {
	pid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var p domain.Projection
	err = s.DB.WithContext(ctx).Where("id = ?", pid).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Projection not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Where("projection_id = ?", pid).Order("name ASC").Find(&p.Expenses).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Edit replaces the projection's fields and all of its expenses, then
// recalculates, in one transaction.
func (s *Service) Edit(ctx context.Context, id string, in Input) (*domain.Projection, *Calculation, error) {
	pid, err := parseID(id)
	if err != nil {
		return nil, nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	founders, err := s.Equity.Registry(ctx)
	if err != nil {
		return nil, nil, err
	}

	var calc Calculation
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Projection
		err := tx.Where("id = ?", pid).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("Projection not found")
		}
		if err != nil {
			return err
		}
		if err := tx.Where("projection_id = ?", pid).Delete(&domain.ProjectedExpense{}).Error; err != nil {
			return err
		}
		p.Name = strings.TrimSpace(in.Name)
		p.DurationMonths = in.DurationMonths
		p.Expenses = children(pid, in.Expenses)
		if len(p.Expenses) > 0 {
			if err := tx.Create(&p.Expenses).Error; err != nil {
				return err
			}
		}
		calc = Calculate(p.DurationMonths, p.Expenses, founders)
		apply(&p, &calc)
		return tx.Model(&p).Select("name", "duration_months", "total_projected_expense", "monthly_expenses", "founder_contributions", "updated_at").Updates(&p).Error
	})
	if err != nil {
		return nil, nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, &calc, nil
}

// Delete removes a projection and its expenses together.
func (s *Service) Delete(ctx context.Context, id string) error {
	pid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("projection_id = ?", pid).Delete(&domain.ProjectedExpense{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", pid).Delete(&domain.Projection{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("Projection not found")
		}
		return nil
	})
}

// ListAll returns every projection with money figures formatted to two
// decimals.
func (s *Service) ListAll(ctx context.Context) ([]Summary, error) {
	var rows []domain.Projection
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
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

	out := make([]Summary, 0, len(rows))
	for _, p := range rows {
		overall := decimal.Zero
		if p.DurationMonths > 0 {
			overall = p.TotalProjectedExpense.Div(decimal.NewFromInt(int64(p.DurationMonths)))
		}
		contribs := p.FounderContributions.Data()
		cs := make([]ContributionSummary, 0, len(contribs))
		for _, c := range contribs {
			name := c.Name
			if n, ok := names[c.FounderID]; ok {
				name = n
			}
			cs = append(cs, ContributionSummary{
				FounderName:          name,
				ContributionPerMonth: c.ContributionPerMonth.StringFixed(2),
				TotalContribution:    c.TotalContribution.StringFixed(2),
			})
		}
		monthly := p.MonthlyExpenses.Data()
		if monthly == nil {
			monthly = []domain.MonthlyExpense{}
		}
		out = append(out, Summary{
			ID:                    p.ID,
			Name:                  p.Name,
			DurationMonths:        p.DurationMonths,
			TotalProjectedExpense: p.TotalProjectedExpense,
			OverallMonthlyExpense: overall.StringFixed(2),
			FounderContributions:  cs,
			MonthlyExpenses:       monthly,
		})
	}
	return out, nil
}
