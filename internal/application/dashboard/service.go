package dashboard

import (
	"context"
	"errors"
	"time"

	"foundersbook-backend/internal/application/tasks"
	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const notInSplit = "Not part of any equity split"

type EquityReader interface {
	Registry(ctx context.Context) ([]domain.FounderShare, error)
}

type TaskLister interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]tasks.View, error)
}

type ParityLister interface {
	ListAll(ctx context.Context) ([]domain.MonthlyParity, error)
}

type TaskStats struct {
	TotalTasks      int `json:"totalTasks"`
	TotalOverdue    int `json:"totalOverdue"`
	TotalInProgress int `json:"totalInProgress"`
	TotalCompleted  int `json:"totalCompleted"`
}

type ExpenseLine struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Subcategory *string         `json:"subcategory,omitempty"`
}

type Investment struct {
	Month                int             `json:"month"`
	Year                 int             `json:"year"`
	ExpectedContribution decimal.Decimal `json:"expectedContribution"`
	ActualContribution   decimal.Decimal `json:"actualContribution"`
	Disparity            decimal.Decimal `json:"disparity"`
	IsEven               bool            `json:"isEven"`
	Status               string          `json:"status"`
	DetailedExpenses     []ExpenseLine   `json:"detailedExpenses"`
}

// Dashboard is the per-user aggregate. EquitySplit is the user's share or
// a fixed message when the user holds none.
type Dashboard struct {
	EquitySplit       interface{}     `json:"equitySplit"`
	TaskStats         TaskStats       `json:"taskStats"`
	Tasks             []tasks.View    `json:"tasks"`
	InvestmentDetails []Investment    `json:"investmentDetails"`
	TotalInvestment   decimal.Decimal `json:"totalInvestment"`
}

type Service struct {
	DB     *gorm.DB
	Equity EquityReader
	Tasks  TaskLister
	Parity ParityLister
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ForUser(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	out := &Dashboard{EquitySplit: notInSplit, TotalInvestment: decimal.Zero}

	shares, err := s.Equity.Registry(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	for _, sh := range shares {
		if sh.FounderID == userID {
			out.EquitySplit = sh
			break
		}
	}

	out.Tasks, err = s.Tasks.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out.TaskStats = stats(out.Tasks, s.now())

	var expenses []domain.Expense
	if err := s.DB.WithContext(ctx).Where("assigned_founder_id = ?", userID).Order("date ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	byMonth := make(map[[2]int][]ExpenseLine)
	for _, e := range expenses {
		d := e.Date.UTC()
		k := [2]int{d.Year(), int(d.Month())}
		byMonth[k] = append(byMonth[k], ExpenseLine{Name: e.Name, Amount: e.Amount, Date: e.Date, Category: e.Category, Subcategory: e.Subcategory})
	}

	parities, err := s.Parity.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out.InvestmentDetails = make([]Investment, 0, len(parities))
	for _, mp := range parities {
		for _, f := range mp.PerFounder {
			if f.FounderID != userID {
				continue
			}
			lines := byMonth[[2]int{mp.Year, mp.Month}]
			if lines == nil {
				lines = []ExpenseLine{}
			}
			out.InvestmentDetails = append(out.InvestmentDetails, Investment{
				Month:                mp.Month,
				Year:                 mp.Year,
				ExpectedContribution: f.ExpectedContribution,
				ActualContribution:   f.ActualContribution,
				Disparity:            f.Disparity,
				IsEven:               f.Disparity.IsZero(),
				Status:               domain.ParityStatus(f.Disparity),
				DetailedExpenses:     lines,
			})
			out.TotalInvestment = out.TotalInvestment.Add(f.ActualContribution)
			break
		}
	}
	return out, nil
}

func stats(ts []tasks.View, now time.Time) TaskStats {
	st := TaskStats{TotalTasks: len(ts)}
	for _, t := range ts {
		switch t.Status {
		case domain.TaskInProgress:
			st.TotalInProgress++
		case domain.TaskCompleted:
			st.TotalCompleted++
		}
		if t.Status != domain.TaskCompleted && t.Deadline.Before(now) {
			st.TotalOverdue++
		}
	}
	return st
}
