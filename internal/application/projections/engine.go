package projections

import (
	"foundersbook-backend/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	daysPerMonth     = decimal.NewFromInt(30)
	weeksPerMonth    = decimal.NewFromInt(4)
	monthsPerQuarter = decimal.NewFromInt(3)
)

// Monthly normalises an amount with the given recurrence to a monthly figure.
func Monthly(amount decimal.Decimal, r domain.Recurrence) decimal.Decimal {
	switch r {
	case domain.RecurrenceDaily:
		return amount.Mul(daysPerMonth)
	case domain.RecurrenceWeekly:
		return amount.Mul(weeksPerMonth)
	case domain.RecurrenceQuarterly:
		return amount.Div(monthsPerQuarter)
	default:
		return amount
	}
}

// Calculation is the derived part of a projection.
type Calculation struct {
	MonthlyExpenses       []domain.MonthlyExpense      `json:"monthlyExpenses"`
	TotalProjectedExpense decimal.Decimal              `json:"totalProjectedExpense"`
	FounderContributions  []domain.FounderContribution `json:"founderContributions"`
}

// Calculate extrapolates expenses over durationMonths and splits the total by
// equity. durationMonths must be at least 1.
func Calculate(durationMonths int, expenses []domain.ProjectedExpense, founders []domain.FounderShare) Calculation {
	months := decimal.NewFromInt(int64(durationMonths))

	calc := Calculation{
		MonthlyExpenses:       make([]domain.MonthlyExpense, 0, len(expenses)),
		TotalProjectedExpense: decimal.Zero,
		FounderContributions:  make([]domain.FounderContribution, 0, len(founders)),
	}
	for _, e := range expenses {
		monthly := Monthly(e.Amount, e.Recurrence)
		total := monthly.Mul(months)
		row := domain.MonthlyExpense{
			ExpenseName:    e.Name,
			Category:       e.Category,
			Subcategory:    e.Subcategory,
			Amount:         e.Amount,
			Recurrence:     e.Recurrence,
			MonthlyExpense: monthly,
			Total:          total,
		}
		if e.Notes != nil {
			row.Notes = *e.Notes
		}
		calc.MonthlyExpenses = append(calc.MonthlyExpenses, row)
		calc.TotalProjectedExpense = calc.TotalProjectedExpense.Add(total)
	}

	for _, f := range founders {
		share := domain.ShareOf(calc.TotalProjectedExpense, f.EquityPercent)
		calc.FounderContributions = append(calc.FounderContributions, domain.FounderContribution{
			FounderID:            f.FounderID,
			Name:                 f.Name,
			ContributionPerMonth: share.Div(months),
			TotalContribution:    share,
		})
	}
	return calc
}
