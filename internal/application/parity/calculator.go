package parity

import (
	"fmt"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period identifies a calendar month.
type Period struct {
	Month int
	Year  int
}

// PeriodOf returns the UTC calendar month containing t.
func PeriodOf(t time.Time) Period {
	u := t.UTC()
	return Period{Month: int(u.Month()), Year: u.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return domain.InvalidArgument("month must be between 1 and 12")
	}
	if p.Year < 1 || p.Year > 9999 {
		return domain.InvalidArgument("year is out of range")
	}
	return nil
}

// Bounds returns the half-open UTC interval [first of month, first of next month).
func (p Period) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Ordinal orders periods as a single integer (year*12 + month).
func (p Period) Ordinal() int {
	return p.Year*12 + p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// LedgerEntry is the slice of an expense the calculator needs.
type LedgerEntry struct {
	FounderID *uuid.UUID
	Amount    decimal.Decimal
	Date      time.Time
}

// Result is a computed, not yet persisted, parity snapshot.
type Result struct {
	Period          Period
	TotalSpent      decimal.Decimal
	UnassignedSpent decimal.Decimal
	Founders        []domain.FounderParity
}

// Compute reduces the equity registry and the month's ledger to a parity
// snapshot. Entries outside the period are ignored. Unassigned entries and
// entries assigned to founders missing from the registry count toward
// TotalSpent only.
func Compute(p Period, founders []domain.FounderShare, entries []LedgerEntry) Result {
	start, end := p.Bounds()

	total := decimal.Zero
	unassigned := decimal.Zero
	byFounder := make(map[uuid.UUID]decimal.Decimal)
	for _, e := range entries {
		d := e.Date.UTC()
		if d.Before(start) || !d.Before(end) {
			continue
		}
		total = total.Add(e.Amount)
		if e.FounderID == nil {
			unassigned = unassigned.Add(e.Amount)
			continue
		}
		byFounder[*e.FounderID] = byFounder[*e.FounderID].Add(e.Amount)
	}

	rows := make([]domain.FounderParity, 0, len(founders))
	for _, f := range founders {
		expected := domain.ShareOf(total, f.EquityPercent)
		actual := byFounder[f.FounderID]
		rows = append(rows, domain.FounderParity{
			FounderID:            f.FounderID,
			Name:                 f.Name,
			ExpectedContribution: expected,
			ActualContribution:   actual,
			Disparity:            actual.Sub(expected),
			Status:               domain.ParityStatus(actual.Sub(expected)),
		})
	}

	return Result{
		Period:          p,
		TotalSpent:      total,
		UnassignedSpent: unassigned,
		Founders:        rows,
	}
}
