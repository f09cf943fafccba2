package parity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettledPolicy decides what happens when an expense lands in a settled month.
type SettledPolicy string

const (
	// PolicyAmend recomputes the snapshot and flags it as amended after settlement.
	PolicyAmend SettledPolicy = "amend"
	// PolicyBlock rejects the expense before it is written.
	PolicyBlock SettledPolicy = "block"
)

// ParsePolicy maps a config value to a policy; empty means amend.
func ParsePolicy(s string) (SettledPolicy, error) {
	switch SettledPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAmend:
		return PolicyAmend, nil
	case PolicyBlock:
		return PolicyBlock, nil
	}
	return "", fmt.Errorf("unknown settled-month policy %q", s)
}

// EquityReader supplies the current equity registry.
type EquityReader interface {
	Registry(ctx context.Context) ([]domain.FounderShare, error)
}

type Service struct {
	DB     *gorm.DB
	Equity EquityReader
	Policy SettledPolicy
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ComputeParity recomputes and upserts the snapshot for p. A settled
// snapshot is returned as stored.
func (s *Service) ComputeParity(ctx context.Context, p Period) (*domain.MonthlyParity, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, p)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Settled {
		return existing, nil
	}
	return s.recompute(ctx, p, false)
}

// EnsureWritable fails with FailedPrecondition when the block policy is
// active and p is settled.
func (s *Service) EnsureWritable(ctx context.Context, p Period) error {
	if s.Policy != PolicyBlock {
		return nil
	}
	existing, err := s.Get(ctx, p)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.Settled {
		return domain.FailedPrecondition(fmt.Sprintf("Month %d/%d is settled; new expenses are not accepted", p.Month, p.Year))
	}
	return nil
}

// RecordExpense refreshes the snapshot after an expense was written to p.
func (s *Service) RecordExpense(ctx context.Context, p Period) (*domain.MonthlyParity, error) {
	existing, err := s.Get(ctx, p)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing == nil || !existing.Settled {
		return s.recompute(ctx, p, false)
	}
	if s.Policy == PolicyBlock {
		return nil, domain.FailedPrecondition(fmt.Sprintf("Month %d/%d is settled; new expenses are not accepted", p.Month, p.Year))
	}
	log.Warn().Int("month", p.Month).Int("year", p.Year).Msg("Amending settled monthly parity")
	return s.recompute(ctx, p, true)
}

func (s *Service) recompute(ctx context.Context, p Period, amend bool) (*domain.MonthlyParity, error) {
	founders, err := s.Equity.Registry(ctx)
	if err != nil {
		return nil, err
	}

	start, end := p.Bounds()
	var expenses []domain.Expense
	if err := s.DB.WithContext(ctx).
		Select("assigned_founder_id", "amount", "date").
		Where("date >= ? AND date < ?", start, end).
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	entries := make([]LedgerEntry, 0, len(expenses))
	for _, e := range expenses {
		entries = append(entries, LedgerEntry{FounderID: e.AssignedFounderID, Amount: e.Amount, Date: e.Date})
	}
	res := Compute(p, founders, entries)

	row := domain.MonthlyParity{
		Year:            p.Year,
		Month:           p.Month,
		TotalSpent:      res.TotalSpent,
		UnassignedSpent: res.UnassignedSpent,
	}
	if err := row.SetPerFounder(res.Founders); err != nil {
		return nil, err
	}
	cols := []string{"total_spent", "unassigned_spent", "founders", "updated_at"}
	if amend {
		at := s.now()
		row.AmendedAfterSettlement = true
		row.AmendedAt = &at
		cols = append(cols, "amended_after_settlement", "amended_at")
	}

	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}
	if !amend {
		// a settle that lands after the Settled check must win
		upsert.Where = clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "monthly_parities", Name: "settled"}, Value: false},
		}}
	}
	err = s.DB.WithContext(ctx).Clauses(upsert).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p)
}

func (s *Service) Get(ctx context.Context, p Period) (*domain.MonthlyParity, error) {
	var row domain.MonthlyParity
	err := s.DB.WithContext(ctx).Where("year = ? AND month = ?", p.Year, p.Month).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Monthly parity not found")
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetAllUpTo returns every snapshot at or before p, oldest first.
func (s *Service) GetAllUpTo(ctx context.Context, p Period) ([]domain.MonthlyParity, error) {
	var rows []domain.MonthlyParity
	err := s.DB.WithContext(ctx).
		Where("year * 12 + month <= ?", p.Ordinal()).
		Order("year ASC, month ASC").
		Find(&rows).Error
	return rows, err
}

func (s *Service) ListAll(ctx context.Context) ([]domain.MonthlyParity, error) {
	var rows []domain.MonthlyParity
	err := s.DB.WithContext(ctx).Order("year ASC, month ASC").Find(&rows).Error
	return rows, err
}

// Settle marks p as settled. Settling is one-way; settling twice is a conflict.
func (s *Service) Settle(ctx context.Context, p Period) (*domain.MonthlyParity, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	if existing.Settled {
		return nil, domain.FailedPrecondition("Month already settled")
	}
	res := s.DB.WithContext(ctx).Model(&domain.MonthlyParity{}).
		Where("id = ? AND settled = ?", existing.ID, false).
		Updates(map[string]interface{}{"settled": true, "settled_at": s.now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.FailedPrecondition("Month already settled")
	}
	return s.Get(ctx, p)
}
