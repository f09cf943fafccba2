package equity

import (
	"context"
	"errors"
	"fmt"

	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// ShareInput is one founder's requested equity percentage.
type ShareInput struct {
	UserID string          `json:"userId"`
	Name   string          `json:"name,omitempty"`
	Equity decimal.Decimal `json:"equity"`
}

// View is the registry merged with every known user; users without a share
// appear with 0.
type View struct {
	Configured bool                  `json:"configured"`
	Founders   []domain.FounderShare `json:"founders"`
}

type Service struct {
	DB *gorm.DB
}

// Validate checks a full replacement of the registry without touching the DB.
func Validate(shares []ShareInput) ([]uuid.UUID, error) {
	if len(shares) == 0 {
		return nil, domain.InvalidArgument("At least one founder is required")
	}
	ids := make([]uuid.UUID, 0, len(shares))
	seen := make(map[uuid.UUID]struct{}, len(shares))
	total := decimal.Zero
	for _, s := range shares {
		id, err := uuid.Parse(s.UserID)
		if err != nil {
			return nil, domain.InvalidArgument(fmt.Sprintf("Invalid founder id %q", s.UserID))
		}
		if _, dup := seen[id]; dup {
			return nil, domain.InvalidArgument("Each founder may appear only once")
		}
		seen[id] = struct{}{}
		if s.Equity.LessThan(zero) || s.Equity.GreaterThan(hundred) {
			return nil, domain.InvalidArgument("Equity must be between 0 and 100")
		}
		// equity_percent is numeric(5,2)
		if !s.Equity.Equal(s.Equity.Round(2)) {
			return nil, domain.InvalidArgument("Equity supports at most two decimal places")
		}
		total = total.Add(s.Equity)
		ids = append(ids, id)
	}
	if !total.Equal(hundred) {
		return nil, domain.InvalidArgument("Total equity must equal 100%")
	}
	return ids, nil
}

// Registry returns the active shares with founder names, in insertion order.
func (s *Service) Registry(ctx context.Context) ([]domain.FounderShare, error) {
	db := s.DB.WithContext(ctx)
	var split domain.EquitySplit
	err := db.Where("registry_key = ?", domain.EquityRegistryKey).First(&split).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Equity split not found")
	}
	if err != nil {
		return nil, err
	}

	var shares []domain.EquityShare
	if err := db.Where("registry_key = ?", domain.EquityRegistryKey).Order("position ASC").Find(&shares).Error; err != nil {
		return nil, err
	}
	names, err := s.userNames(ctx, shares)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FounderShare, 0, len(shares))
	for _, sh := range shares {
		out = append(out, domain.FounderShare{
			FounderID:     sh.FounderID,
			Name:          names[sh.FounderID],
			EquityPercent: sh.EquityPercent,
		})
	}
	return out, nil
}

func (s *Service) userNames(ctx context.Context, shares []domain.EquityShare) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(shares))
	for _, sh := range shares {
		ids = append(ids, sh.FounderID)
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var users []domain.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// View merges the registry with all users.
func (s *Service) View(ctx context.Context) (*View, error) {
	shares, err := s.Registry(ctx)
	configured := true
	if errors.Is(err, domain.ErrNotFound) {
		configured = false
	} else if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]decimal.Decimal, len(shares))
	for _, sh := range shares {
		byID[sh.FounderID] = sh.EquityPercent
	}
	out := &View{Configured: configured, Founders: make([]domain.FounderShare, 0, len(users))}
	for _, u := range users {
		out.Founders = append(out.Founders, domain.FounderShare{
			FounderID:     u.ID,
			Name:          u.Name,
			EquityPercent: byID[u.ID],
		})
	}
	return out, nil
}

// Save replaces the registry wholesale.
func (s *Service) Save(ctx context.Context, actor uuid.UUID, shares []ShareInput) ([]domain.FounderShare, error) {
	ids, err := Validate(shares)
	if err != nil {
		return nil, err
	}

	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var known int64
	if err := tx.Model(&domain.User{}).Where("id IN ?", ids).Count(&known).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if int(known) != len(ids) {
		tx.Rollback()
		return nil, domain.NotFound("One or more founders do not exist")
	}

	split := domain.EquitySplit{RegistryKey: domain.EquityRegistryKey, CreatedBy: &actor, UpdatedBy: &actor}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "registry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_by", "updated_at"}),
	}).Create(&split).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("registry_key = ?", domain.EquityRegistryKey).Delete(&domain.EquityShare{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	rows := make([]domain.EquityShare, 0, len(shares))
	for i, sh := range shares {
		rows = append(rows, domain.EquityShare{
			RegistryKey:   domain.EquityRegistryKey,
			FounderID:     ids[i],
			EquityPercent: sh.Equity,
			Position:      i,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return s.Registry(ctx)
}
