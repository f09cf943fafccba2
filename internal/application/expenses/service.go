package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foundersbook-backend/internal/application/parity"
	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ParityRecorder keeps monthly parity snapshots in step with the ledger.
type ParityRecorder interface {
	EnsureWritable(ctx context.Context, p parity.Period) error
	RecordExpense(ctx context.Context, p parity.Period) (*domain.MonthlyParity, error)
}

// Notifier persists a user notification.
type Notifier interface {
	Create(ctx context.Context, userID uuid.UUID, kind domain.NotificationType, message string) (*domain.Notification, error)
}

type Actor struct {
	ID   uuid.UUID
	Name string
}

type CreateInput struct {
	Name          string           `json:"name"`
	Amount        *decimal.Decimal `json:"amount"`
	Date          string           `json:"date"`
	Category      string           `json:"category"`
	Subcategory   *string          `json:"subcategory"`
	AssignedTo    string           `json:"assigned_to"`
	Notes         *string          `json:"notes"`
	AttachmentURL *string          `json:"attachmentUrl"`
}

type CreateResult struct {
	Expense       *domain.Expense       `json:"expense"`
	MonthlyParity *domain.MonthlyParity `json:"monthlyParity"`
}

type Service struct {
	DB       *gorm.DB
	Parity   ParityRecorder
	Notifier Notifier
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create records an expense, notifies the assignee and refreshes the
// month's parity snapshot. MonthlyParity is nil when no equity split exists.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*CreateResult, error) {
	if err := validation.Required("name", in.Name); err != nil {
		return nil, err
	}
	if err := validation.Required("category", in.Category); err != nil {
		return nil, err
	}
	if in.Amount == nil {
		return nil, domain.InvalidArgument("amount is required")
	}
	if in.Amount.IsNegative() {
		return nil, domain.InvalidArgument("amount must not be negative")
	}
	date := s.now()
	if in.Date != "" {
		d, err := validation.ParseDate(in.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}

	var assignee *domain.User
	if ref := strings.TrimSpace(in.AssignedTo); ref != "" {
		u, err := s.findFounder(ctx, ref)
		if err != nil {
			return nil, err
		}
		assignee = u
	}

	period := parity.PeriodOf(date)
	if err := s.Parity.EnsureWritable(ctx, period); err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		Name:          strings.TrimSpace(in.Name),
		Amount:        in.Amount.Round(2),
		Date:          date,
		Category:      strings.TrimSpace(in.Category),
		Subcategory:   in.Subcategory,
		Notes:         in.Notes,
		AttachmentURL: in.AttachmentURL,
		CreatedBy:     actor.ID,
	}
	if assignee != nil {
		expense.AssignedFounderID = &assignee.ID
	}
	if err := s.DB.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, err
	}

	if assignee != nil && s.Notifier != nil {
		msg := fmt.Sprintf("%s added an expense of ₹%s to your name.", actor.Name, expense.Amount.StringFixed(2))
		if _, err := s.Notifier.Create(ctx, assignee.ID, domain.NotificationExpenseAdded, msg); err != nil {
			log.Error().Err(err).Str("expense_id", expense.ID.String()).Msg("Error sending expense notification")
		}
	}

	mp, err := s.Parity.RecordExpense(ctx, period)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("expense_id", expense.ID.String()).Msg("Equity split not found; parity not recomputed")
		return &CreateResult{Expense: expense}, nil
	}
	if err != nil {
		return nil, err
	}
	return &CreateResult{Expense: expense, MonthlyParity: mp}, nil
}

// findFounder resolves a founder by id, falling back to exact name match.
func (s *Service) findFounder(ctx context.Context, ref string) (*domain.User, error) {
	var u domain.User
	q := s.DB.WithContext(ctx)
	if id, err := uuid.Parse(ref); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("name = ?", ref)
	}
	err := q.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound(fmt.Sprintf("User %s not found", ref))
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
