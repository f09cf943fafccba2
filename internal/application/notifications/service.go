package notifications

import (
	"context"
	"errors"

	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Dispatcher hands a persisted notification to the external messaging
// integration.
type Dispatcher interface {
	Dispatch(ctx context.Context, n domain.Notification, recipient domain.User) error
}

// NopDispatcher drops every notification.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, domain.Notification, domain.User) error { return nil }

type Service struct {
	DB         *gorm.DB
	Dispatcher Dispatcher
}

// Create persists a notification and dispatches it. Dispatch failures are
// logged only; the stored notification is still returned.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, kind domain.NotificationType, message string) (*domain.Notification, error) {
	n := domain.Notification{UserID: userID, Type: kind, Message: message}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, err
	}
	if s.Dispatcher == nil {
		return &n, nil
	}

	var user domain.User
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Notification recipient lookup failed")
		return &n, nil
	}
	if err := s.Dispatcher.Dispatch(ctx, n, user); err != nil {
		log.Error().Err(err).Str("notification_id", n.ID.String()).Str("type", string(kind)).Msg("Notification dispatch failed")
	}
	return &n, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	var out []domain.Notification
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Service) MarkRead(ctx context.Context, id string, userID uuid.UUID) (*domain.Notification, error) {
	nid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.InvalidArgument("Invalid notification id")
	}
	var n domain.Notification
	err = s.DB.WithContext(ctx).Where("id = ?", nid).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Notification not found")
	}
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, domain.AccessDenied("Unauthorized")
	}
	if err := s.DB.WithContext(ctx).Model(&n).Update("read", true).Error; err != nil {
		return nil, err
	}
	n.Read = true
	return &n, nil
}
