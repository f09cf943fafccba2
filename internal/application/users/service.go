package users

import (
	"context"

	"foundersbook-backend/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// List returns all users ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := s.DB.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}
