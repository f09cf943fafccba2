package categories

import (
	"context"
	"errors"
	"strings"

	"foundersbook-backend/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// CreateExpenseCategory adds a category/subcategory pair. Pairs are unique.
func (s *Service) CreateExpenseCategory(ctx context.Context, category, subcategory string) (*domain.Category, error) {
	category, subcategory = strings.TrimSpace(category), strings.TrimSpace(subcategory)
	if category == "" || subcategory == "" {
		return nil, domain.InvalidArgument("category_name and subcategory_name are required")
	}
	var existing int64
	if err := s.DB.WithContext(ctx).Model(&domain.Category{}).
		Where("category_name = ? AND subcategory_name = ?", category, subcategory).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, domain.InvalidArgument("This category-subcategory combination already exists.")
	}
	c := &domain.Category{CategoryName: category, SubcategoryName: subcategory}
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListExpenseCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := s.DB.WithContext(ctx).Order("category_name ASC, subcategory_name ASC").Find(&out).Error
	return out, err
}

// UpsertTaskCategory creates a task category or merges new subcategories into
// an existing one. Merging nothing new is rejected.
func (s *Service) UpsertTaskCategory(ctx context.Context, name string, subcategories []string) (*domain.TaskCategory, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, domain.InvalidArgument("categoryName is required")
	}
	subs := dedupe(nil, subcategories)

	var tc domain.TaskCategory
	err := s.DB.WithContext(ctx).Where("category_name = ?", name).First(&tc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tc = domain.TaskCategory{CategoryName: name, Subcategories: datatypes.NewJSONType(subs)}
		if err := s.DB.WithContext(ctx).Create(&tc).Error; err != nil {
			return nil, false, err
		}
		return &tc, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	current := tc.Subcategories.Data()
	merged := dedupe(current, subs)
	if len(merged) == len(current) {
		return nil, false, domain.InvalidArgument("This category-subcategory combination already exists.")
	}
	tc.Subcategories = datatypes.NewJSONType(merged)
	if err := s.DB.WithContext(ctx).Model(&tc).Update("subcategories", tc.Subcategories).Error; err != nil {
		return nil, false, err
	}
	return &tc, false, nil
}

func (s *Service) ListTaskCategories(ctx context.Context) ([]domain.TaskCategory, error) {
	var out []domain.TaskCategory
	err := s.DB.WithContext(ctx).Order("category_name ASC").Find(&out).Error
	return out, err
}

// dedupe appends the non-blank values of add to base, skipping repeats.
func dedupe(base, add []string) []string {
	out := make([]string, 0, len(base)+len(add))
	seen := make(map[string]struct{}, len(base)+len(add))
	for _, v := range append(append([]string{}, base...), add...) {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
