package repositories

import (
	"context"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*domain.Category, error)

	// FindCategoryByDescription matches the external classification code
	// case-insensitively.
	FindCategoryByDescription(ctx context.Context, description string) (*domain.Category, error)

	ListCategories(ctx context.Context, limit, offset int) ([]domain.Category, error)
}
