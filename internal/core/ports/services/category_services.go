package services

import (
	"context"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
)

// CategoryReaderSvc defines read operations for categories
type CategoryReaderSvc interface {
	// GetCategoryByID retrieves a category by its ID.
	GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// ListCategories retrieves all categories.
	ListCategories(ctx context.Context, limit int, offset int) ([]domain.Category, error)
}

// CategoryWriterSvc defines write operations for categories
type CategoryWriterSvc interface {
	// CreateCategory persists a new category.
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, userID string) (*domain.Category, error)

	// GetOrCreateByName returns the category with the given name, creating it
	// if it does not exist. Matching is case-insensitive.
	GetOrCreateByName(ctx context.Context, name string, userID string) (*domain.Category, error)

	// ResolveFeedCategory maps an upstream feed category description to a local
	// category, creating it on first sight. Falls back to the Unknown category
	// when the feed provides no classification.
	ResolveFeedCategory(ctx context.Context, feedDetailed string, userID string) (*domain.Category, error)
}

// CategorySvcFacade combines all category service interfaces
type CategorySvcFacade interface {
	CategoryReaderSvc
	CategoryWriterSvc
}
