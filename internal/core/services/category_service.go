package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	portssvc "github.com/fintrackhq/fintrack-backend/internal/core/ports/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
	"github.com/fintrackhq/fintrack-backend/internal/middleware"
)

type categoryService struct {
	categoryRepo portsrepo.CategoryRepository
}

// NewCategoryService creates the category service.
func NewCategoryService(repo portsrepo.CategoryRepository) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: repo}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, userID string) (*domain.Category, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name must not be empty", apperrors.ErrValidation)
	}

	now := time.Now()
	category := domain.Category{
		CategoryID:  uuid.NewString(),
		Name:        name,
		Slug:        slugify(name),
		Description: req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save category in repository", slog.String("error", err.Error()), slog.String("name", name))
		}
		return nil, err
	}

	logger.Info("Category created", slog.String("category_id", category.CategoryID), slog.String("name", name))
	return &category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.categoryRepo.FindCategoryByID(ctx, categoryID)
}

func (s *categoryService) ListCategories(ctx context.Context, limit int, offset int) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

// GetOrCreateByName returns the category with the given name, creating it if
// absent. A concurrent create losing the race falls back to the winner's row.
func (s *categoryService) GetOrCreateByName(ctx context.Context, name string, userID string) (*domain.Category, error) {
	existing, err := s.categoryRepo.FindCategoryByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	created, err := s.CreateCategory(ctx, dto.CreateCategoryRequest{Name: name}, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.categoryRepo.FindCategoryByName(ctx, name)
		}
		return nil, err
	}
	return created, nil
}

// ResolveFeedCategory maps an upstream classification code to the category
// whose description carries that code. Codes with no local mapping, and empty
// codes, resolve to the seeded Unknown category; the feed taxonomy never
// creates categories on its own.
func (s *categoryService) ResolveFeedCategory(ctx context.Context, feedDetailed string, userID string) (*domain.Category, error) {
	if feedDetailed != "" {
		existing, err := s.categoryRepo.FindCategoryByDescription(ctx, feedDetailed)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		middleware.GetLoggerFromCtx(ctx).Debug("Unmapped feed classification", slog.String("code", feedDetailed))
	}

	return s.categoryRepo.FindCategoryByName(ctx, domain.UnknownCategoryName)
}
