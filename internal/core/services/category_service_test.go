package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	"github.com/fintrackhq/fintrack-backend/internal/core/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
)

func TestCreateCategoryTrimsAndSlugs(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo)

	var saved domain.Category
	repo.On("SaveCategory", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(domain.Category)
	}).Return(nil)

	created, err := svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "  Dining Out  "}, testUserID)

	require.NoError(t, err)
	assert.Equal(t, "Dining Out", created.Name)
	assert.Equal(t, "dining-out", saved.Slug)
	assert.NotEmpty(t, saved.CategoryID)
	assert.Equal(t, testUserID, saved.CreatedBy)
}

func TestCreateCategoryRejectsBlankName(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo)

	_, err := svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "   "}, testUserID)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "SaveCategory", mock.Anything, mock.Anything)
}

func TestGetOrCreateByNameReturnsExisting(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo)

	existing := &domain.Category{CategoryID: "cat-1", Name: "Groceries"}
	repo.On("FindCategoryByName", mock.Anything, "Groceries").Return(existing, nil)

	got, err := svc.GetOrCreateByName(context.Background(), "Groceries", testUserID)

	require.NoError(t, err)
	assert.Equal(t, existing, got)
	repo.AssertNotCalled(t, "SaveCategory", mock.Anything, mock.Anything)
}

// Losing a create race falls back to the row the winner inserted.
func TestGetOrCreateByNameSurvivesCreateRace(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo)

	winner := &domain.Category{CategoryID: "cat-2", Name: "Groceries"}
	repo.On("FindCategoryByName", mock.Anything, "Groceries").
		Return(nil, fmt.Errorf("%w: category", apperrors.ErrNotFound)).Once()
	repo.On("SaveCategory", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: category name", apperrors.ErrDuplicate))
	repo.On("FindCategoryByName", mock.Anything, "Groceries").Return(winner, nil).Once()

	got, err := svc.GetOrCreateByName(context.Background(), "Groceries", testUserID)

	require.NoError(t, err)
	assert.Equal(t, "cat-2", got.CategoryID)
}

func TestResolveFeedCategoryMatchesStoredDescription(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo)

	coffee := &domain.Category{CategoryID: "cat-3", Name: "Coffee", Description: "FOOD_AND_DRINK_COFFEE"}
	repo.On("FindCategoryByDescription", mock.Anything, "FOOD_AND_DRINK_COFFEE").Return(coffee, nil)

	got, err := svc.ResolveFeedCategory(context.Background(), "FOOD_AND_DRINK_COFFEE", testUserID)

	require.NoError(t, err)
	assert.Equal(t, "cat-3", got.CategoryID)
	repo.AssertNotCalled(t, "FindCategoryByName", mock.Anything, mock.Anything)
}

// A classification code nobody mapped locally lands in Unknown; the feed must
// never mint categories of its own.
func TestResolveFeedCategoryUnmatchedCodeFallsBackToUnknown(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo)

	repo.On("FindCategoryByDescription", mock.Anything, "NEVER_SEEN_CODE").
		Return(nil, fmt.Errorf("%w: category", apperrors.ErrNotFound))
	unknown := &domain.Category{CategoryID: "cat-u", Name: domain.UnknownCategoryName}
	repo.On("FindCategoryByName", mock.Anything, domain.UnknownCategoryName).Return(unknown, nil)

	got, err := svc.ResolveFeedCategory(context.Background(), "NEVER_SEEN_CODE", testUserID)

	require.NoError(t, err)
	assert.Equal(t, "cat-u", got.CategoryID)
	repo.AssertNotCalled(t, "SaveCategory", mock.Anything, mock.Anything)
}

func TestResolveFeedCategoryEmptyCodeFallsBackToUnknown(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo)

	unknown := &domain.Category{CategoryID: "cat-u", Name: domain.UnknownCategoryName}
	repo.On("FindCategoryByName", mock.Anything, domain.UnknownCategoryName).Return(unknown, nil)

	got, err := svc.ResolveFeedCategory(context.Background(), "", testUserID)

	require.NoError(t, err)
	assert.Equal(t, domain.UnknownCategoryName, got.Name)
}
