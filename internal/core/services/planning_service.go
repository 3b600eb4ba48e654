package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	portssvc "github.com/fintrackhq/fintrack-backend/internal/core/ports/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
)

// Owner-scoped CRUD services for bills, goals and budgets. None of these touch
// account balances.

type billService struct {
	billRepo portsrepo.BillRepository
}

// NewBillService creates the bill tracking service.
func NewBillService(repo portsrepo.BillRepository) portssvc.BillSvcFacade {
	return &billService{billRepo: repo}
}

var _ portssvc.BillSvcFacade = (*billService)(nil)

func (s *billService) CreateBill(ctx context.Context, req dto.CreateBillRequest, userID string) (*domain.Bill, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: bill amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	bill := domain.Bill{
		BillID:   uuid.NewString(),
		OwnerID:  userID,
		Title:    req.Title,
		Amount:   req.Amount,
		Repeat:   req.Repeat,
		Category: req.Category,
		DueDate:  req.DueDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.billRepo.SaveBill(ctx, bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *billService) GetBillByID(ctx context.Context, billID string, userID string) (*domain.Bill, error) {
	bill, err := s.billRepo.FindBillByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.OwnerID != userID {
		return nil, fmt.Errorf("%w: bill %s does not belong to caller", apperrors.ErrForbidden, billID)
	}
	return bill, nil
}

func (s *billService) ListBills(ctx context.Context, userID string, limit int, offset int) ([]domain.Bill, error) {
	bills, err := s.billRepo.ListBillsByOwner(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		return []domain.Bill{}, nil
	}
	return bills, nil
}

func (s *billService) UpdateBill(ctx context.Context, billID string, req dto.UpdateBillRequest, userID string) (*domain.Bill, error) {
	bill, err := s.GetBillByID(ctx, billID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		bill.Title = *req.Title
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: bill amount must be positive", apperrors.ErrValidation)
		}
		bill.Amount = *req.Amount
	}
	if req.Repeat != nil {
		bill.Repeat = *req.Repeat
	}
	if req.Category != nil {
		bill.Category = *req.Category
	}
	if req.Cancelled != nil {
		bill.Cancelled = *req.Cancelled
	}
	if req.DueDate != nil {
		bill.DueDate = req.DueDate
	}
	if req.LastPaidDate != nil {
		bill.LastPaidDate = req.LastPaidDate
	}
	bill.LastUpdatedAt = time.Now()
	bill.LastUpdatedBy = userID

	if err := s.billRepo.UpdateBill(ctx, *bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *billService) DeleteBill(ctx context.Context, billID string, userID string) error {
	if _, err := s.GetBillByID(ctx, billID, userID); err != nil {
		return err
	}
	return s.billRepo.DeleteBill(ctx, billID)
}

type goalService struct {
	goalRepo portsrepo.GoalRepository
}

// NewGoalService creates the savings goal service.
func NewGoalService(repo portsrepo.GoalRepository) portssvc.GoalSvcFacade {
	return &goalService{goalRepo: repo}
}

var _ portssvc.GoalSvcFacade = (*goalService)(nil)

func (s *goalService) CreateGoal(ctx context.Context, req dto.CreateGoalRequest, userID string) (*domain.Goal, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: goal amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	goal := domain.Goal{
		GoalID:      uuid.NewString(),
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		SavedAmount: decimal.Zero,
		DueDate:     req.DueDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.goalRepo.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *goalService) GetGoalByID(ctx context.Context, goalID string, userID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerID != userID {
		return nil, fmt.Errorf("%w: goal %s does not belong to caller", apperrors.ErrForbidden, goalID)
	}
	return goal, nil
}

func (s *goalService) ListGoals(ctx context.Context, userID string, limit int, offset int) ([]domain.Goal, error) {
	goals, err := s.goalRepo.ListGoalsByOwner(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		return []domain.Goal{}, nil
	}
	return goals, nil
}

func (s *goalService) UpdateGoal(ctx context.Context, goalID string, req dto.UpdateGoalRequest, userID string) (*domain.Goal, error) {
	goal, err := s.GetGoalByID(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: goal amount must be positive", apperrors.ErrValidation)
		}
		goal.Amount = *req.Amount
	}
	if req.SavedAmount != nil {
		if req.SavedAmount.IsNegative() {
			return nil, fmt.Errorf("%w: saved amount must not be negative", apperrors.ErrValidation)
		}
		goal.SavedAmount = *req.SavedAmount
	}
	if req.DueDate != nil {
		goal.DueDate = req.DueDate
	}
	if req.IsCompleted != nil {
		goal.IsCompleted = *req.IsCompleted
	}
	goal.LastUpdatedAt = time.Now()
	goal.LastUpdatedBy = userID

	if err := s.goalRepo.UpdateGoal(ctx, *goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *goalService) DeleteGoal(ctx context.Context, goalID string, userID string) error {
	if _, err := s.GetGoalByID(ctx, goalID, userID); err != nil {
		return err
	}
	return s.goalRepo.DeleteGoal(ctx, goalID)
}

type budgetService struct {
	budgetRepo portsrepo.BudgetRepository
}

// NewBudgetService creates the budget service.
func NewBudgetService(repo portsrepo.BudgetRepository) portssvc.BudgetSvcFacade {
	return &budgetService{budgetRepo: repo}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: budget amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	budget := domain.Budget{
		BudgetID: uuid.NewString(),
		OwnerID:  userID,
		Title:    req.Title,
		Amount:   req.Amount,
		Note:     req.Note,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.OwnerID != userID {
		return nil, fmt.Errorf("%w: budget %s does not belong to caller", apperrors.ErrForbidden, budgetID)
	}
	return budget, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, userID string, limit int, offset int) ([]domain.Budget, error) {
	budgets, err := s.budgetRepo.ListBudgetsByOwner(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if budgets == nil {
		return []domain.Budget{}, nil
	}
	return budgets, nil
}

func (s *budgetService) UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error) {
	budget, err := s.GetBudgetByID(ctx, budgetID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		budget.Title = *req.Title
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: budget amount must be positive", apperrors.ErrValidation)
		}
		budget.Amount = *req.Amount
	}
	if req.Note != nil {
		budget.Note = *req.Note
	}
	budget.LastUpdatedAt = time.Now()
	budget.LastUpdatedBy = userID

	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) DeleteBudget(ctx context.Context, budgetID string, userID string) error {
	if _, err := s.GetBudgetByID(ctx, budgetID, userID); err != nil {
		return err
	}
	return s.budgetRepo.DeleteBudget(ctx, budgetID)
}
