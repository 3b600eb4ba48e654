package services

import (
	"context"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
)

// BillSvcFacade defines operations for bill tracking.
type BillSvcFacade interface {
	CreateBill(ctx context.Context, req dto.CreateBillRequest, userID string) (*domain.Bill, error)
	GetBillByID(ctx context.Context, billID string, userID string) (*domain.Bill, error)
	ListBills(ctx context.Context, userID string, limit int, offset int) ([]domain.Bill, error)
	UpdateBill(ctx context.Context, billID string, req dto.UpdateBillRequest, userID string) (*domain.Bill, error)
	DeleteBill(ctx context.Context, billID string, userID string) error
}

// GoalSvcFacade defines operations for savings goals.
type GoalSvcFacade interface {
	CreateGoal(ctx context.Context, req dto.CreateGoalRequest, userID string) (*domain.Goal, error)
	GetGoalByID(ctx context.Context, goalID string, userID string) (*domain.Goal, error)
	ListGoals(ctx context.Context, userID string, limit int, offset int) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, goalID string, req dto.UpdateGoalRequest, userID string) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, goalID string, userID string) error
}

// BudgetSvcFacade defines operations for budgets.
type BudgetSvcFacade interface {
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error)
	GetBudgetByID(ctx context.Context, budgetID string, userID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string, limit int, offset int) ([]domain.Budget, error)
	UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, budgetID string, userID string) error
}
