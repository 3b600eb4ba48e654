package repositories

import (
	"context"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// BillRepository defines persistence operations for bills.
type BillRepository interface {
	SaveBill(ctx context.Context, bill domain.Bill) error
	FindBillByID(ctx context.Context, billID string) (*domain.Bill, error)
	ListBillsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Bill, error)
	UpdateBill(ctx context.Context, bill domain.Bill) error
	DeleteBill(ctx context.Context, billID string) error
}

// GoalRepository defines persistence operations for goals.
type GoalRepository interface {
	SaveGoal(ctx context.Context, goal domain.Goal) error
	FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error)
	ListGoalsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, goal domain.Goal) error
	DeleteGoal(ctx context.Context, goalID string) error
}

// BudgetRepository defines persistence operations for budgets.
type BudgetRepository interface {
	SaveBudget(ctx context.Context, budget domain.Budget) error
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)
	ListBudgetsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Budget, error)
	UpdateBudget(ctx context.Context, budget domain.Budget) error
	DeleteBudget(ctx context.Context, budgetID string) error
}
