package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	"github.com/fintrackhq/fintrack-backend/internal/models"
)

// Bill, goal and budget repositories share the same plain CRUD shape; none of
// them touch account balances.

type PgxBillRepository struct {
	BaseRepository
}

func newPgxBillRepository(pool *pgxpool.Pool) portsrepo.BillRepository {
	return &PgxBillRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BillRepository = (*PgxBillRepository)(nil)

const billColumns = `bill_id, owner_id, title, amount, repeat, category, cancelled, due_date, last_paid_date, created_at, created_by, last_updated_at, last_updated_by`

func scanBill(row pgx.Row) (models.Bill, error) {
	var m models.Bill
	err := row.Scan(
		&m.BillID,
		&m.OwnerID,
		&m.Title,
		&m.Amount,
		&m.Repeat,
		&m.Category,
		&m.Cancelled,
		&m.DueDate,
		&m.LastPaidDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func toDomainBill(m models.Bill) domain.Bill {
	return domain.Bill{
		BillID:       m.BillID,
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		Amount:       m.Amount,
		Repeat:       domain.BillRepeat(m.Repeat),
		Category:     m.Category,
		Cancelled:    m.Cancelled,
		DueDate:      m.DueDate,
		LastPaidDate: m.LastPaidDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxBillRepository) SaveBill(ctx context.Context, bill domain.Bill) error {
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		bill.BillID,
		bill.OwnerID,
		bill.Title,
		bill.Amount,
		string(bill.Repeat),
		bill.Category,
		bill.Cancelled,
		bill.DueDate,
		bill.LastPaidDate,
		bill.CreatedAt,
		bill.CreatedBy,
		bill.LastUpdatedAt,
		bill.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save bill %s: %w", bill.BillID, err)
	}
	return nil
}

func (r *PgxBillRepository) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_id = $1;`

	m, err := scanBill(r.Pool.QueryRow(ctx, query, billID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bill by ID %s: %w", billID, err)
	}
	d := toDomainBill(m)
	return &d, nil
}

func (r *PgxBillRepository) ListBillsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Bill, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + billColumns + ` FROM bills WHERE owner_id = $1 ORDER BY due_date NULLS LAST, bill_id LIMIT $2 OFFSET $3;`

	rows, err := r.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	bills := []domain.Bill{}
	for rows.Next() {
		m, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill row: %w", err)
		}
		bills = append(bills, toDomainBill(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating bill rows: %w", rows.Err())
	}
	return bills, nil
}

func (r *PgxBillRepository) UpdateBill(ctx context.Context, bill domain.Bill) error {
	query := `
		UPDATE bills
		SET title = $2, amount = $3, repeat = $4, category = $5, cancelled = $6,
		    due_date = $7, last_paid_date = $8, last_updated_at = $9, last_updated_by = $10
		WHERE bill_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		bill.BillID,
		bill.Title,
		bill.Amount,
		string(bill.Repeat),
		bill.Category,
		bill.Cancelled,
		bill.DueDate,
		bill.LastPaidDate,
		bill.LastUpdatedAt,
		bill.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill %s: %w", bill.BillID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBillRepository) DeleteBill(ctx context.Context, billID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM bills WHERE bill_id = $1;`, billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill %s: %w", billID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type PgxGoalRepository struct {
	BaseRepository
}

func newPgxGoalRepository(pool *pgxpool.Pool) portsrepo.GoalRepository {
	return &PgxGoalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.GoalRepository = (*PgxGoalRepository)(nil)

const goalColumns = `goal_id, owner_id, name, description, amount, saved_amount, due_date, is_completed, created_at, created_by, last_updated_at, last_updated_by`

func scanGoal(row pgx.Row) (models.Goal, error) {
	var m models.Goal
	err := row.Scan(
		&m.GoalID,
		&m.OwnerID,
		&m.Name,
		&m.Description,
		&m.Amount,
		&m.SavedAmount,
		&m.DueDate,
		&m.IsCompleted,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func toDomainGoal(m models.Goal) domain.Goal {
	return domain.Goal{
		GoalID:      m.GoalID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		Amount:      m.Amount,
		SavedAmount: m.SavedAmount,
		DueDate:     m.DueDate,
		IsCompleted: m.IsCompleted,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		goal.GoalID,
		goal.OwnerID,
		goal.Name,
		goal.Description,
		goal.Amount,
		goal.SavedAmount,
		goal.DueDate,
		goal.IsCompleted,
		goal.CreatedAt,
		goal.CreatedBy,
		goal.LastUpdatedAt,
		goal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save goal %s: %w", goal.GoalID, err)
	}
	return nil
}

func (r *PgxGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE goal_id = $1;`

	m, err := scanGoal(r.Pool.QueryRow(ctx, query, goalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find goal by ID %s: %w", goalID, err)
	}
	d := toDomainGoal(m)
	return &d, nil
}

func (r *PgxGoalRepository) ListGoalsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Goal, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner_id = $1 ORDER BY due_date NULLS LAST, goal_id LIMIT $2 OFFSET $3;`

	rows, err := r.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	goals := []domain.Goal{}
	for rows.Next() {
		m, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal row: %w", err)
		}
		goals = append(goals, toDomainGoal(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating goal rows: %w", rows.Err())
	}
	return goals, nil
}

func (r *PgxGoalRepository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	query := `
		UPDATE goals
		SET name = $2, description = $3, amount = $4, saved_amount = $5, due_date = $6,
		    is_completed = $7, last_updated_at = $8, last_updated_by = $9
		WHERE goal_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		goal.GoalID,
		goal.Name,
		goal.Description,
		goal.Amount,
		goal.SavedAmount,
		goal.DueDate,
		goal.IsCompleted,
		goal.LastUpdatedAt,
		goal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal %s: %w", goal.GoalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxGoalRepository) DeleteGoal(ctx context.Context, goalID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM goals WHERE goal_id = $1;`, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete goal %s: %w", goalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepository {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepository = (*PgxBudgetRepository)(nil)

const budgetColumns = `budget_id, owner_id, title, amount, note, created_at, created_by, last_updated_at, last_updated_by`

func scanBudget(row pgx.Row) (models.Budget, error) {
	var m models.Budget
	err := row.Scan(
		&m.BudgetID,
		&m.OwnerID,
		&m.Title,
		&m.Amount,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func toDomainBudget(m models.Budget) domain.Budget {
	return domain.Budget{
		BudgetID: m.BudgetID,
		OwnerID:  m.OwnerID,
		Title:    m.Title,
		Amount:   m.Amount,
		Note:     m.Note,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		budget.BudgetID,
		budget.OwnerID,
		budget.Title,
		budget.Amount,
		budget.Note,
		budget.CreatedAt,
		budget.CreatedBy,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save budget %s: %w", budget.BudgetID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1;`

	m, err := scanBudget(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget by ID %s: %w", budgetID, err)
	}
	d := toDomainBudget(m)
	return &d, nil
}

func (r *PgxBudgetRepository) ListBudgetsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Budget, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE owner_id = $1 ORDER BY title LIMIT $2 OFFSET $3;`

	rows, err := r.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		m, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, toDomainBudget(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", rows.Err())
	}
	return budgets, nil
}

func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		UPDATE budgets
		SET title = $2, amount = $3, note = $4, last_updated_at = $5, last_updated_by = $6
		WHERE budget_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		budget.BudgetID,
		budget.Title,
		budget.Amount,
		budget.Note,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", budget.BudgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM budgets WHERE budget_id = $1;`, budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget %s: %w", budgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
