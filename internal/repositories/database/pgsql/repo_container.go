package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool, accountRepo)
	categoryRepo := newPgxCategoryRepository(dbPool)
	billRepo := newPgxBillRepository(dbPool)
	goalRepo := newPgxGoalRepository(dbPool)
	budgetRepo := newPgxBudgetRepository(dbPool)
	webhookRepo := newPgxWebhookRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		EntryRepo:    entryRepo,
		CategoryRepo: categoryRepo,
		BillRepo:     billRepo,
		GoalRepo:     goalRepo,
		BudgetRepo:   budgetRepo,
		WebhookRepo:  webhookRepo,
	}
}
