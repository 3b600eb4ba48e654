package services

import (
	"log/slog"

	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	portssvc "github.com/fintrackhq/fintrack-backend/internal/core/ports/services"
	"github.com/fintrackhq/fintrack-backend/internal/events/kafka"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. publisher may be nil when Kafka is not configured.
func NewServiceContainer(repos portsrepo.RepositoryProvider, feed FeedClient, publisher *kafka.Publisher, baseLogger *slog.Logger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Category = NewCategoryService(repos.CategoryRepo)
	container.Account = NewAccountService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.EntryRepo, repos.AccountRepo, container.Category, publisher)
	container.Sync = NewSyncService(repos.AccountRepo, repos.EntryRepo, container.Category, feed, publisher)
	container.Webhook = NewWebhookService(repos.WebhookRepo, container.Sync, baseLogger)
	container.Bill = NewBillService(repos.BillRepo)
	container.Goal = NewGoalService(repos.GoalRepo)
	container.Budget = NewBudgetService(repos.BudgetRepo)

	return container
}
