package repositories

// RepositoryProvider bundles all repository implementations for injection
// into the service container.
type RepositoryProvider struct {
	AccountRepo  AccountRepository
	EntryRepo    EntryRepository
	CategoryRepo CategoryRepository
	BillRepo     BillRepository
	GoalRepo     GoalRepository
	BudgetRepo   BudgetRepository
	WebhookRepo  WebhookRepository
}
