package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// SaveAccount inserts a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpsertLinkedAccount inserts or refreshes an externally linked account
	// keyed by (owner, external account id). Returns the stored account and
	// whether it was newly created.
	UpsertLinkedAccount(ctx context.Context, account domain.Account) (*domain.Account, bool, error)

	// FindAccountByID retrieves an account by its ID.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountsByOwner retrieves the owner's accounts.
	ListAccountsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Account, error)

	// UpdateAccount updates mutable account attributes (never the balance).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account inactive.
	DeactivateAccount(ctx context.Context, accountID, userID string, now time.Time) error

	// FindAccountsByItemID retrieves all accounts linked to an external item.
	FindAccountsByItemID(ctx context.Context, itemID string) ([]domain.Account, error)

	// FindAccountsByIDsForUpdate retrieves accounts by IDs and locks the rows.
	// Must be called within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceChangesInTx is the single balance mutation gateway: it adds
	// each signed delta to the matching account's current_balance. Rows must
	// already be locked via FindAccountsByIDsForUpdate.
	ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, userID string, now time.Time) error

	// GetSyncCursor loads the stored feed cursor for an external item.
	// A nil cursor means the feed should be read from the beginning.
	GetSyncCursor(ctx context.Context, itemID string) (*string, error)

	// SaveSyncCursor persists the advanced cursor for all accounts of an item.
	SaveSyncCursor(ctx context.Context, itemID, cursor string, syncedAt time.Time) error
}
