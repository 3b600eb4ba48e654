package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// SyncPagePlan is the precomputed local effect of one feed page. The entry
// repository commits the whole plan in a single database transaction; the
// cursor is deliberately NOT part of the plan and is persisted only after the
// commit succeeds, which keeps delivery at-least-once.
type SyncPagePlan struct {
	Inserts        []domain.LedgerEntry
	Updates        []domain.LedgerEntry
	DeactivateIDs  []string
	BalanceChanges map[string]decimal.Decimal
	ActorID        string
	Now            time.Time
}

// Empty reports whether the plan carries no local mutations.
func (p SyncPagePlan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.DeactivateIDs) == 0
}

// EntryRepository defines persistence operations for ledger entries. Every
// method that mutates an entry also applies the caller-computed balance
// deltas inside the same database transaction, so the entry write and the
// balance write either both commit or both roll back.
type EntryRepository interface {
	// SaveEntry inserts a new entry and applies delta to its account balance.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry, delta decimal.Decimal) error

	// FindEntryByID retrieves an entry by its ID.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// ListEntriesByAccount retrieves a page of active entries for an account
	// using keyset pagination, newest first.
	ListEntriesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// UpdateEntry rewrites an entry and applies the given per-account balance
	// adjustments (one account for in-place edits, two for account moves).
	UpdateEntry(ctx context.Context, entry domain.LedgerEntry, balanceChanges map[string]decimal.Decimal) error

	// DeactivateEntry soft-deletes an entry and applies the reversal delta.
	DeactivateEntry(ctx context.Context, entry domain.LedgerEntry, reversal decimal.Decimal, userID string, now time.Time) error

	// FindEntriesByExternalIDs retrieves entries keyed by their external IDs.
	FindEntriesByExternalIDs(ctx context.Context, externalIDs []string) (map[string]domain.LedgerEntry, error)

	// CommitSyncPage applies one feed page's inserts, updates, deactivations
	// and balance changes atomically.
	CommitSyncPage(ctx context.Context, plan SyncPagePlan) error
}
