package services

import (
	"context"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
)

// LedgerReaderSvc defines read operations for ledger entries
type LedgerReaderSvc interface {
	// GetEntryByID retrieves a specific entry owned by userID.
	GetEntryByID(ctx context.Context, entryID string, userID string) (*domain.LedgerEntry, error)

	// ListEntriesByAccount retrieves a keyset-paginated page of an account's
	// active entries, newest first, plus the token for the next page.
	ListEntriesByAccount(ctx context.Context, accountID string, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// LedgerWriterSvc defines write operations for ledger entries. Every mutation
// adjusts the affected account balances atomically with the entry write.
type LedgerWriterSvc interface {
	// CreateEntry records a new entry and credits or debits its account.
	CreateEntry(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.LedgerEntry, error)

	// UpdateEntry edits an entry, rebalancing the old and new accounts.
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateTransactionRequest, userID string) (*domain.LedgerEntry, error)

	// DeleteEntry soft-deletes an entry and reverses its balance effect.
	DeleteEntry(ctx context.Context, entryID string, userID string) error
}

// LedgerSvcFacade combines all ledger-entry service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
