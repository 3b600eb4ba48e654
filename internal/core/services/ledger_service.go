package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	portssvc "github.com/fintrackhq/fintrack-backend/internal/core/ports/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
	"github.com/fintrackhq/fintrack-backend/internal/events/kafka"
	"github.com/fintrackhq/fintrack-backend/internal/metrics"
	"github.com/fintrackhq/fintrack-backend/internal/middleware"
	"github.com/fintrackhq/fintrack-backend/internal/utils/accounting"
)

type ledgerService struct {
	entryRepo   portsrepo.EntryRepository
	accountRepo portsrepo.AccountRepository
	categorySvc portssvc.CategorySvcFacade
	publisher   *kafka.Publisher
}

// NewLedgerService creates the ledger entry lifecycle service. The publisher
// may be nil; events are then dropped.
func NewLedgerService(entryRepo portsrepo.EntryRepository, accountRepo portsrepo.AccountRepository, categorySvc portssvc.CategorySvcFacade, publisher *kafka.Publisher) portssvc.LedgerSvcFacade {
	return &ledgerService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		categorySvc: categorySvc,
		publisher:   publisher,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// checkWritableAccount verifies the target account exists, is active and
// belongs to the caller.
func (s *ledgerService) checkWritableAccount(ctx context.Context, accountID, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != userID {
		return nil, fmt.Errorf("%w: account %s does not belong to caller", apperrors.ErrForbidden, accountID)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, accountID)
	}
	return account, nil
}

// resolveCategory picks the category from an explicit ID or a name to
// get-or-create. Both nil means uncategorized.
func (s *ledgerService) resolveCategory(ctx context.Context, categoryID, categoryName *string, userID string) (*string, error) {
	if categoryID != nil && *categoryID != "" {
		category, err := s.categorySvc.GetCategoryByID(ctx, *categoryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: category %s does not exist", apperrors.ErrValidation, *categoryID)
			}
			return nil, err
		}
		return &category.CategoryID, nil
	}
	if categoryName != nil && *categoryName != "" {
		category, err := s.categorySvc.GetOrCreateByName(ctx, *categoryName, userID)
		if err != nil {
			return nil, err
		}
		return &category.CategoryID, nil
	}
	return nil, nil
}

func (s *ledgerService) publish(ctx context.Context, eventType string, entry *domain.LedgerEntry) {
	logger := middleware.GetLoggerFromCtx(ctx)
	err := s.publisher.Publish(ctx, kafka.LedgerEvent{
		Type:       eventType,
		EntryID:    entry.EntryID,
		AccountID:  entry.AccountID,
		OwnerID:    entry.OwnerID,
		Amount:     entry.Amount,
		IsIncome:   entry.IsIncome,
		OccurredAt: time.Now(),
	})
	if err != nil {
		// Events are best-effort; the ledger write already committed.
		logger.Warn("Failed to publish ledger event", slog.String("type", eventType), slog.String("entry_id", entry.EntryID), slog.String("error", err.Error()))
	}
}

func (s *ledgerService) CreateEntry(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.checkWritableAccount(ctx, req.AccountID, userID)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID, req.CategoryName, userID)
	if err != nil {
		return nil, err
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = account.CurrencyCode
	}

	now := time.Now()
	entry := domain.LedgerEntry{
		EntryID:         uuid.NewString(),
		AccountID:       account.AccountID,
		OwnerID:         userID,
		Amount:          req.Amount,
		IsIncome:        req.IsIncome,
		CategoryID:      categoryID,
		Name:            req.Name,
		MerchantName:    req.MerchantName,
		CurrencyCode:    currency,
		Note:            req.Note,
		Repeat:          req.Repeat,
		CanDelete:       true,
		IsActive:        true,
		TransactionDate: req.TransactionDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	delta := accounting.DeltaFor(entry.Amount, entry.IsIncome)
	if err := s.entryRepo.SaveEntry(ctx, entry, delta); err != nil {
		logger.Error("Failed to save entry in repository", slog.String("error", err.Error()), slog.String("entry_id", entry.EntryID))
		return nil, err
	}

	metrics.EntriesCreated.Inc()
	s.publish(ctx, "entry_created", &entry)

	logger.Info("Ledger entry created", slog.String("entry_id", entry.EntryID), slog.String("account_id", entry.AccountID), slog.String("delta", delta.String()))
	return &entry, nil
}

func (s *ledgerService) GetEntryByID(ctx context.Context, entryID string, userID string) (*domain.LedgerEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.OwnerID != userID {
		return nil, fmt.Errorf("%w: entry %s does not belong to caller", apperrors.ErrForbidden, entryID)
	}
	return entry, nil
}

func (s *ledgerService) ListEntriesByAccount(ctx context.Context, accountID string, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if account.OwnerID != userID {
		return nil, nil, fmt.Errorf("%w: account %s does not belong to caller", apperrors.ErrForbidden, accountID)
	}

	entries, token, err := s.entryRepo.ListEntriesByAccount(ctx, accountID, limit, nextToken)
	if err != nil {
		return nil, nil, err
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	return entries, token, nil
}

// UpdateEntry edits an entry. The balance adjustment is derived from the
// pre-image: same account gets one (new-old) delta, an account move reverses
// the old delta on the old account and applies the new delta on the new one.
func (s *ledgerService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateTransactionRequest, userID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.GetEntryByID(ctx, entryID, userID)
	if err != nil {
		return nil, err
	}
	if !entry.IsActive {
		return nil, fmt.Errorf("%w: entry %s has been deleted", apperrors.ErrValidation, entryID)
	}

	oldAccountID := entry.AccountID
	oldDelta := accounting.DeltaFor(entry.Amount, entry.IsIncome)

	if !entry.CanDelete {
		// Feed-owned entries: the feed is authoritative for the financial
		// facts, only local metadata may change.
		if req.AccountID != nil && *req.AccountID != entry.AccountID {
			return nil, fmt.Errorf("%w: synced entries cannot move between accounts", apperrors.ErrForbidden)
		}
		if req.Amount != nil && !req.Amount.Equal(entry.Amount) {
			return nil, fmt.Errorf("%w: synced entries cannot change amount", apperrors.ErrForbidden)
		}
		if req.IsIncome != nil && *req.IsIncome != entry.IsIncome {
			return nil, fmt.Errorf("%w: synced entries cannot change direction", apperrors.ErrForbidden)
		}
	}

	if req.AccountID != nil && *req.AccountID != entry.AccountID {
		if _, err := s.checkWritableAccount(ctx, *req.AccountID, userID); err != nil {
			return nil, err
		}
		entry.AccountID = *req.AccountID
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
		}
		entry.Amount = *req.Amount
	}
	if req.IsIncome != nil {
		entry.IsIncome = *req.IsIncome
	}
	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, req.CategoryID, nil, userID)
		if err != nil {
			return nil, err
		}
		entry.CategoryID = categoryID
	}
	if req.Name != nil {
		entry.Name = *req.Name
	}
	if req.MerchantName != nil {
		entry.MerchantName = *req.MerchantName
	}
	if req.Note != nil {
		entry.Note = *req.Note
	}
	if req.Repeat != nil {
		entry.Repeat = *req.Repeat
	}
	if req.TransactionDate != nil {
		entry.TransactionDate = *req.TransactionDate
	}
	entry.LastUpdatedAt = time.Now()
	entry.LastUpdatedBy = userID

	newDelta := accounting.DeltaFor(entry.Amount, entry.IsIncome)

	balanceChanges := map[string]decimal.Decimal{}
	if entry.AccountID == oldAccountID {
		balanceChanges[oldAccountID] = newDelta.Sub(oldDelta)
	} else {
		balanceChanges[oldAccountID] = oldDelta.Neg()
		balanceChanges[entry.AccountID] = newDelta
	}

	if err := s.entryRepo.UpdateEntry(ctx, *entry, balanceChanges); err != nil {
		logger.Error("Failed to update entry in repository", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}

	metrics.EntriesUpdated.Inc()
	s.publish(ctx, "entry_updated", entry)

	logger.Info("Ledger entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

// DeleteEntry soft-deletes an entry and reverses its balance effect.
func (s *ledgerService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.GetEntryByID(ctx, entryID, userID)
	if err != nil {
		return err
	}
	if !entry.CanDelete {
		return fmt.Errorf("%w: entry %s is owned by the feed and cannot be deleted", apperrors.ErrForbidden, entryID)
	}
	if !entry.IsActive {
		return fmt.Errorf("%w: entry %s is already deleted", apperrors.ErrValidation, entryID)
	}

	reversal := accounting.DeltaFor(entry.Amount, entry.IsIncome).Neg()
	if err := s.entryRepo.DeactivateEntry(ctx, *entry, reversal, userID, time.Now()); err != nil {
		logger.Error("Failed to deactivate entry in repository", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return err
	}

	metrics.EntriesDeleted.Inc()
	s.publish(ctx, "entry_deleted", entry)

	logger.Info("Ledger entry deleted", slog.String("entry_id", entryID), slog.String("reversal", reversal.String()))
	return nil
}
