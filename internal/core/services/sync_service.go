package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/clients/bankfeed"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	portssvc "github.com/fintrackhq/fintrack-backend/internal/core/ports/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
	"github.com/fintrackhq/fintrack-backend/internal/events/kafka"
	"github.com/fintrackhq/fintrack-backend/internal/metrics"
	"github.com/fintrackhq/fintrack-backend/internal/middleware"
	"github.com/fintrackhq/fintrack-backend/internal/utils/accounting"
)

// syncRunTimeout bounds a reconciliation run once it is detached from the
// request that started it.
const syncRunTimeout = 5 * time.Minute

// FeedClient is the slice of the bankfeed client the reconciler needs.
type FeedClient interface {
	SyncTransactions(ctx context.Context, accessToken string, cursor *string) (*bankfeed.SyncResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*bankfeed.ExchangeResponse, error)
	GetAccounts(ctx context.Context, accessToken string) (*bankfeed.AccountsResponse, error)
}

type syncService struct {
	accountRepo portsrepo.AccountRepository
	entryRepo   portsrepo.EntryRepository
	categorySvc portssvc.CategorySvcFacade
	feed        FeedClient
	publisher   *kafka.Publisher

	// group coalesces concurrent sync requests for the same item.
	group singleflight.Group
}

// NewSyncService creates the feed reconciliation service.
func NewSyncService(accountRepo portsrepo.AccountRepository, entryRepo portsrepo.EntryRepository, categorySvc portssvc.CategorySvcFacade, feed FeedClient, publisher *kafka.Publisher) portssvc.SyncSvcFacade {
	return &syncService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		categorySvc: categorySvc,
		feed:        feed,
		publisher:   publisher,
	}
}

var _ portssvc.SyncSvcFacade = (*syncService)(nil)

// mapAccountKind translates the provider's type/subtype pair into the local
// account kind enum.
func mapAccountKind(feedType, subtype string) domain.AccountKind {
	switch feedType {
	case "depository":
		if subtype == "savings" {
			return domain.Savings
		}
		return domain.Checking
	case "credit":
		return domain.CreditCard
	case "loan":
		return domain.Loan
	case "investment", "brokerage":
		return domain.Investment
	default:
		return domain.Checking
	}
}

// LinkAccounts exchanges a one-time public token for item credentials and
// imports the item's accounts for the user.
func (s *syncService) LinkAccounts(ctx context.Context, req dto.LinkAccountsRequest, userID string) (*dto.LinkAccountsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	exchange, err := s.feed.ExchangePublicToken(ctx, req.PublicToken)
	if err != nil {
		logger.Error("Failed to exchange public token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}

	feedAccounts, err := s.feed.GetAccounts(ctx, exchange.AccessToken)
	if err != nil {
		logger.Error("Failed to fetch accounts for linked item", slog.String("error", err.Error()), slog.String("item_id", exchange.ItemID))
		return nil, fmt.Errorf("failed to fetch linked accounts: %w", err)
	}

	now := time.Now()
	resp := &dto.LinkAccountsResponse{ItemID: exchange.ItemID}
	for _, fa := range feedAccounts.Accounts {
		name := fa.Name
		if name == "" {
			name = fa.OfficialName
		}
		mask := fa.Mask
		if mask != "" {
			mask = "****" + mask
		}
		account := domain.Account{
			AccountID:         uuid.NewString(),
			OwnerID:           userID,
			Name:              name,
			OfficialName:      fa.OfficialName,
			Kind:              mapAccountKind(fa.Type, fa.Subtype),
			AccountNumber:     mask,
			CurrencyCode:      fa.Balances.ISOCurrencyCode,
			CurrentBalance:    fa.Balances.Current,
			AvailableBalance:  fa.Balances.Available,
			IsActive:          true,
			IsInternal:        false,
			ExternalAccountID: fa.AccountID,
			ExternalItemID:    exchange.ItemID,
			AccessToken:       exchange.AccessToken,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}

		stored, created, err := s.accountRepo.UpsertLinkedAccount(ctx, account)
		if err != nil {
			return nil, err
		}
		if created {
			resp.ImportedCount++
		}
		resp.Accounts = append(resp.Accounts, dto.ToAccountResponse(stored))
	}

	logger.Info("Linked item accounts imported", slog.String("item_id", exchange.ItemID), slog.Int("imported", resp.ImportedCount), slog.Int("total", len(resp.Accounts)))
	return resp, nil
}

// SyncItem runs the paginated reconciliation loop for one external item.
// Concurrent calls for the same item coalesce into a single run; a cursor is
// only persisted after its page has committed, so a crash mid-run replays the
// last page without creating duplicates or drifting balances.
func (s *syncService) SyncItem(ctx context.Context, itemID string, userID string) (*domain.SyncResult, error) {
	// Ownership is checked before coalescing so a caller can never ride on
	// another user's in-flight run.
	if userID != "" {
		accounts, err := s.accountRepo.FindAccountsByItemID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, fmt.Errorf("%w: no accounts linked to item %s", apperrors.ErrNotFound, itemID)
		}
		if accounts[0].OwnerID != userID {
			return nil, fmt.Errorf("%w: item %s does not belong to caller", apperrors.ErrForbidden, itemID)
		}
	}

	result, err, _ := s.group.Do(itemID, func() (interface{}, error) {
		// The run is shared by every coalesced caller, so it must not die
		// with whichever request happened to start it.
		runCtx, cancel := context.WithTimeout(middleware.ContextWithLogger(context.Background(), middleware.GetLoggerFromCtx(ctx)), syncRunTimeout)
		defer cancel()
		return s.runSync(runCtx, itemID, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.SyncResult), nil
}

func (s *syncService) runSync(ctx context.Context, itemID string, userID string) (*domain.SyncResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("item_id", itemID))

	accounts, err := s.accountRepo.FindAccountsByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no accounts linked to item %s", apperrors.ErrNotFound, itemID)
	}

	// Webhook-triggered runs carry no caller; act as the accounts' owner.
	actorID := accounts[0].OwnerID
	if userID != "" && actorID != userID {
		return nil, fmt.Errorf("%w: item %s does not belong to caller", apperrors.ErrForbidden, itemID)
	}

	accessToken := accounts[0].AccessToken
	byExternalID := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		byExternalID[acc.ExternalAccountID] = acc
	}

	cursor, err := s.accountRepo.GetSyncCursor(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result := &domain.SyncResult{ItemID: itemID}
	for {
		page, err := s.feed.SyncTransactions(ctx, accessToken, cursor)
		if err != nil {
			metrics.SyncRuns.WithLabelValues("feed_error").Inc()
			logger.Error("Feed page fetch failed, aborting run", slog.String("error", err.Error()))
			return nil, fmt.Errorf("feed sync failed for item %s: %w", itemID, err)
		}

		plan, counts, err := s.buildPagePlan(ctx, page, byExternalID, actorID)
		if err != nil {
			metrics.SyncRuns.WithLabelValues("plan_error").Inc()
			logger.Error("Failed to plan feed page, cursor not advanced", slog.String("error", err.Error()))
			return nil, err
		}

		if err := s.entryRepo.CommitSyncPage(ctx, *plan); err != nil {
			metrics.SyncRuns.WithLabelValues("commit_error").Inc()
			logger.Error("Failed to commit feed page, cursor not advanced", slog.String("error", err.Error()))
			return nil, err
		}

		// The page is durable; only now is it safe to advance the cursor.
		// Crashing before this line replays the page, which the diffing
		// above turns into a no-op.
		if err := s.accountRepo.SaveSyncCursor(ctx, itemID, page.NextCursor, time.Now()); err != nil {
			metrics.SyncRuns.WithLabelValues("cursor_error").Inc()
			return nil, err
		}

		metrics.SyncPages.Inc()
		metrics.SyncRecords.WithLabelValues("added").Add(float64(counts.added))
		metrics.SyncRecords.WithLabelValues("modified").Add(float64(counts.modified))
		metrics.SyncRecords.WithLabelValues("removed").Add(float64(counts.removed))

		result.Pages++
		result.Added += counts.added
		result.Modified += counts.modified
		result.Removed += counts.removed
		result.NextCursor = page.NextCursor
		cursor = &page.NextCursor

		if !page.HasMore {
			break
		}
	}

	result.SyncedAt = time.Now()
	metrics.SyncRuns.WithLabelValues("success").Inc()

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, kafka.LedgerEvent{
			Type:       "sync_completed",
			ItemID:     itemID,
			OwnerID:    actorID,
			OccurredAt: result.SyncedAt,
		})
		if err != nil {
			logger.Warn("Failed to publish sync event", slog.String("error", err.Error()))
		}
	}

	logger.Info("Item sync completed",
		slog.Int("pages", result.Pages),
		slog.Int("added", result.Added),
		slog.Int("modified", result.Modified),
		slog.Int("removed", result.Removed),
	)
	return result, nil
}

func sameCategoryRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type pageCounts struct {
	added    int
	modified int
	removed  int
}

// buildPagePlan turns one feed page into a local mutation plan by diffing
// against the entries already stored under the same external IDs. Replayed
// records diff to nothing, which is what makes cursor replay safe.
func (s *syncService) buildPagePlan(ctx context.Context, page *bankfeed.SyncResponse, byExternalID map[string]domain.Account, actorID string) (*portsrepo.SyncPagePlan, *pageCounts, error) {
	now := time.Now()
	plan := &portsrepo.SyncPagePlan{
		BalanceChanges: map[string]decimal.Decimal{},
		ActorID:        actorID,
		Now:            now,
	}
	counts := &pageCounts{}

	externalIDs := make([]string, 0, len(page.Added)+len(page.Modified)+len(page.Removed))
	for _, txn := range page.Added {
		externalIDs = append(externalIDs, txn.TransactionID)
	}
	for _, txn := range page.Modified {
		externalIDs = append(externalIDs, txn.TransactionID)
	}
	for _, rm := range page.Removed {
		externalIDs = append(externalIDs, rm.TransactionID)
	}

	existing, err := s.entryRepo.FindEntriesByExternalIDs(ctx, externalIDs)
	if err != nil {
		return nil, nil, err
	}

	addBalance := func(accountID string, delta decimal.Decimal) {
		if delta.IsZero() {
			return
		}
		plan.BalanceChanges[accountID] = plan.BalanceChanges[accountID].Add(delta)
	}

	upsert := func(txn bankfeed.Transaction) (applied bool, err error) {
		account, ok := byExternalID[txn.AccountID]
		if !ok {
			// An account this backend has never imported poisons the whole
			// page; committing the rest would silently lose records.
			return false, fmt.Errorf("%w: feed account %s is not linked locally", apperrors.ErrNotFound, txn.AccountID)
		}

		magnitude, isIncome := accounting.DirectionFromFeed(txn.Amount)
		newDelta := accounting.DeltaFor(magnitude, isIncome)

		prior, seen := existing[txn.TransactionID]
		if seen && !prior.IsActive {
			// Removed locally by an earlier feed event; do not resurrect.
			return false, nil
		}

		category, err := s.categorySvc.ResolveFeedCategory(ctx, txn.Category.Detailed, actorID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return false, err
		}
		var categoryID *string
		if category != nil {
			categoryID = &category.CategoryID
		}

		currency := txn.ISOCurrencyCode
		if currency == "" {
			currency = account.CurrencyCode
		}

		if !seen {
			externalID := txn.TransactionID
			plan.Inserts = append(plan.Inserts, domain.LedgerEntry{
				EntryID:         uuid.NewString(),
				AccountID:       account.AccountID,
				OwnerID:         account.OwnerID,
				Amount:          magnitude,
				IsIncome:        isIncome,
				CategoryID:      categoryID,
				Name:            txn.Name,
				MerchantName:    txn.MerchantName,
				CurrencyCode:    currency,
				Location:        txn.Location.String(),
				Latitude:        txn.Location.Lat,
				Longitude:       txn.Location.Lon,
				ExternalID:      &externalID,
				CanDelete:       false,
				IsActive:        true,
				TransactionDate: txn.Date.Time,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     actorID,
					LastUpdatedAt: now,
					LastUpdatedBy: actorID,
				},
			})
			addBalance(account.AccountID, newDelta)
			return true, nil
		}

		// Already stored: apply only what actually changed. Classification
		// and currency count; a reclassified record must land even though it
		// moves no money.
		oldDelta := accounting.DeltaFor(prior.Amount, prior.IsIncome)
		changed := !prior.Amount.Equal(magnitude) ||
			prior.IsIncome != isIncome ||
			prior.Name != txn.Name ||
			prior.MerchantName != txn.MerchantName ||
			prior.CurrencyCode != currency ||
			!sameCategoryRef(prior.CategoryID, categoryID) ||
			!prior.TransactionDate.Equal(txn.Date.Time) ||
			prior.Location != txn.Location.String()
		if !changed {
			return false, nil
		}

		updated := prior
		updated.Amount = magnitude
		updated.IsIncome = isIncome
		updated.CategoryID = categoryID
		updated.CurrencyCode = currency
		updated.Name = txn.Name
		updated.MerchantName = txn.MerchantName
		updated.Location = txn.Location.String()
		updated.Latitude = txn.Location.Lat
		updated.Longitude = txn.Location.Lon
		updated.TransactionDate = txn.Date.Time
		plan.Updates = append(plan.Updates, updated)
		addBalance(prior.AccountID, newDelta.Sub(oldDelta))
		return true, nil
	}

	for _, txn := range page.Added {
		applied, err := upsert(txn)
		if err != nil {
			return nil, nil, err
		}
		if applied {
			counts.added++
		}
	}
	for _, txn := range page.Modified {
		applied, err := upsert(txn)
		if err != nil {
			return nil, nil, err
		}
		if applied {
			counts.modified++
		}
	}
	for _, rm := range page.Removed {
		prior, seen := existing[rm.TransactionID]
		if !seen || !prior.IsActive {
			continue
		}
		plan.DeactivateIDs = append(plan.DeactivateIDs, prior.EntryID)
		addBalance(prior.AccountID, accounting.DeltaFor(prior.Amount, prior.IsIncome).Neg())
		counts.removed++
	}

	return plan, counts, nil
}
