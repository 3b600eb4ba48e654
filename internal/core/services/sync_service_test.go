package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/clients/bankfeed"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	"github.com/fintrackhq/fintrack-backend/internal/core/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
)

const testItemID = "item-1"

func linkedAccount() domain.Account {
	return domain.Account{
		AccountID:         testAccountID,
		OwnerID:           testUserID,
		Name:              "Everyday Checking",
		Kind:              domain.Checking,
		CurrencyCode:      "USD",
		CurrentBalance:    decimal.RequireFromString("100.00"),
		IsActive:          true,
		ExternalAccountID: "ext-acc-1",
		ExternalItemID:    testItemID,
		AccessToken:       "access-token-1",
	}
}

func feedTxn(id, extAccountID, amount string) bankfeed.Transaction {
	return bankfeed.Transaction{
		TransactionID:   id,
		AccountID:       extAccountID,
		Amount:          decimal.RequireFromString(amount),
		ISOCurrencyCode: "USD",
		Date:            bankfeed.Date{Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Name:            "Feed record",
		Category:        bankfeed.Category{Detailed: "FOOD_AND_DRINK_COFFEE"},
	}
}

func unknownCategory() *domain.Category {
	return &domain.Category{CategoryID: "cat-1", Name: "Food And Drink Coffee", Description: "FOOD_AND_DRINK_COFFEE"}
}

func newSyncMocks(t *testing.T) (*MockAccountRepository, *MockEntryRepository, *MockCategoryService) {
	t.Helper()
	return new(MockAccountRepository), new(MockEntryRepository), new(MockCategoryService)
}

// A negative feed amount is an inflow: the stored entry carries the magnitude
// with the income flag, and the account gains the amount.
func TestSyncItemTranslatesFeedSignConvention(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Added:      []bankfeed.Transaction{feedTxn("ext-txn-1", "ext-acc-1", "-42.50")},
			HasMore:    false,
			NextCursor: "cursor-1",
		},
	}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, []string{"ext-txn-1"}).Return(map[string]domain.LedgerEntry{}, nil)
	categorySvc.On("ResolveFeedCategory", mock.Anything, "FOOD_AND_DRINK_COFFEE", testUserID).Return(unknownCategory(), nil)

	var plan portsrepo.SyncPagePlan
	entryRepo.On("CommitSyncPage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		plan = args.Get(1).(portsrepo.SyncPagePlan)
	}).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-1", mock.Anything).Return(nil)

	result, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Pages)

	require.Len(t, plan.Inserts, 1)
	inserted := plan.Inserts[0]
	assert.True(t, inserted.Amount.Equal(decimal.RequireFromString("42.50")))
	assert.True(t, inserted.IsIncome)
	assert.False(t, inserted.CanDelete)
	require.NotNil(t, inserted.ExternalID)
	assert.Equal(t, "ext-txn-1", *inserted.ExternalID)

	// 100.00 + 42.50: the balance change is +42.50.
	assert.True(t, plan.BalanceChanges[testAccountID].Equal(decimal.RequireFromString("42.50")))
}

// Replaying a page after a crash between commit and cursor persistence must
// produce no inserts and no balance drift.
func TestSyncItemPageReplayIsIdempotent(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Added:      []bankfeed.Transaction{feedTxn("ext-txn-1", "ext-acc-1", "-42.50")},
			HasMore:    false,
			NextCursor: "cursor-1",
		},
	}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	externalID := "ext-txn-1"
	already := domain.LedgerEntry{
		EntryID:         "entry-1",
		AccountID:       testAccountID,
		OwnerID:         testUserID,
		Amount:          decimal.RequireFromString("42.50"),
		IsIncome:        true,
		Name:            "Feed record",
		Location:        "",
		ExternalID:      &externalID,
		CanDelete:       false,
		IsActive:        true,
		TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, []string{"ext-txn-1"}).Return(map[string]domain.LedgerEntry{"ext-txn-1": already}, nil)
	categorySvc.On("ResolveFeedCategory", mock.Anything, "FOOD_AND_DRINK_COFFEE", testUserID).Return(unknownCategory(), nil)

	var plan portsrepo.SyncPagePlan
	entryRepo.On("CommitSyncPage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		plan = args.Get(1).(portsrepo.SyncPagePlan)
	}).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-1", mock.Anything).Return(nil)

	result, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Empty(t, plan.Inserts)
	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.BalanceChanges)
}

// A modified record adjusts the balance by the difference only.
func TestSyncItemModifiedRecordAdjustsByDifference(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Modified:   []bankfeed.Transaction{feedTxn("ext-txn-1", "ext-acc-1", "60.00")},
			HasMore:    false,
			NextCursor: "cursor-2",
		},
	}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	externalID := "ext-txn-1"
	prior := domain.LedgerEntry{
		EntryID:         "entry-1",
		AccountID:       testAccountID,
		OwnerID:         testUserID,
		Amount:          decimal.RequireFromString("50.00"),
		IsIncome:        false,
		Name:            "Feed record",
		ExternalID:      &externalID,
		CanDelete:       false,
		IsActive:        true,
		TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, []string{"ext-txn-1"}).Return(map[string]domain.LedgerEntry{"ext-txn-1": prior}, nil)
	categorySvc.On("ResolveFeedCategory", mock.Anything, "FOOD_AND_DRINK_COFFEE", testUserID).Return(unknownCategory(), nil)

	var plan portsrepo.SyncPagePlan
	entryRepo.On("CommitSyncPage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		plan = args.Get(1).(portsrepo.SyncPagePlan)
	}).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-2", mock.Anything).Return(nil)

	result, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Modified)
	require.Len(t, plan.Updates, 1)
	assert.True(t, plan.Updates[0].Amount.Equal(decimal.RequireFromString("60.00")))
	// Expense grew from 50 to 60: balance drops by a further 10.
	assert.True(t, plan.BalanceChanges[testAccountID].Equal(decimal.RequireFromString("-10.00")))
}

// Zero-amount feed records (authorization holds, provider reversals) are
// stored for the audit trail but move no money.
func TestSyncItemStoresZeroAmountFeedRecord(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Added:      []bankfeed.Transaction{feedTxn("ext-txn-1", "ext-acc-1", "0")},
			HasMore:    false,
			NextCursor: "cursor-1",
		},
	}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, []string{"ext-txn-1"}).Return(map[string]domain.LedgerEntry{}, nil)
	categorySvc.On("ResolveFeedCategory", mock.Anything, "FOOD_AND_DRINK_COFFEE", testUserID).Return(unknownCategory(), nil)

	var plan portsrepo.SyncPagePlan
	entryRepo.On("CommitSyncPage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		plan = args.Get(1).(portsrepo.SyncPagePlan)
	}).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-1", mock.Anything).Return(nil)

	result, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	require.Len(t, plan.Inserts, 1)
	assert.True(t, plan.Inserts[0].Amount.IsZero())
	assert.False(t, plan.Inserts[0].IsIncome)
	assert.Empty(t, plan.BalanceChanges)
	accountRepo.AssertCalled(t, "SaveSyncCursor", mock.Anything, testItemID, "cursor-1", mock.Anything)
}

// A record whose only change is its classification still lands as an update,
// and moves no money.
func TestSyncItemReclassificationOnlyUpdatesEntry(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Modified:   []bankfeed.Transaction{feedTxn("ext-txn-1", "ext-acc-1", "42.50")},
			HasMore:    false,
			NextCursor: "cursor-1",
		},
	}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	externalID := "ext-txn-1"
	oldCategoryID := "cat-old"
	prior := domain.LedgerEntry{
		EntryID:         "entry-1",
		AccountID:       testAccountID,
		OwnerID:         testUserID,
		Amount:          decimal.RequireFromString("42.50"),
		IsIncome:        false,
		CategoryID:      &oldCategoryID,
		Name:            "Feed record",
		CurrencyCode:    "USD",
		ExternalID:      &externalID,
		CanDelete:       false,
		IsActive:        true,
		TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, []string{"ext-txn-1"}).Return(map[string]domain.LedgerEntry{"ext-txn-1": prior}, nil)
	categorySvc.On("ResolveFeedCategory", mock.Anything, "FOOD_AND_DRINK_COFFEE", testUserID).Return(unknownCategory(), nil)

	var plan portsrepo.SyncPagePlan
	entryRepo.On("CommitSyncPage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		plan = args.Get(1).(portsrepo.SyncPagePlan)
	}).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-1", mock.Anything).Return(nil)

	result, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Modified)
	require.Len(t, plan.Updates, 1)
	require.NotNil(t, plan.Updates[0].CategoryID)
	assert.Equal(t, "cat-1", *plan.Updates[0].CategoryID)
	assert.Empty(t, plan.BalanceChanges)
}

// Removed records deactivate the local entry and give the money back.
func TestSyncItemRemovalReversesBalance(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Removed:    []bankfeed.RemovedTransaction{{TransactionID: "ext-txn-1"}},
			HasMore:    false,
			NextCursor: "cursor-3",
		},
	}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	externalID := "ext-txn-1"
	prior := domain.LedgerEntry{
		EntryID:    "entry-1",
		AccountID:  testAccountID,
		OwnerID:    testUserID,
		Amount:     decimal.RequireFromString("25.00"),
		IsIncome:   false,
		ExternalID: &externalID,
		CanDelete:  false,
		IsActive:   true,
	}

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, []string{"ext-txn-1"}).Return(map[string]domain.LedgerEntry{"ext-txn-1": prior}, nil)

	var plan portsrepo.SyncPagePlan
	entryRepo.On("CommitSyncPage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		plan = args.Get(1).(portsrepo.SyncPagePlan)
	}).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-3", mock.Anything).Return(nil)

	result, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, []string{"entry-1"}, plan.DeactivateIDs)
	assert.True(t, plan.BalanceChanges[testAccountID].Equal(decimal.RequireFromString("25.00")))
}

// A record for an account that was never linked locally fails the whole page
// and leaves the cursor untouched.
func TestSyncItemUnmappedAccountFailsPage(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Added: []bankfeed.Transaction{
				feedTxn("ext-txn-1", "ext-acc-1", "10.00"),
				feedTxn("ext-txn-2", "ext-acc-unknown", "20.00"),
			},
			HasMore:    false,
			NextCursor: "cursor-4",
		},
	}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, mock.Anything).Return(map[string]domain.LedgerEntry{}, nil)
	categorySvc.On("ResolveFeedCategory", mock.Anything, "FOOD_AND_DRINK_COFFEE", testUserID).Return(unknownCategory(), nil)

	_, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	entryRepo.AssertNotCalled(t, "CommitSyncPage", mock.Anything, mock.Anything)
	accountRepo.AssertNotCalled(t, "SaveSyncCursor", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// A feed failure aborts the run before anything is written.
func TestSyncItemFeedErrorAbortsRun(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pageErr: errors.New("connection reset")}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)

	_, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.Error(t, err)
	accountRepo.AssertNotCalled(t, "SaveSyncCursor", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Multi-page runs persist each page's cursor before fetching the next.
func TestSyncItemPaginatesUntilHasMoreFalse(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Added:      []bankfeed.Transaction{feedTxn("ext-txn-1", "ext-acc-1", "10.00")},
			HasMore:    true,
			NextCursor: "cursor-a",
		},
		{
			Added:      []bankfeed.Transaction{feedTxn("ext-txn-2", "ext-acc-1", "-5.00")},
			HasMore:    false,
			NextCursor: "cursor-b",
		},
	}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, mock.Anything).Return(map[string]domain.LedgerEntry{}, nil)
	categorySvc.On("ResolveFeedCategory", mock.Anything, "FOOD_AND_DRINK_COFFEE", testUserID).Return(unknownCategory(), nil)
	entryRepo.On("CommitSyncPage", mock.Anything, mock.Anything).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-a", mock.Anything).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-b", mock.Anything).Return(nil)

	result, err := svc.SyncItem(context.Background(), testItemID, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, "cursor-b", result.NextCursor)

	// The second fetch resumed from the first page's cursor.
	require.Len(t, feed.cursors, 2)
	assert.Nil(t, feed.cursors[0])
	require.NotNil(t, feed.cursors[1])
	assert.Equal(t, "cursor-a", *feed.cursors[1])
}

// ctxSensitiveFeedClient fails a fetch when its context is already done.
type ctxSensitiveFeedClient struct {
	stubFeedClient
}

func (f *ctxSensitiveFeedClient) SyncTransactions(ctx context.Context, accessToken string, cursor *string) (*bankfeed.SyncResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.stubFeedClient.SyncTransactions(ctx, accessToken, cursor)
}

// A caller that disconnects after starting the run must not fail the shared
// run for whoever coalesced onto it; the reconciliation finishes on its own
// clock.
func TestSyncItemSurvivesCallerCancellation(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	feed := &ctxSensitiveFeedClient{stubFeedClient: stubFeedClient{pages: []*bankfeed.SyncResponse{
		{
			Added:      []bankfeed.Transaction{feedTxn("ext-txn-1", "ext-acc-1", "10.00")},
			HasMore:    false,
			NextCursor: "cursor-1",
		},
	}}}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{linkedAccount()}, nil)
	accountRepo.On("GetSyncCursor", mock.Anything, testItemID).Return(nil, nil)
	entryRepo.On("FindEntriesByExternalIDs", mock.Anything, mock.Anything).Return(map[string]domain.LedgerEntry{}, nil)
	categorySvc.On("ResolveFeedCategory", mock.Anything, "FOOD_AND_DRINK_COFFEE", testUserID).Return(unknownCategory(), nil)
	entryRepo.On("CommitSyncPage", mock.Anything, mock.Anything).Return(nil)
	accountRepo.On("SaveSyncCursor", mock.Anything, testItemID, "cursor-1", mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.SyncItem(ctx, testItemID, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
}

func TestSyncItemRejectsForeignItem(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, &stubFeedClient{}, nil)

	foreign := linkedAccount()
	foreign.OwnerID = "someone-else"
	accountRepo.On("FindAccountsByItemID", mock.Anything, testItemID).Return([]domain.Account{foreign}, nil)

	_, err := svc.SyncItem(context.Background(), testItemID, testUserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestLinkAccountsImportsItemAccounts(t *testing.T) {
	accountRepo, entryRepo, categorySvc := newSyncMocks(t)
	available := decimal.RequireFromString("900.00")
	feed := &stubFeedClient{
		exchange: &bankfeed.ExchangeResponse{AccessToken: "access-token-1", ItemID: testItemID},
		accounts: &bankfeed.AccountsResponse{
			Accounts: []bankfeed.FeedAccount{
				{
					AccountID:    "ext-acc-1",
					Name:         "Everyday Checking",
					OfficialName: "Everyday Checking Account",
					Mask:         "1234",
					Type:         "depository",
					Subtype:      "checking",
					Balances: bankfeed.AccountBalances{
						Available:       &available,
						Current:         decimal.RequireFromString("1000.00"),
						ISOCurrencyCode: "USD",
					},
				},
				{
					AccountID: "ext-acc-2",
					Name:      "Travel Card",
					Type:      "credit",
					Subtype:   "credit card",
					Balances: bankfeed.AccountBalances{
						Current:         decimal.RequireFromString("-250.00"),
						ISOCurrencyCode: "USD",
					},
				},
			},
		},
	}
	svc := services.NewSyncService(accountRepo, entryRepo, categorySvc, feed, nil)

	var upserted []domain.Account
	accountRepo.On("UpsertLinkedAccount", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		upserted = append(upserted, args.Get(1).(domain.Account))
	}).Return(&domain.Account{OwnerID: testUserID}, true, nil)

	resp, err := svc.LinkAccounts(context.Background(), dto.LinkAccountsRequest{PublicToken: "public-token"}, testUserID)

	require.NoError(t, err)
	assert.Equal(t, testItemID, resp.ItemID)
	assert.Equal(t, 2, resp.ImportedCount)
	require.Len(t, upserted, 2)

	checking := upserted[0]
	assert.Equal(t, domain.Checking, checking.Kind)
	assert.Equal(t, "****1234", checking.AccountNumber)
	assert.True(t, checking.CurrentBalance.Equal(decimal.RequireFromString("1000.00")))
	assert.Equal(t, testItemID, checking.ExternalItemID)
	assert.Equal(t, "access-token-1", checking.AccessToken)
	assert.False(t, checking.IsInternal)

	assert.Equal(t, domain.CreditCard, upserted[1].Kind)
}
