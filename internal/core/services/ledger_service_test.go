package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	"github.com/fintrackhq/fintrack-backend/internal/core/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
)

const (
	testUserID    = "user-1"
	testAccountID = "acc-1"
)

func activeAccount(id, owner string) *domain.Account {
	return &domain.Account{
		AccountID:      id,
		OwnerID:        owner,
		Name:           "Everyday Checking",
		Kind:           domain.Checking,
		CurrencyCode:   "USD",
		CurrentBalance: decimal.RequireFromString("1000.00"),
		IsActive:       true,
		IsInternal:     true,
	}
}

func userEntry(id, accountID string, amount string, isIncome bool) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		EntryID:         id,
		AccountID:       accountID,
		OwnerID:         testUserID,
		Amount:          decimal.RequireFromString(amount),
		IsIncome:        isIncome,
		Name:            "Test entry",
		CanDelete:       true,
		IsActive:        true,
		TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateEntryAppliesSignedDelta(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		isIncome  bool
		wantDelta string
	}{
		{name: "income credits the account", amount: "500.00", isIncome: true, wantDelta: "500.00"},
		{name: "expense debits the account", amount: "42.50", isIncome: false, wantDelta: "-42.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entryRepo := new(MockEntryRepository)
			accountRepo := new(MockAccountRepository)
			categorySvc := new(MockCategoryService)
			svc := services.NewLedgerService(entryRepo, accountRepo, categorySvc, nil)

			accountRepo.On("FindAccountByID", mock.Anything, testAccountID).Return(activeAccount(testAccountID, testUserID), nil)
			entryRepo.On("SaveEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
				return e.AccountID == testAccountID && e.CanDelete && e.IsActive
			}), mock.MatchedBy(func(d decimal.Decimal) bool {
				return d.Equal(decimal.RequireFromString(tt.wantDelta))
			})).Return(nil)

			entry, err := svc.CreateEntry(context.Background(), dto.CreateTransactionRequest{
				Amount:          decimal.RequireFromString(tt.amount),
				IsIncome:        tt.isIncome,
				Name:            "Test entry",
				TransactionDate: time.Now(),
				AccountID:       testAccountID,
			}, testUserID)

			require.NoError(t, err)
			assert.True(t, entry.Amount.Equal(decimal.RequireFromString(tt.amount)))
			assert.Equal(t, tt.isIncome, entry.IsIncome)
			entryRepo.AssertExpectations(t)
		})
	}
}

func TestCreateEntryRejectsNonPositiveAmount(t *testing.T) {
	svc := services.NewLedgerService(new(MockEntryRepository), new(MockAccountRepository), new(MockCategoryService), nil)

	_, err := svc.CreateEntry(context.Background(), dto.CreateTransactionRequest{
		Amount:          decimal.Zero,
		Name:            "zero",
		TransactionDate: time.Now(),
		AccountID:       testAccountID,
	}, testUserID)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateEntryRejectsInactiveAccount(t *testing.T) {
	entryRepo := new(MockEntryRepository)
	accountRepo := new(MockAccountRepository)
	svc := services.NewLedgerService(entryRepo, accountRepo, new(MockCategoryService), nil)

	inactive := activeAccount(testAccountID, testUserID)
	inactive.IsActive = false
	accountRepo.On("FindAccountByID", mock.Anything, testAccountID).Return(inactive, nil)

	_, err := svc.CreateEntry(context.Background(), dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("10.00"),
		Name:            "test",
		TransactionDate: time.Now(),
		AccountID:       testAccountID,
	}, testUserID)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	entryRepo.AssertNotCalled(t, "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateEntryRejectsForeignAccount(t *testing.T) {
	accountRepo := new(MockAccountRepository)
	svc := services.NewLedgerService(new(MockEntryRepository), accountRepo, new(MockCategoryService), nil)

	accountRepo.On("FindAccountByID", mock.Anything, testAccountID).Return(activeAccount(testAccountID, "someone-else"), nil)

	_, err := svc.CreateEntry(context.Background(), dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("10.00"),
		Name:            "test",
		TransactionDate: time.Now(),
		AccountID:       testAccountID,
	}, testUserID)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// Walks an entry through its whole lifecycle and checks the net balance
// adjustments sum to zero: +500 on create, -700 when the income becomes a
// 200 expense, +200 on delete.
func TestEntryLifecycleBalanceAdjustments(t *testing.T) {
	entryRepo := new(MockEntryRepository)
	accountRepo := new(MockAccountRepository)
	categorySvc := new(MockCategoryService)
	svc := services.NewLedgerService(entryRepo, accountRepo, categorySvc, nil)

	accountRepo.On("FindAccountByID", mock.Anything, testAccountID).Return(activeAccount(testAccountID, testUserID), nil)

	var savedDelta decimal.Decimal
	entryRepo.On("SaveEntry", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedDelta = args.Get(2).(decimal.Decimal)
	}).Return(nil)

	created, err := svc.CreateEntry(context.Background(), dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("500.00"),
		IsIncome:        true,
		Name:            "Paycheck",
		TransactionDate: time.Now(),
		AccountID:       testAccountID,
	}, testUserID)
	require.NoError(t, err)
	assert.True(t, savedDelta.Equal(decimal.RequireFromString("500.00")))

	// Edit: the 500 income becomes a 200 expense; adjustment is -700.
	entryRepo.On("FindEntryByID", mock.Anything, created.EntryID).Return(created, nil).Once()
	var updateChanges map[string]decimal.Decimal
	entryRepo.On("UpdateEntry", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		updateChanges = args.Get(2).(map[string]decimal.Decimal)
	}).Return(nil)

	newAmount := decimal.RequireFromString("200.00")
	notIncome := false
	updated, err := svc.UpdateEntry(context.Background(), created.EntryID, dto.UpdateTransactionRequest{
		Amount:   &newAmount,
		IsIncome: &notIncome,
	}, testUserID)
	require.NoError(t, err)
	require.Len(t, updateChanges, 1)
	assert.True(t, updateChanges[testAccountID].Equal(decimal.RequireFromString("-700.00")))

	// Delete: the 200 expense is reversed with +200.
	entryRepo.On("FindEntryByID", mock.Anything, created.EntryID).Return(updated, nil).Once()
	var reversal decimal.Decimal
	entryRepo.On("DeactivateEntry", mock.Anything, mock.Anything, mock.Anything, testUserID, mock.Anything).Run(func(args mock.Arguments) {
		reversal = args.Get(2).(decimal.Decimal)
	}).Return(nil)

	require.NoError(t, svc.DeleteEntry(context.Background(), created.EntryID, testUserID))
	assert.True(t, reversal.Equal(decimal.RequireFromString("200.00")))

	// Net effect over the lifecycle is zero.
	net := savedDelta.Add(updateChanges[testAccountID]).Add(reversal)
	assert.True(t, net.IsZero())
}

func TestUpdateEntryAccountMoveAdjustsBothAccounts(t *testing.T) {
	entryRepo := new(MockEntryRepository)
	accountRepo := new(MockAccountRepository)
	svc := services.NewLedgerService(entryRepo, accountRepo, new(MockCategoryService), nil)

	entry := userEntry("entry-1", testAccountID, "75.00", false)
	entryRepo.On("FindEntryByID", mock.Anything, "entry-1").Return(entry, nil)
	accountRepo.On("FindAccountByID", mock.Anything, "acc-2").Return(activeAccount("acc-2", testUserID), nil)

	var changes map[string]decimal.Decimal
	entryRepo.On("UpdateEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.AccountID == "acc-2"
	}), mock.Anything).Run(func(args mock.Arguments) {
		changes = args.Get(2).(map[string]decimal.Decimal)
	}).Return(nil)

	newAccount := "acc-2"
	_, err := svc.UpdateEntry(context.Background(), "entry-1", dto.UpdateTransactionRequest{
		AccountID: &newAccount,
	}, testUserID)

	require.NoError(t, err)
	require.Len(t, changes, 2)
	// The 75 expense leaves the old account (+75 back) and lands on the new one (-75).
	assert.True(t, changes[testAccountID].Equal(decimal.RequireFromString("75.00")))
	assert.True(t, changes["acc-2"].Equal(decimal.RequireFromString("-75.00")))
}

func TestUpdateEntryRejectsFinancialEditsOnSyncedEntries(t *testing.T) {
	entryRepo := new(MockEntryRepository)
	svc := services.NewLedgerService(entryRepo, new(MockAccountRepository), new(MockCategoryService), nil)

	synced := userEntry("entry-sync", testAccountID, "30.00", false)
	synced.CanDelete = false
	entryRepo.On("FindEntryByID", mock.Anything, "entry-sync").Return(synced, nil)

	newAccount := "acc-2"
	_, err := svc.UpdateEntry(context.Background(), "entry-sync", dto.UpdateTransactionRequest{AccountID: &newAccount}, testUserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	newAmount := decimal.RequireFromString("99.00")
	_, err = svc.UpdateEntry(context.Background(), "entry-sync", dto.UpdateTransactionRequest{Amount: &newAmount}, testUserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Metadata edits stay allowed.
	note := "groceries for the trip"
	entryRepo.On("UpdateEntry", mock.Anything, mock.Anything, mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[testAccountID].IsZero()
	})).Return(nil)
	updated, err := svc.UpdateEntry(context.Background(), "entry-sync", dto.UpdateTransactionRequest{Note: &note}, testUserID)
	require.NoError(t, err)
	assert.Equal(t, note, updated.Note)
}

func TestDeleteEntryRejectsSyncedEntries(t *testing.T) {
	entryRepo := new(MockEntryRepository)
	svc := services.NewLedgerService(entryRepo, new(MockAccountRepository), new(MockCategoryService), nil)

	synced := userEntry("entry-sync", testAccountID, "30.00", false)
	synced.CanDelete = false
	entryRepo.On("FindEntryByID", mock.Anything, "entry-sync").Return(synced, nil)

	err := svc.DeleteEntry(context.Background(), "entry-sync", testUserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	entryRepo.AssertNotCalled(t, "DeactivateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteEntryRejectsAlreadyDeleted(t *testing.T) {
	entryRepo := new(MockEntryRepository)
	svc := services.NewLedgerService(entryRepo, new(MockAccountRepository), new(MockCategoryService), nil)

	deleted := userEntry("entry-gone", testAccountID, "30.00", false)
	deleted.IsActive = false
	entryRepo.On("FindEntryByID", mock.Anything, "entry-gone").Return(deleted, nil)

	err := svc.DeleteEntry(context.Background(), "entry-gone", testUserID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGetEntryByIDRejectsForeignEntry(t *testing.T) {
	entryRepo := new(MockEntryRepository)
	svc := services.NewLedgerService(entryRepo, new(MockAccountRepository), new(MockCategoryService), nil)

	foreign := userEntry("entry-2", testAccountID, "10.00", false)
	foreign.OwnerID = "someone-else"
	entryRepo.On("FindEntryByID", mock.Anything, "entry-2").Return(foreign, nil)

	_, err := svc.GetEntryByID(context.Background(), "entry-2", testUserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
