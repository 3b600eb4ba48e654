package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a manual account.
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	Kind           domain.AccountKind `json:"kind" binding:"required,oneof=CHECKING SAVINGS CREDIT_CARD LOAN INVESTMENT"`
	CurrencyCode   string             `json:"currencyCode" binding:"required"`
	AccountNumber  string             `json:"accountNumber"`
	OpeningBalance decimal.Decimal    `json:"openingBalance"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name          *string `json:"name"`
	AccountNumber *string `json:"accountNumber"`
	IsActive      *bool   `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID        string             `json:"accountID"`
	Name             string             `json:"name"`
	OfficialName     string             `json:"officialName,omitempty"`
	Kind             domain.AccountKind `json:"kind"`
	AccountNumber    string             `json:"accountNumber,omitempty"`
	CurrencyCode     string             `json:"currencyCode"`
	CurrentBalance   decimal.Decimal    `json:"currentBalance"`
	AvailableBalance *decimal.Decimal   `json:"availableBalance,omitempty"`
	IsActive         bool               `json:"isActive"`
	IsInternal       bool               `json:"isInternal"`
	ExternalItemID   string             `json:"externalItemID,omitempty"`
	LastSyncedAt     *time.Time         `json:"lastSyncedAt,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	LastUpdatedAt    time.Time          `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        acc.AccountID,
		Name:             acc.Name,
		OfficialName:     acc.OfficialName,
		Kind:             acc.Kind,
		AccountNumber:    acc.AccountNumber,
		CurrencyCode:     acc.CurrencyCode,
		CurrentBalance:   acc.CurrentBalance,
		AvailableBalance: acc.AvailableBalance,
		IsActive:         acc.IsActive,
		IsInternal:       acc.IsInternal,
		ExternalItemID:   acc.ExternalItemID,
		LastSyncedAt:     acc.LastSyncedAt,
		CreatedAt:        acc.CreatedAt,
		LastUpdatedAt:    acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
