package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// CreateTransactionRequest defines the data needed to record a ledger entry.
// Either Category (existing ID) or CategoryName (get-or-create) may be given.
type CreateTransactionRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	IsIncome        bool            `json:"isIncome"`
	Name            string          `json:"name" binding:"required"`
	MerchantName    string          `json:"merchantName"`
	CurrencyCode    string          `json:"currencyCode"`
	Note            string          `json:"note"`
	Repeat          string          `json:"repeat"`
	TransactionDate time.Time       `json:"transactionDate" binding:"required"`
	AccountID       string          `json:"account" binding:"required"`
	CategoryID      *string         `json:"category"`
	CategoryName    *string         `json:"categoryName"`
}

// UpdateTransactionRequest defines mutable fields of a ledger entry.
type UpdateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	IsIncome        *bool            `json:"isIncome"`
	Name            *string          `json:"name"`
	MerchantName    *string          `json:"merchantName"`
	Note            *string          `json:"note"`
	Repeat          *string          `json:"repeat"`
	TransactionDate *time.Time       `json:"transactionDate"`
	AccountID       *string          `json:"account"`
	CategoryID      *string          `json:"category"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	EntryID         string          `json:"entryID"`
	AccountID       string          `json:"accountID"`
	Amount          decimal.Decimal `json:"amount"`
	IsIncome        bool            `json:"isIncome"`
	CategoryID      *string         `json:"categoryID,omitempty"`
	Name            string          `json:"name"`
	MerchantName    string          `json:"merchantName,omitempty"`
	CurrencyCode    string          `json:"currencyCode,omitempty"`
	Note            string          `json:"note,omitempty"`
	Location        string          `json:"location,omitempty"`
	Repeat          string          `json:"repeat,omitempty"`
	ExternalID      *string         `json:"externalID,omitempty"`
	CanDelete       bool            `json:"canDelete"`
	IsActive        bool            `json:"isActive"`
	TransactionDate time.Time       `json:"transactionDate"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// ToTransactionResponse converts a domain.LedgerEntry to its response DTO.
func ToTransactionResponse(e *domain.LedgerEntry) TransactionResponse {
	return TransactionResponse{
		EntryID:         e.EntryID,
		AccountID:       e.AccountID,
		Amount:          e.Amount,
		IsIncome:        e.IsIncome,
		CategoryID:      e.CategoryID,
		Name:            e.Name,
		MerchantName:    e.MerchantName,
		CurrencyCode:    e.CurrencyCode,
		Note:            e.Note,
		Location:        e.Location,
		Repeat:          e.Repeat,
		ExternalID:      e.ExternalID,
		CanDelete:       e.CanDelete,
		IsActive:        e.IsActive,
		TransactionDate: e.TransactionDate,
		CreatedAt:       e.CreatedAt,
		LastUpdatedAt:   e.LastUpdatedAt,
	}
}

// ToTransactionResponses converts a slice of entries to response DTOs.
func ToTransactionResponses(entries []domain.LedgerEntry) []TransactionResponse {
	res := make([]TransactionResponse, len(entries))
	for i := range entries {
		res[i] = ToTransactionResponse(&entries[i])
	}
	return res
}

// ListTransactionsParams holds pagination parameters for entry listing.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of entries plus the next page token.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
