package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the DB representation of a single financial movement.
// Amount is a non-negative magnitude; is_income carries the direction.
type LedgerEntry struct {
	EntryID         string          `db:"entry_id"`
	AccountID       string          `db:"account_id"`
	OwnerID         string          `db:"owner_id"`
	Amount          decimal.Decimal `db:"amount"`
	IsIncome        bool            `db:"is_income"`
	CategoryID      *string         `db:"category_id"`
	Name            string          `db:"name"`
	MerchantName    string          `db:"merchant_name"`
	CurrencyCode    string          `db:"currency_code"`
	Note            string          `db:"note"`
	Location        string          `db:"location"`
	Latitude        *float64        `db:"latitude"`
	Longitude       *float64        `db:"longitude"`
	Repeat          string          `db:"repeat"`
	ExternalID      *string         `db:"external_id"`
	CanDelete       bool            `db:"can_delete"`
	IsActive        bool            `db:"is_active"`
	TransactionDate time.Time       `db:"transaction_date"`
	AuditFields
}
