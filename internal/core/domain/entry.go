package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a single recorded financial movement affecting one account.
//
// Amount is a non-negative magnitude; direction is carried explicitly by
// IsIncome rather than inferred from sign. ExternalID is set only for entries
// produced by the sync reconciler and is the idempotency key for upserts.
type LedgerEntry struct {
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	OwnerID      string          `json:"ownerID"`
	Amount       decimal.Decimal `json:"amount"` // magnitude, >= 0
	IsIncome     bool            `json:"isIncome"`
	CategoryID   *string         `json:"categoryID,omitempty"`
	Name         string          `json:"name"`
	MerchantName string          `json:"merchantName,omitempty"`
	CurrencyCode string          `json:"currencyCode,omitempty"`
	Note         string          `json:"note,omitempty"`
	Location     string          `json:"location,omitempty"`
	Latitude     *float64        `json:"latitude,omitempty"`
	Longitude    *float64        `json:"longitude,omitempty"`
	Repeat       string          `json:"repeat,omitempty"`

	// ExternalID is the upstream transaction id; unique when present.
	ExternalID *string `json:"externalID,omitempty"`

	// CanDelete is false for sync-origin entries: they are owned by the feed
	// and cannot be deleted or moved between accounts through the API.
	CanDelete bool `json:"canDelete"`

	// IsActive is false once the entry has been removed (by the user or by a
	// feed removal event). Inactive entries no longer contribute to the
	// account balance but are kept for auditability.
	IsActive bool `json:"isActive"`

	TransactionDate time.Time `json:"transactionDate"`
	AuditFields
}
