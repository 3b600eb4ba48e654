package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind mirrors domain.AccountKind for DB storage.
type AccountKind string

// Account is the DB representation of a money container.
type Account struct {
	AccountID         string           `db:"account_id"`
	OwnerID           string           `db:"owner_id"`
	Name              string           `db:"name"`
	OfficialName      string           `db:"official_name"`
	Kind              AccountKind      `db:"kind"`
	AccountNumber     string           `db:"account_number"`
	CurrencyCode      string           `db:"currency_code"`
	CurrentBalance    decimal.Decimal  `db:"current_balance"`
	AvailableBalance  *decimal.Decimal `db:"available_balance"`
	IsActive          bool             `db:"is_active"`
	IsInternal        bool             `db:"is_internal"`
	ExternalAccountID string           `db:"external_account_id"`
	ExternalItemID    string           `db:"external_item_id"`
	AccessToken       string           `db:"access_token"`
	SyncCursor        *string          `db:"sync_cursor"`
	LastSyncedAt      *time.Time       `db:"last_synced_at"`
	AuditFields
}
