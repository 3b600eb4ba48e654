package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind defines the kind of money container an account represents.
type AccountKind string

const (
	Checking   AccountKind = "CHECKING"
	Savings    AccountKind = "SAVINGS"
	CreditCard AccountKind = "CREDIT_CARD"
	Loan       AccountKind = "LOAN"
	Investment AccountKind = "INVESTMENT"
)

// ValidAccountKind reports whether k is one of the enumerated kinds.
func ValidAccountKind(k AccountKind) bool {
	switch k {
	case Checking, Savings, CreditCard, Loan, Investment:
		return true
	}
	return false
}

// Account represents a money container owned by a single user.
//
// CurrentBalance is denormalized: it must always equal the sum of signed
// amounts of all active ledger entries referencing this account, plus the
// opening balance recorded when the account was created or linked. The only
// writer of CurrentBalance after creation is the balance gateway in the
// account repository; entry CRUD and sync never overwrite it directly.
type Account struct {
	AccountID        string           `json:"accountID"`
	OwnerID          string           `json:"ownerID"`
	Name             string           `json:"name"`
	OfficialName     string           `json:"officialName"`
	Kind             AccountKind      `json:"kind"`
	AccountNumber    string           `json:"accountNumber"` // masked, e.g. ****1234
	CurrencyCode     string           `json:"currencyCode"`
	CurrentBalance   decimal.Decimal  `json:"currentBalance"`
	AvailableBalance *decimal.Decimal `json:"availableBalance,omitempty"`
	IsActive         bool             `json:"isActive"`
	IsInternal       bool             `json:"isInternal"` // true for manually created accounts

	// External linkage (nil/empty for internal accounts).
	ExternalAccountID string     `json:"externalAccountID,omitempty"`
	ExternalItemID    string     `json:"externalItemID,omitempty"`
	AccessToken       string     `json:"-"`
	SyncCursor        *string    `json:"-"` // opaque feed resumption token, advanced monotonically
	LastSyncedAt      *time.Time `json:"lastSyncedAt,omitempty"`

	AuditFields
}

// IsLinked reports whether the account belongs to an external aggregation item.
func (a *Account) IsLinked() bool {
	return a.ExternalItemID != ""
}
