package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillRepeat enumerates recurrence options for bills.
type BillRepeat string

const (
	BillOneTime       BillRepeat = "ONE_TIME_ONLY"
	BillWeekly        BillRepeat = "WEEKLY"
	BillMonthly       BillRepeat = "MONTHLY"
	BillEverySixMonth BillRepeat = "EVERY_SIX_MONTHS"
	BillYearly        BillRepeat = "YEARLY"
)

// Bill is a recurring or one-off payable tracked by the user.
type Bill struct {
	BillID       string          `json:"billID"`
	OwnerID      string          `json:"ownerID"`
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	Repeat       BillRepeat      `json:"repeat"`
	Category     string          `json:"category,omitempty"`
	Cancelled    bool            `json:"cancelled"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	LastPaidDate *time.Time      `json:"lastPaidDate,omitempty"`
	AuditFields
}
