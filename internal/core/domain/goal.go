package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target the user works toward.
type Goal struct {
	GoalID      string          `json:"goalID"`
	OwnerID     string          `json:"ownerID"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	SavedAmount decimal.Decimal `json:"savedAmount"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	IsCompleted bool            `json:"isCompleted"`
	AuditFields
}
