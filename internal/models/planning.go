package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is the DB representation of a payable.
type Bill struct {
	BillID       string          `db:"bill_id"`
	OwnerID      string          `db:"owner_id"`
	Title        string          `db:"title"`
	Amount       decimal.Decimal `db:"amount"`
	Repeat       string          `db:"repeat"`
	Category     string          `db:"category"`
	Cancelled    bool            `db:"cancelled"`
	DueDate      *time.Time      `db:"due_date"`
	LastPaidDate *time.Time      `db:"last_paid_date"`
	AuditFields
}

// Goal is the DB representation of a savings target.
type Goal struct {
	GoalID      string          `db:"goal_id"`
	OwnerID     string          `db:"owner_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	SavedAmount decimal.Decimal `db:"saved_amount"`
	DueDate     *time.Time      `db:"due_date"`
	IsCompleted bool            `db:"is_completed"`
	AuditFields
}

// Budget is the DB representation of a spending envelope.
type Budget struct {
	BudgetID string          `db:"budget_id"`
	OwnerID  string          `db:"owner_id"`
	Title    string          `db:"title"`
	Amount   decimal.Decimal `db:"amount"`
	Note     string          `db:"note"`
	AuditFields
}
