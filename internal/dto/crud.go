package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// ListParams holds common offset pagination parameters.
type ListParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// CreateBillRequest defines the data needed to create a bill.
type CreateBillRequest struct {
	Title    string            `json:"title" binding:"required"`
	Amount   decimal.Decimal   `json:"amount" binding:"required"`
	Repeat   domain.BillRepeat `json:"repeat" binding:"required,oneof=ONE_TIME_ONLY WEEKLY MONTHLY EVERY_SIX_MONTHS YEARLY"`
	Category string            `json:"category"`
	DueDate  *time.Time        `json:"dueDate"`
}

// UpdateBillRequest defines mutable bill fields.
type UpdateBillRequest struct {
	Title        *string            `json:"title"`
	Amount       *decimal.Decimal   `json:"amount"`
	Repeat       *domain.BillRepeat `json:"repeat"`
	Category     *string            `json:"category"`
	Cancelled    *bool              `json:"cancelled"`
	DueDate      *time.Time         `json:"dueDate"`
	LastPaidDate *time.Time         `json:"lastPaidDate"`
}

// CreateGoalRequest defines the data needed to create a goal.
type CreateGoalRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     *time.Time      `json:"dueDate"`
}

// UpdateGoalRequest defines mutable goal fields.
type UpdateGoalRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	SavedAmount *decimal.Decimal `json:"savedAmount"`
	DueDate     *time.Time       `json:"dueDate"`
	IsCompleted *bool            `json:"isCompleted"`
}

// CreateBudgetRequest defines the data needed to create a budget.
type CreateBudgetRequest struct {
	Title  string          `json:"title" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

// UpdateBudgetRequest defines mutable budget fields.
type UpdateBudgetRequest struct {
	Title  *string          `json:"title"`
	Amount *decimal.Decimal `json:"amount"`
	Note   *string          `json:"note"`
}
