package domain

import "github.com/shopspring/decimal"

// Budget is a spending envelope for a period or category.
type Budget struct {
	BudgetID string          `json:"budgetID"`
	OwnerID  string          `json:"ownerID"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note,omitempty"`
	AuditFields
}
