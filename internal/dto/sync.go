package dto

import (
	"time"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// WebhookPayload is the inbound webhook body from the aggregation service.
type WebhookPayload struct {
	WebhookType string `json:"webhook_type" binding:"required"`
	WebhookCode string `json:"webhook_code" binding:"required"`
	ItemID      string `json:"item_id" binding:"required"`
	Environment string `json:"environment"`
}

// WebhookAck is returned to the aggregation service; always success-shaped.
type WebhookAck struct {
	OK      bool   `json:"ok"`
	EventID string `json:"id,omitempty"`
	Note    string `json:"note,omitempty"`
}

// LinkAccountsRequest exchanges a one-time public token for an item link and
// imports the item's accounts.
type LinkAccountsRequest struct {
	PublicToken     string `json:"public_token" binding:"required"`
	InstitutionName string `json:"institution_name"`
}

// LinkAccountsResponse reports the imported accounts.
type LinkAccountsResponse struct {
	ItemID        string            `json:"itemID"`
	ImportedCount int               `json:"importedCount"`
	Accounts      []AccountResponse `json:"accounts"`
}

// SyncResultResponse reports the outcome of a reconciliation run.
type SyncResultResponse struct {
	ItemID   string    `json:"itemID"`
	Added    int       `json:"added"`
	Modified int       `json:"modified"`
	Removed  int       `json:"removed"`
	Pages    int       `json:"pages"`
	SyncedAt time.Time `json:"syncedAt"`
}

// ToSyncResultResponse converts a domain.SyncResult to its response DTO.
func ToSyncResultResponse(r *domain.SyncResult) SyncResultResponse {
	return SyncResultResponse{
		ItemID:   r.ItemID,
		Added:    r.Added,
		Modified: r.Modified,
		Removed:  r.Removed,
		Pages:    r.Pages,
		SyncedAt: r.SyncedAt,
	}
}
