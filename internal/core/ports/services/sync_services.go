package services

import (
	"context"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
)

// SyncSvcFacade reconciles external bank-feed data into the local ledger.
type SyncSvcFacade interface {
	// LinkAccounts exchanges a public token for item credentials and imports
	// the item's accounts for the user.
	LinkAccounts(ctx context.Context, req dto.LinkAccountsRequest, userID string) (*dto.LinkAccountsResponse, error)

	// SyncItem runs the paginated reconciliation loop for one external item.
	// Concurrent calls for the same item coalesce into a single run.
	SyncItem(ctx context.Context, itemID string, userID string) (*domain.SyncResult, error)
}

// WebhookSvcFacade records and dispatches inbound webhook deliveries.
type WebhookSvcFacade interface {
	// HandleDelivery persists the delivery audit record and, for transaction
	// update codes, triggers a sync in the background. Duplicate deliveries
	// are recognized and skipped. It never returns an error for payloads that
	// were at least recorded; the caller always acks the upstream service.
	HandleDelivery(ctx context.Context, payload dto.WebhookPayload, deliveryID string) (*domain.WebhookEvent, bool, error)
}
