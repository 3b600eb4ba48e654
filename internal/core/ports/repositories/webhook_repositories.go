package repositories

import (
	"context"
	"time"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
)

// WebhookRepository defines persistence for webhook delivery audit records.
type WebhookRepository interface {
	// SaveEvent inserts the event; duplicate delivery IDs are ignored.
	// Returns false when the delivery was already recorded.
	SaveEvent(ctx context.Context, event domain.WebhookEvent) (bool, error)

	// MarkEventProcessed records the terminal status of a delivery.
	MarkEventProcessed(ctx context.Context, eventID string, status domain.WebhookEventStatus, errMsg string, processedAt time.Time) error
}
