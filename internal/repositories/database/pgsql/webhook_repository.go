package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
)

type PgxWebhookRepository struct {
	BaseRepository
}

// newPgxWebhookRepository creates a new repository for webhook delivery audit records.
func newPgxWebhookRepository(pool *pgxpool.Pool) portsrepo.WebhookRepository {
	return &PgxWebhookRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WebhookRepository = (*PgxWebhookRepository)(nil)

// SaveEvent inserts the event. Duplicate delivery IDs from upstream retries
// are swallowed by the unique index; the return value reports whether this
// delivery was seen for the first time.
func (r *PgxWebhookRepository) SaveEvent(ctx context.Context, event domain.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, delivery_id, webhook_type, webhook_code, item_id, environment, status, error, received_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (delivery_id) DO NOTHING;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		event.EventID,
		event.DeliveryID,
		event.WebhookType,
		event.WebhookCode,
		event.ItemID,
		event.Environment,
		string(event.Status),
		event.Error,
		event.ReceivedAt,
		event.ProcessedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save webhook event %s: %w", event.EventID, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// MarkEventProcessed records the terminal status of a delivery.
func (r *PgxWebhookRepository) MarkEventProcessed(ctx context.Context, eventID string, status domain.WebhookEventStatus, errMsg string, processedAt time.Time) error {
	query := `
		UPDATE webhook_events
		SET status = $2, error = $3, processed_at = $4
		WHERE event_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, eventID, string(status), errMsg, processedAt)
	if err != nil {
		return fmt.Errorf("failed to mark webhook event %s processed: %w", eventID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
