package models

import "time"

// WebhookEvent is the DB representation of one webhook delivery.
type WebhookEvent struct {
	EventID     string     `db:"event_id"`
	DeliveryID  string     `db:"delivery_id"`
	WebhookType string     `db:"webhook_type"`
	WebhookCode string     `db:"webhook_code"`
	ItemID      string     `db:"item_id"`
	Environment string     `db:"environment"`
	Status      string     `db:"status"`
	Error       string     `db:"error"`
	ReceivedAt  time.Time  `db:"received_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
