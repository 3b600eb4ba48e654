package domain

import "time"

// WebhookEventStatus tracks the processing state of a received webhook.
type WebhookEventStatus string

const (
	WebhookReceived WebhookEventStatus = "received"
	WebhookDone     WebhookEventStatus = "done"
	WebhookError    WebhookEventStatus = "error"
)

// WebhookEvent is an idempotent audit record of one webhook delivery from the
// external aggregation service. DeliveryID deduplicates upstream retries.
type WebhookEvent struct {
	EventID     string             `json:"eventID"`
	DeliveryID  string             `json:"deliveryID"`
	WebhookType string             `json:"webhookType"`
	WebhookCode string             `json:"webhookCode"`
	ItemID      string             `json:"itemID"`
	Environment string             `json:"environment,omitempty"`
	Status      WebhookEventStatus `json:"status"`
	Error       string             `json:"error,omitempty"`
	ReceivedAt  time.Time          `json:"receivedAt"`
	ProcessedAt *time.Time         `json:"processedAt,omitempty"`
}
