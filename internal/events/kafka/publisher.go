package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Topic carrying ledger mutation events for downstream consumers.
const LedgerEventsTopic = "ledger_events"

// LedgerEvent describes one committed ledger mutation.
type LedgerEvent struct {
	Type       string          `json:"type"` // entry_created, entry_updated, entry_deleted, sync_completed
	EntryID    string          `json:"entryID,omitempty"`
	AccountID  string          `json:"accountID,omitempty"`
	OwnerID    string          `json:"ownerID,omitempty"`
	ItemID     string          `json:"itemID,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	IsIncome   bool            `json:"isIncome"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Publisher emits ledger events to Kafka. A nil Publisher is valid and drops
// events, so brokers can be left unconfigured in development.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    LedgerEventsTopic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish writes one event, keyed by account so per-account ordering holds.
func (p *Publisher) Publish(ctx context.Context, event LedgerEvent) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AccountID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
