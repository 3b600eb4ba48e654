package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	portssvc "github.com/fintrackhq/fintrack-backend/internal/core/ports/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
	"github.com/fintrackhq/fintrack-backend/internal/metrics"
	"github.com/fintrackhq/fintrack-backend/internal/middleware"
)

type webhookService struct {
	webhookRepo portsrepo.WebhookRepository
	syncSvc     portssvc.SyncSvcFacade
	baseLogger  *slog.Logger

	// syncTimeout bounds the background reconciliation kicked off per delivery.
	syncTimeout time.Duration
}

// NewWebhookService creates the webhook intake service. baseLogger is used
// for the background sync goroutines, which outlive the request context.
func NewWebhookService(webhookRepo portsrepo.WebhookRepository, syncSvc portssvc.SyncSvcFacade, baseLogger *slog.Logger) portssvc.WebhookSvcFacade {
	return &webhookService{
		webhookRepo: webhookRepo,
		syncSvc:     syncSvc,
		baseLogger:  baseLogger,
		syncTimeout: 5 * time.Minute,
	}
}

var _ portssvc.WebhookSvcFacade = (*webhookService)(nil)

// transactionCodes are the webhook codes that carry new transaction data and
// therefore warrant a sync run.
var transactionCodes = map[string]bool{
	"SYNC_UPDATES_AVAILABLE": true,
	"DEFAULT_UPDATE":         true,
	"INITIAL_UPDATE":         true,
	"HISTORICAL_UPDATE":      true,
	"TRANSACTIONS_REMOVED":   true,
}

// HandleDelivery persists the delivery audit record and, for transaction
// update codes, triggers an item sync in the background. The caller always
// acks upstream regardless of what happens here.
func (s *webhookService) HandleDelivery(ctx context.Context, payload dto.WebhookPayload, deliveryID string) (*domain.WebhookEvent, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	metrics.WebhooksReceived.WithLabelValues(payload.WebhookCode).Inc()

	event := domain.WebhookEvent{
		EventID:     uuid.NewString(),
		DeliveryID:  deliveryID,
		WebhookType: payload.WebhookType,
		WebhookCode: payload.WebhookCode,
		ItemID:      payload.ItemID,
		Environment: payload.Environment,
		Status:      domain.WebhookReceived,
		ReceivedAt:  time.Now(),
	}

	inserted, err := s.webhookRepo.SaveEvent(ctx, event)
	if err != nil {
		logger.Error("Failed to persist webhook event", slog.String("error", err.Error()), slog.String("delivery_id", deliveryID))
		return nil, false, err
	}
	if !inserted {
		logger.Info("Duplicate webhook delivery skipped", slog.String("delivery_id", deliveryID))
		return &event, true, nil
	}

	if payload.WebhookType == "TRANSACTIONS" && transactionCodes[payload.WebhookCode] {
		go s.processInBackground(event)
	} else {
		s.finish(ctx, event.EventID, domain.WebhookDone, "")
	}

	return &event, false, nil
}

// processInBackground runs the item sync detached from the request.
func (s *webhookService) processInBackground(event domain.WebhookEvent) {
	logger := s.baseLogger.With(
		slog.String("event_id", event.EventID),
		slog.String("item_id", event.ItemID),
		slog.String("webhook_code", event.WebhookCode),
	)
	ctx, cancel := context.WithTimeout(middleware.ContextWithLogger(context.Background(), logger), s.syncTimeout)
	defer cancel()

	// Empty user: the sync acts as the linked accounts' owner.
	if _, err := s.syncSvc.SyncItem(ctx, event.ItemID, ""); err != nil {
		logger.Error("Webhook-triggered sync failed", slog.String("error", err.Error()))
		s.finish(ctx, event.EventID, domain.WebhookError, err.Error())
		return
	}

	s.finish(ctx, event.EventID, domain.WebhookDone, "")
}

func (s *webhookService) finish(ctx context.Context, eventID string, status domain.WebhookEventStatus, errMsg string) {
	if err := s.webhookRepo.MarkEventProcessed(ctx, eventID, status, errMsg, time.Now()); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to update webhook event status", slog.String("error", err.Error()), slog.String("event_id", eventID))
	}
}
