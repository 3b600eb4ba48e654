package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fintrackhq/fintrack-backend/internal/core/ports/services"
	"github.com/fintrackhq/fintrack-backend/internal/dto"
	"github.com/fintrackhq/fintrack-backend/internal/middleware"
	"github.com/fintrackhq/fintrack-backend/internal/platform/config"
)

// webhookHandler receives deliveries from the external aggregation service.
type webhookHandler struct {
	webhookService portssvc.WebhookSvcFacade
	webhookSecret  string
}

func newWebhookHandler(ws portssvc.WebhookSvcFacade, secret string) *webhookHandler {
	return &webhookHandler{webhookService: ws, webhookSecret: secret}
}

// registerWebhookRoutes registers the public webhook intake route.
func registerWebhookRoutes(r *gin.Engine, cfg *config.Config, webhookService portssvc.WebhookSvcFacade) {
	h := newWebhookHandler(webhookService, cfg.Bankfeed.WebhookSecret)
	r.POST("/webhooks/bankfeed", h.receiveWebhook)
}

// receiveWebhook records the delivery and acks. The upstream service retries
// non-2xx responses, so anything recorded is acked even if processing will
// happen later in the background.
func (h *webhookHandler) receiveWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if h.webhookSecret != "" {
		given := c.GetHeader("Bankfeed-Verification")
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.webhookSecret)) != 1 {
			logger.Warn("Webhook verification failed", slog.String("ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification header"})
			return
		}
	}

	body, err := c.GetRawData()
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable request body"})
		return
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn("Failed to parse webhook payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	if payload.WebhookType == "" || payload.WebhookCode == "" || payload.ItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook_type, webhook_code and item_id are required"})
		return
	}

	// Upstream retries reuse the delivery ID; absent one, the body hash is a
	// stable stand-in so the same retry still deduplicates.
	deliveryID := c.GetHeader("Webhook-Delivery-Id")
	if deliveryID == "" {
		sum := sha256.Sum256(body)
		deliveryID = hex.EncodeToString(sum[:])
	}

	event, duplicate, err := h.webhookService.HandleDelivery(c.Request.Context(), payload, deliveryID)
	if err != nil {
		logger.Error("Failed to record webhook delivery", slog.String("error", err.Error()), slog.String("delivery_id", deliveryID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record delivery"})
		return
	}

	ack := dto.WebhookAck{OK: true, EventID: event.EventID}
	if duplicate {
		ack.Note = "duplicate delivery"
	}
	c.JSON(http.StatusOK, ack)
}
