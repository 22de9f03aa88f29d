package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/erp/zidsync/internal/application/sync"
)

// WebhookHandler is the public endpoint platform deliveries land on.
// It always acknowledges: a delivery the service cannot place would
// only be retried into the same failure.
type WebhookHandler struct {
	BaseHandler
	webhooks *appsync.WebhookService
	logger   *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhooks *appsync.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, logger: logger}
}

// webhookAck is the acknowledgement body returned for every delivery
type webhookAck struct {
	Received bool   `json:"received"`
	Note     string `json:"note,omitempty"`
}

// Receive godoc
// @Summary      Receive one platform webhook delivery
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200 {object} webhookAck
// @Router       /zid/webhook/{topic} [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, webhookAck{Received: true, Note: "unreadable body"})
		return
	}

	event := appsync.InboundEvent{
		Event:   c.Param("topic"),
		Payload: body,
	}
	if hdr := c.GetHeader("X-Zid-Event"); hdr != "" {
		event.Event = hdr
	}
	event.StoreID = c.GetHeader("X-Store-Id")
	event.ID = c.GetHeader("X-Event-Id")

	// Ids arrive as strings or numbers depending on the event type.
	var envelope map[string]json.RawMessage
	if json.Unmarshal(body, &envelope) == nil {
		if event.StoreID == "" {
			event.StoreID = rawString(envelope["store_id"])
		}
		if event.ID == "" {
			event.ID = rawString(envelope["id"])
		}
	}
	if event.ID == "" {
		// Without a delivery id, dedupe on the payload itself.
		sum := sha256.Sum256(body)
		event.ID = hex.EncodeToString(sum[:16])
	}

	if err := h.webhooks.HandleEvent(c.Request.Context(), event); err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("event", event.Event),
			zap.String("store_id", event.StoreID),
			zap.Error(err))
		c.JSON(http.StatusOK, webhookAck{Received: true, Note: "processing failed"})
		return
	}
	c.JSON(http.StatusOK, webhookAck{Received: true})
}

// rawString renders a scalar JSON value as a plain string
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// RegisterRoutes registers the public webhook route
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/zid/webhook/:topic", h.Receive)
}
