// Package webhook receives ClickUp webhook deliveries and turns them into
// queued sync runs. The webhook only signals that something changed; the
// reconciliation itself always refetches the full list.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"dealflow_backend/internal/scheduler"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// signatureHeader carries the hex HMAC-SHA256 of the request body.
const signatureHeader = "X-Signature"

type event struct {
	Event  string `json:"event"`
	TaskID string `json:"task_id"`
}

// Handler verifies and processes webhook deliveries.
type Handler struct {
	secret   string
	enqueuer scheduler.SyncEnqueuer
	log      *logger.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(cfg config.WebhookConfig, enqueuer scheduler.SyncEnqueuer, log *logger.Logger) *Handler {
	return &Handler{secret: cfg.GetClickUpWebhookSecret(), enqueuer: enqueuer, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/clickup", h.Receive)
}

func (h *Handler) verify(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *Handler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if h.secret == "" || !h.verify(body, c.GetHeader(signatureHeader)) {
		h.log.Warn("webhook signature rejected", "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var evt event
	if err := json.Unmarshal(body, &evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.enqueuer.EnqueueSync(c.Request.Context(), scheduler.TriggerWebhook); err != nil {
		h.log.Error("webhook sync enqueue failed", "event", evt.Event, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not queue sync"})
		return
	}

	h.log.Info("webhook accepted", "event", evt.Event, "task_id", evt.TaskID)
	c.JSON(http.StatusOK, gin.H{"queued": true})
}
