package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/domain"
	"github.com/jlf119/app-cad-compliance/internal/tracker"
)

// WebhookHandler receives completion notifications from the upstream
// service. It always acknowledges with 200: a malformed or unknown
// notification cannot be fixed by upstream retrying it.
type WebhookHandler struct {
	tracker *tracker.Tracker
	logger  *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(tr *tracker.Tracker, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{tracker: tr, logger: logger}
}

// Event handles POST /api/event
func (h *WebhookHandler) Event(c *gin.Context) {
	var event domain.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.logger.Warn("Unparseable webhook payload", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	if err := h.tracker.HandleWebhook(c.Request.Context(), event); err != nil {
		h.logger.Error("Webhook processing failed",
			zap.Error(err), zap.String("translation_id", event.TranslationID))
	}
	c.Status(http.StatusOK)
}
