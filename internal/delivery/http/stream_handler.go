package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/tracker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the API is CORS-open; same policy here
	},
}

// StreamHandler pushes translation phase updates over a WebSocket so
// browser callers can wait without busy-polling. It only reads the store:
// artifact retrieval must go through GET /api/gltf/:id, which has the
// remove-on-delivery side effect.
type StreamHandler struct {
	tracker *tracker.Tracker
	logger  *zap.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(tr *tracker.Tracker, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{tracker: tr, logger: logger}
}

// Stream handles GET /api/gltf/:id/stream (WebSocket upgrade)
func (h *StreamHandler) Stream(c *gin.Context) {
	id := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		job, err := h.tracker.Status(c.Request.Context(), id)
		if err != nil {
			// Gone: either never submitted or already resolved and removed.
			conn.WriteJSON(gin.H{"error": "Translation job not found"})
			return
		}

		if err := conn.WriteJSON(gin.H{"id": job.ID, "phase": job.Phase}); err != nil {
			h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			return
		}

		if job.Phase.IsTerminal() {
			return
		}
	}
}
