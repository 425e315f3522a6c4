package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/domain"
	"github.com/jlf119/app-cad-compliance/internal/tracker"
)

// TranslationHandler exposes the translation tracker over HTTP: job
// submission and the poll/retrieve endpoint.
type TranslationHandler struct {
	tracker *tracker.Tracker
	logger  *zap.Logger
}

// NewTranslationHandler creates a new TranslationHandler.
func NewTranslationHandler(tr *tracker.Tracker, logger *zap.Logger) *TranslationHandler {
	return &TranslationHandler{tracker: tr, logger: logger}
}

// Submit handles GET /api/gltf?documentId&workspaceId&gltfElementId&partId
//
// On upstream acceptance the raw acceptance JSON (including the job id) is
// returned to the caller; missing parameters are rejected locally before
// any upstream call.
func (h *TranslationHandler) Submit(c *gin.Context) {
	src := domain.ModelSource{
		DocumentID:  c.Query("documentId"),
		WorkspaceID: c.Query("workspaceId"),
		ElementID:   c.Query("gltfElementId"),
		PartID:      c.Query("partId"),
	}

	accepted, err := h.tracker.Submit(c.Request.Context(), credentialFrom(c), src)
	if err != nil {
		var valErr *domain.ValidationError
		if errors.As(err, &valErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Error(), "missing": valErr.Missing})
			return
		}
		writeUpstreamError(c, h.logger, err)
		return
	}

	c.Data(http.StatusOK, "application/json", accepted.Raw)
}

// Retrieve handles GET /api/gltf/:id
//
// 404 unknown id, 202 still running, 500 failed (with the upstream
// reason), or the artifact bytes. A delivered or failed job is forgotten:
// repeating the call yields 404.
func (h *TranslationHandler) Retrieve(c *gin.Context) {
	id := c.Param("id")

	artifact, err := h.tracker.Poll(c.Request.Context(), credentialFrom(c), id)
	if err != nil {
		var failErr *domain.JobFailedError
		switch {
		case errors.Is(err, domain.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Translation job not found"})
		case errors.Is(err, domain.ErrJobInProgress):
			c.JSON(http.StatusAccepted, gin.H{"status": string(domain.PhaseInProgress)})
		case errors.As(err, &failErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": failErr.Reason})
		case errors.Is(err, domain.ErrMissingResultInfo):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Missing translation result info."})
		default:
			writeUpstreamError(c, h.logger, err)
		}
		return
	}

	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
