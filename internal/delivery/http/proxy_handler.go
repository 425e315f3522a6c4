package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/domain"
	"github.com/jlf119/app-cad-compliance/internal/onshape"
)

// ProxyHandler serves the pass-through document/element/part listings.
// Responses are forwarded verbatim: upstream status, content type and body.
type ProxyHandler struct {
	client *onshape.Client
	logger *zap.Logger
}

// NewProxyHandler creates a new ProxyHandler.
func NewProxyHandler(client *onshape.Client, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{client: client, logger: logger}
}

// Elements handles GET /api/elements?documentId&workspaceId
func (h *ProxyHandler) Elements(c *gin.Context) {
	docID, wsID, ok := h.workspaceParams(c)
	if !ok {
		return
	}
	h.forward(c, func(ctx context.Context) (*onshape.Response, error) {
		return h.client.ListElements(ctx, credentialFrom(c), docID, wsID)
	})
}

// ElementParts handles GET /api/elements/:eid/parts?documentId&workspaceId
func (h *ProxyHandler) ElementParts(c *gin.Context) {
	docID, wsID, ok := h.workspaceParams(c)
	if !ok {
		return
	}
	elementID := c.Param("eid")
	h.forward(c, func(ctx context.Context) (*onshape.Response, error) {
		return h.client.ListElementParts(ctx, credentialFrom(c), docID, wsID, elementID)
	})
}

// Parts handles GET /api/parts?documentId&workspaceId
func (h *ProxyHandler) Parts(c *gin.Context) {
	docID, wsID, ok := h.workspaceParams(c)
	if !ok {
		return
	}
	h.forward(c, func(ctx context.Context) (*onshape.Response, error) {
		return h.client.ListParts(ctx, credentialFrom(c), docID, wsID)
	})
}

func (h *ProxyHandler) workspaceParams(c *gin.Context) (docID, wsID string, ok bool) {
	docID = c.Query("documentId")
	wsID = c.Query("workspaceId")
	var missing []string
	if docID == "" {
		missing = append(missing, "documentId")
	}
	if wsID == "" {
		missing = append(missing, "workspaceId")
	}
	if len(missing) > 0 {
		err := &domain.ValidationError{Missing: missing}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "missing": missing})
		return "", "", false
	}
	return docID, wsID, true
}

func (h *ProxyHandler) forward(c *gin.Context, call func(ctx context.Context) (*onshape.Response, error)) {
	resp, err := call(c.Request.Context())
	if err != nil {
		// Non-2xx upstream replies are part of the passthrough contract.
		var apiErr *onshape.APIError
		if errors.As(err, &apiErr) {
			c.Data(apiErr.StatusCode, contentTypeOr(apiErr.ContentType), apiErr.Body)
			return
		}
		writeUpstreamError(c, h.logger, err)
		return
	}
	c.Data(resp.StatusCode, contentTypeOr(resp.ContentType), resp.Body)
}

func contentTypeOr(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
