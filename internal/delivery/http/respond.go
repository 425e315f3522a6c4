package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/onshape"
)

// credentialFrom lifts the caller's forwarded headers into an upstream
// credential. The gateway never inspects or validates them.
func credentialFrom(c *gin.Context) onshape.Credential {
	return onshape.Credential{
		Authorization: c.GetHeader("Authorization"),
		UserAgent:     c.GetHeader("User-Agent"),
	}
}

// writeUpstreamError maps client failures onto the response: upstream
// HTTP errors pass through with their status and body, transport failures
// become 502, anything else is an internal error.
func writeUpstreamError(c *gin.Context, logger *zap.Logger, err error) {
	var apiErr *onshape.APIError
	var transportErr *onshape.TransportError
	switch {
	case errors.As(err, &apiErr):
		c.JSON(apiErr.StatusCode, gin.H{"error": string(apiErr.Body)})
	case errors.As(err, &transportErr):
		logger.Warn("Upstream unreachable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service unreachable"})
	default:
		logger.Error("Unexpected upstream failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
