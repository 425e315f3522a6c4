package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/delivery/http/middleware"
	"github.com/jlf119/app-cad-compliance/internal/onshape"
	"github.com/jlf119/app-cad-compliance/internal/tracker"
)

const maxWebhookBodyBytes = 64 << 10

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Client          *onshape.Client
	Tracker         *tracker.Tracker
	Logger          *zap.Logger
	RateLimitPerMin int
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(deps *RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(deps.Logger))

	// Metrics and health (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	healthHandler := NewHealthHandler(deps.Logger)
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	if deps.RateLimitPerMin > 0 {
		api.Use(middleware.RateLimiter(deps.RateLimitPerMin))
	}
	{
		// Pass-through proxies
		proxyHandler := NewProxyHandler(deps.Client, deps.Logger)
		api.GET("/elements", proxyHandler.Elements)
		api.GET("/elements/:eid/parts", proxyHandler.ElementParts)
		api.GET("/parts", proxyHandler.Parts)

		// Translation tracking
		transHandler := NewTranslationHandler(deps.Tracker, deps.Logger)
		api.GET("/gltf", transHandler.Submit)
		api.GET("/gltf/:id", transHandler.Retrieve)

		// WebSocket phase stream
		streamHandler := NewStreamHandler(deps.Tracker, deps.Logger)
		api.GET("/gltf/:id/stream", streamHandler.Stream)

		// Upstream webhook
		webhookHandler := NewWebhookHandler(deps.Tracker, deps.Logger)
		api.POST("/event", middleware.BodySizeLimit(maxWebhookBodyBytes), webhookHandler.Event)
	}

	return router
}
