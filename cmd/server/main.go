package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/config"
	handler "github.com/jlf119/app-cad-compliance/internal/delivery/http"
	"github.com/jlf119/app-cad-compliance/internal/onshape"
	"github.com/jlf119/app-cad-compliance/internal/store"
	memorystore "github.com/jlf119/app-cad-compliance/internal/store/memory"
	redisstore "github.com/jlf119/app-cad-compliance/internal/store/redis"
	"github.com/jlf119/app-cad-compliance/internal/tracker"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting CAD gateway")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Choose the job store: shared Redis when configured, in-process map
	// otherwise. Webhooks and polls only meet across instances with Redis.
	var jobRepo store.JobRepository = memorystore.NewJobRepository()
	if cfg.Redis.URL != "" {
		redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to parse Redis URL", zap.Error(err))
		}
		rdb := goredis.NewClient(redisOpts)
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to ping Redis", zap.Error(err))
		}
		logger.Info("Connected to Redis, using shared job store")
		jobRepo = redisstore.NewJobRepository(rdb)
	}

	// Upstream client and tracker
	client := onshape.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	jobTracker := tracker.New(client, jobRepo, logger)

	// Initialize router
	router := handler.NewRouter(&handler.RouterDeps{
		Client:          client,
		Tracker:         jobTracker,
		Logger:          logger,
		RateLimitPerMin: cfg.Server.RateLimit,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Gateway listening",
			zap.Int("port", cfg.Server.Port),
			zap.String("upstream", cfg.Upstream.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gateway...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Gateway stopped")
}
