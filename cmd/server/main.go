package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/orderwatch/backend/internal/application/sync"
	"github.com/orderwatch/backend/internal/domain/integration"
	"github.com/orderwatch/backend/internal/domain/notification"
	"github.com/orderwatch/backend/internal/infrastructure/config"
	"github.com/orderwatch/backend/internal/infrastructure/logger"
	notifychan "github.com/orderwatch/backend/internal/infrastructure/notification"
	"github.com/orderwatch/backend/internal/infrastructure/persistence"
	"github.com/orderwatch/backend/internal/infrastructure/scheduler"
	"github.com/orderwatch/backend/internal/infrastructure/smartstore"
	"github.com/orderwatch/backend/internal/interfaces/http/handler"
	"github.com/orderwatch/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OrderWatch",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection and schema
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("path", cfg.Database.Path))

	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Vendor API client
	vendorCfg := smartstore.NewConfig(cfg.Vendor.ClientID, cfg.Vendor.ClientSecret)
	if cfg.Vendor.APIBaseURL != "" {
		vendorCfg.APIBaseURL = cfg.Vendor.APIBaseURL
	}
	if cfg.Vendor.TokenURL != "" {
		vendorCfg.TokenURL = cfg.Vendor.TokenURL
	}
	if cfg.Vendor.TimeoutSeconds > 0 {
		vendorCfg.TimeoutSeconds = cfg.Vendor.TimeoutSeconds
	}

	var tokens smartstore.TokenProvider
	if cfg.Vendor.AccessToken != "" {
		tokens = smartstore.NewStaticTokenProvider(cfg.Vendor.AccessToken)
		log.Info("Using static vendor access token")
	} else {
		oauthTokens, err := smartstore.NewOAuthTokenProvider(vendorCfg)
		if err != nil {
			log.Fatal("Failed to initialize vendor token provider", zap.Error(err))
		}
		tokens = oauthTokens
	}

	retryPolicy := integration.DefaultRetryPolicy()
	if cfg.Sync.RetryMaxAttempts > 0 {
		retryPolicy.MaxAttempts = cfg.Sync.RetryMaxAttempts
	}
	if len(cfg.Sync.RetryBackoff) > 0 {
		retryPolicy.BackoffSchedule = cfg.Sync.RetryBackoff
	}

	fetcher, err := smartstore.NewClient(vendorCfg, tokens, retryPolicy, log)
	if err != nil {
		log.Fatal("Failed to initialize vendor client", zap.Error(err))
	}

	// Notification channels
	channels := []notification.Channel{
		notifychan.NewDesktopChannel(&notifychan.DesktopConfig{
			Enabled: cfg.Notification.DesktopEnabled,
			Command: cfg.Notification.DesktopCommand,
			Logger:  log,
		}),
	}
	if cfg.Notification.WebhookEnabled {
		channels = append(channels, notifychan.NewWebhookChannel(&notifychan.WebhookConfig{
			Enabled: true,
			URL:     cfg.Notification.WebhookURL,
			Color:   cfg.Notification.WebhookColor,
			Timeout: time.Duration(cfg.Notification.WebhookTimeoutSeconds) * time.Second,
			Logger:  log,
		}))
	}

	// Sync cycle service and polling scheduler
	dispatcher := appsync.NewDispatcher(channels, log)
	syncService := appsync.NewService(fetcher, orderRepo, dispatcher, appsync.Config{
		LookbackWindow: cfg.Sync.LookbackWindow,
		MaxChunkSpan:   cfg.Sync.MaxChunkSpan,
	}, log)

	pollerCfg := scheduler.DefaultPollerConfig()
	pollerCfg.PollInterval = cfg.Sync.PollInterval
	pollerCfg.CycleTimeout = cfg.Sync.CycleTimeout
	pollerCfg.Cooldown = cfg.Sync.Cooldown
	poller, err := scheduler.NewPoller(pollerCfg, syncService, log)
	if err != nil {
		log.Fatal("Failed to initialize poller", zap.Error(err))
	}
	if err := poller.Start(context.Background()); err != nil {
		log.Fatal("Failed to start poller", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := poller.Stop(stopCtx); err != nil {
			log.Error("Error stopping poller", zap.Error(err))
		}
	}()
	log.Info("Poller started",
		zap.Duration("poll_interval", pollerCfg.PollInterval),
		zap.Duration("lookback_window", cfg.Sync.LookbackWindow),
		zap.Duration("max_chunk_span", cfg.Sync.MaxChunkSpan),
	)

	// HTTP control API
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	syncHandler := handler.NewSyncHandler(poller, orderRepo, db, log)
	router.Setup(engine, syncHandler, log)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
