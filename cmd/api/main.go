package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/museobook/museum-ticketing-platform/internal/analytics"
	"github.com/museobook/museum-ticketing-platform/internal/api/router"
	"github.com/museobook/museum-ticketing-platform/internal/app/bootstrap"
	"github.com/museobook/museum-ticketing-platform/internal/chat"
	appconfig "github.com/museobook/museum-ticketing-platform/internal/config"
	"github.com/museobook/museum-ticketing-platform/internal/museums"
	"github.com/museobook/museum-ticketing-platform/internal/notify"
	"github.com/museobook/museum-ticketing-platform/internal/observability/metrics"
	"github.com/museobook/museum-ticketing-platform/internal/payments"
	"github.com/museobook/museum-ticketing-platform/internal/qa"
	"github.com/museobook/museum-ticketing-platform/internal/tickets"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting museum-ticketing-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage
	pool, err := bootstrap.BuildDBPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Repositories and services
	museumRepo := museums.NewPostgresRepository(pool)
	ticketRepo := tickets.NewPostgresRepository(pool)
	analyticsSvc := analytics.NewService(pool, logger)

	gateway := payments.NewGateway(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	}
	notifySvc := notify.NewService(emailSender, logger)

	var qaClient chat.QAClient
	if cfg.OpenAIAPIKey != "" {
		qaClient = qa.NewServiceFromAPIKey(cfg.OpenAIAPIKey, cfg.QAModel, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set, free-form Q&A disabled")
	}

	var transcripts chat.TranscriptStore
	if redisClient != nil {
		transcripts = chat.NewRedisTranscriptStore(redisClient)
	}

	chatMetrics := metrics.NewChatMetrics(nil)

	engine := chat.NewEngine(chat.Config{
		Museums:     museumRepo,
		Tickets:     ticketRepo,
		Payments:    gateway,
		QA:          qaClient,
		Notifier:    notifySvc,
		Analytics:   analyticsSvc,
		Transcripts: transcripts,
		Metrics:     chatMetrics,
		Logger:      logger,
		Timeouts: chat.TimeoutPolicy{
			Timeout: cfg.SessionTimeout,
			Warning: cfg.SessionTimeoutWarning,
		},
		MaxTickets: cfg.MaxTicketsPerBooking,
		Currency:   cfg.PaymentCurrency,
	})

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		ChatHandler:        chat.NewHandler(engine, logger),
		MuseumsHandler:     museums.NewHandler(museumRepo, logger),
		TicketsHandler:     tickets.NewHandler(ticketRepo, logger),
		PaymentVerify:      payments.NewVerifyHandler(gateway, ticketRepo, analyticsSvc, notifySvc, logger),
		MetricsHandler:     promhttp.Handler(),
		UserJWTSecret:      cfg.UserJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
