package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sayhiafrica/ticketing-platform/internal/api/router"
	"github.com/sayhiafrica/ticketing-platform/internal/catalog"
	appconfig "github.com/sayhiafrica/ticketing-platform/internal/config"
	"github.com/sayhiafrica/ticketing-platform/internal/conversation"
	"github.com/sayhiafrica/ticketing-platform/internal/http/handlers"
	"github.com/sayhiafrica/ticketing-platform/internal/messaging"
	"github.com/sayhiafrica/ticketing-platform/internal/notify"
	"github.com/sayhiafrica/ticketing-platform/internal/observability/metrics"
	"github.com/sayhiafrica/ticketing-platform/internal/orders"
	"github.com/sayhiafrica/ticketing-platform/internal/payments"
	"github.com/sayhiafrica/ticketing-platform/internal/simulator"
	"github.com/sayhiafrica/ticketing-platform/internal/transcript"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting ticketing-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Separate database/sql handle for the transcript archive.
	archiveDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open archive database", "error", err)
		os.Exit(1)
	}
	defer archiveDB.Close()

	registry := prometheus.NewRegistry()
	convMetrics := metrics.NewConversationMetrics(registry)
	payMetrics := metrics.NewPaymentMetrics(registry)
	msgMetrics := metrics.NewMessagingMetrics(registry)

	catalogRepo := catalog.NewRepository(pool).WithListLimit(cfg.CatalogListLimit)
	lookup := catalog.NewLookup(catalogRepo, cfg.FallbackAnyStatus, logger.Component("catalog"))
	ordersRepo := orders.NewRepository(pool)
	transcriptStore := transcript.NewStore(archiveDB)

	unitPrice, err := decimal.NewFromString(cfg.DefaultUnitPriceRand)
	if err != nil {
		logger.Warn("invalid DEFAULT_UNIT_PRICE, using 100", "value", cfg.DefaultUnitPriceRand)
		unitPrice = decimal.NewFromInt(100)
	}

	linkBuilder := payments.NewLinkBuilder(payments.PayFastConfig{
		MerchantID:  cfg.PayFastMerchantID,
		MerchantKey: cfg.PayFastMerchantKey,
		BaseURL:     cfg.PayFastBaseURL,
		ReturnURL:   cfg.PayFastReturnURL,
		CancelURL:   cfg.PayFastCancelURL,
		NotifyURL:   cfg.PayFastNotifyURL,
	}, ordersRepo, unitPrice, payMetrics, logger.Component("payments"))

	var notifier messaging.Notifier
	if cfg.WhatsAppToken != "" && cfg.WhatsAppPhoneID != "" {
		notifier = messaging.NewWhatsAppSender(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, msgMetrics, logger.Component("messaging"))
	} else {
		logger.Warn("whatsapp credentials missing, outbound messages are logged only")
		notifier = messaging.NewNoopSender(logger.Component("messaging"))
	}

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger.Component("notify")); sg != nil {
		emailSender = sg
	}
	mailer := notify.NewTicketMailer(emailSender, logger.Component("notify"))

	var polisher conversation.Polisher
	if cfg.GeminiAPIKey != "" && !cfg.PolishDisabled {
		gp, err := conversation.NewGeminiPolisher(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini polisher unavailable, replies stay deterministic", "error", err)
		} else {
			defer gp.Close()
			polisher = gp
		}
	}

	var sessions conversation.SessionStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		defer client.Close()
		sessions = conversation.NewRedisSessionStore(client, cfg.SessionTTL)
	} else {
		logger.Warn("redis not configured, sessions are in-memory only")
		sessions = conversation.NewMemorySessionStore()
	}

	engine := conversation.NewEngine(lookup, linkBuilder, ordersRepo, convMetrics, logger.Component("conversation"))
	renderer := conversation.NewRenderer(polisher, cfg.PolishTimeout, convMetrics, logger.Component("conversation"))
	service := conversation.NewService(engine, renderer, sessions, transcriptStore, convMetrics, logger.Component("conversation"))

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(service, logger.Component("conversation")),
		WhatsAppWebhook:     messaging.NewWebhookHandler(service, notifier, cfg.WhatsAppVerifyToken, logger.Component("messaging")),
		PayFastNotify:       payments.NewNotifyHandler(ordersRepo, notifier, mailer, payMetrics, logger.Component("payments")),
		Simulator:           simulator.NewHandler(service, transcriptStore, logger.Component("simulator")),
		Admin: handlers.NewAdminHandler(handlers.AdminConfig{
			Events:      catalogRepo,
			Orders:      ordersRepo,
			Transcripts: transcriptStore,
			Logger:      logger.Component("admin"),
		}),
		AdminAuthSecret: cfg.AdminJWTSecret,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
