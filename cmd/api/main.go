package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/tradepulse/backend/internal/api/handlers"
	"github.com/tradepulse/backend/internal/api/router"
	"github.com/tradepulse/backend/internal/billing"
	"github.com/tradepulse/backend/internal/cache"
	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/i18n"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/validator"
	"github.com/tradepulse/backend/internal/repository/postgres"
	"github.com/tradepulse/backend/internal/services"
	"github.com/tradepulse/backend/internal/worker"
	"github.com/tradepulse/backend/migrations"
)

// @title TradePulse API
// @version 1.0
// @description Backend for the TradePulse trading-signals service
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if err := run(cfg, log); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, migrations.GetFS()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database ready")

	// Cache is optional; the stats service degrades to compute-always.
	var redisClient *redis.Client
	var versioned *cache.VersionedCache
	if cfg.Redis.Enabled {
		rc := cache.NewRedis(cfg.Redis)
		if err := rc.Ping(ctx); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisClient = rc.Client
		versioned = cache.NewVersioned(redisClient, cfg.Stats.CacheTTL)
		log.Info("Redis cache enabled")
	}

	catalog, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	subRepo := postgres.NewSubscriptionRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	tradeRepo := postgres.NewTradeRepository(db)
	linkRepo := postgres.NewShortLinkRepository(db)
	feedbackRepo := postgres.NewFeedbackRepository(db)

	// Services
	userSvc := services.NewUserService(userRepo, cfg.Auth, log)
	provider := billing.NewStripe(cfg.Billing, log)
	subSvc := services.NewSubscriptionService(subRepo, userSvc, provider, log)
	paymentSvc := services.NewPaymentService(paymentRepo, subSvc, provider, log)
	statsSvc := services.NewStatsService(tradeRepo, userRepo, subRepo, paymentRepo, versioned, log)
	tradeSvc := services.NewTradeService(tradeRepo, statsSvc, log)
	linkSvc := services.NewShortLinkService(linkRepo, log)
	feedbackSvc := services.NewFeedbackService(feedbackRepo, log)
	botSvc := services.NewBotService(userSvc, subSvc, paymentSvc, catalog, log)

	val := validator.New()

	h := &router.Handlers{
		Health:       handlers.NewHealthHandler(db.DB, redisClient, log),
		Auth:         handlers.NewAuthHandler(userSvc, log, val),
		Subscription: handlers.NewSubscriptionHandler(subSvc, log, val),
		Payment:      handlers.NewPaymentHandler(paymentSvc, cfg.Billing.StripeWebhookSecret, log, val),
		Trade:        handlers.NewTradeHandler(tradeSvc, log, val),
		Stats:        handlers.NewStatsHandler(statsSvc, log),
		ShortLink:    handlers.NewShortLinkHandler(linkSvc, log, val),
		Feedback:     handlers.NewFeedbackHandler(feedbackSvc, log, val),
		Bot:          handlers.NewBotHandler(botSvc, log, val),
	}

	// Background jobs
	sched := worker.NewScheduler(subSvc, statsSvc, cfg.Worker, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, userSvc, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr": srv.Addr,
			"env":  cfg.Server.Environment,
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
