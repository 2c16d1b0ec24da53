// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/voqo-dev/crm-backend/internal/admin"
	"github.com/voqo-dev/crm-backend/internal/auth"
	"github.com/voqo-dev/crm-backend/internal/billing"
	"github.com/voqo-dev/crm-backend/internal/config"
	"github.com/voqo-dev/crm-backend/internal/contact"
	"github.com/voqo-dev/crm-backend/internal/core"
	"github.com/voqo-dev/crm-backend/internal/health"
	"github.com/voqo-dev/crm-backend/internal/identity"
	"github.com/voqo-dev/crm-backend/internal/middleware"
	"github.com/voqo-dev/crm-backend/internal/notify"
	"github.com/voqo-dev/crm-backend/internal/operator"
	"github.com/voqo-dev/crm-backend/internal/outreach"
	"github.com/voqo-dev/crm-backend/internal/platform"
	"github.com/voqo-dev/crm-backend/internal/recordings"
	"github.com/voqo-dev/crm-backend/internal/server"
	"github.com/voqo-dev/crm-backend/internal/team"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	// Local development keeps secrets in a .env file; in production the
	// environment is injected by the deploy platform and this is a no-op.
	//nolint:errcheck // missing .env is the normal case outside dev
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	mongoChecker, err := platform.NewMongoChecker(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	logger.Info("platform mongo connected",
		"database", cfg.Mongo.Database,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	clerkVerifier, err := svix.NewWebhook(cfg.Clerk.WebhookSecret)
	if err != nil {
		return err
	}

	contactRepo := contact.NewRepository(db.DB)
	classifier := contact.NewClassifier(cfg.Classifier)
	strategy := team.FromName(cfg.Team.Assignment)
	contactSvc := contact.NewService(
		contactRepo,
		classifier,
		cfg.Team.Roster,
		strategy,
	)
	contactHandler := contact.NewHandler(contactSvc)

	operatorRepo := operator.NewRepository(db.DB)
	operatorSvc := operator.NewService(operatorRepo)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, operatorSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	notifyHandler := notify.NewHandler(contactSvc, cfg.Chat.Space, logger)
	identityHandler := identity.NewHandler(contactSvc, clerkVerifier, logger)

	billingRepo := billing.NewRepository(db.DB)
	stripeResolver := billing.NewStripeResolver(cfg.Stripe.SecretKey)
	billingSvc := billing.NewService(
		billingRepo,
		contactRepo,
		stripeResolver,
		logger,
	)
	billingHandler := billing.NewHandler(
		billingSvc,
		cfg.Stripe.WebhookSecret,
		logger,
	)

	outreachSvc := outreach.NewService(contactRepo)
	outreachHandler := outreach.NewHandler(outreachSvc)

	platformSvc := platform.NewService(
		contactRepo,
		mongoChecker,
		cfg.Platform.ActivityWindow,
		logger,
	)

	recordingsClient := recordings.NewTwilioClient(cfg.Twilio)
	recordingsHandler := recordings.NewHandler(recordingsClient, logger)

	healthHandler := health.NewHandler(db, redis, mongoChecker)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Operators:  operatorSvc,
		Sessions:   authSvc,
		Syncer:     platformSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	apiLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			KeyFunc:  middleware.KeyByIP,
			FailOpen: true,
		},
	).Handler

	webhookLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			KeyFunc:  middleware.KeyByWebhookSource,
			FailOpen: true,
		},
	).Handler

	// Webhook callers authenticate with signatures, not bearer tokens,
	// so their routes sit outside the authenticated API group.
	notifyHandler.RegisterWebhookRoutes(router, webhookLimiter)
	identityHandler.RegisterRoutes(router, webhookLimiter)
	billingHandler.RegisterRoutes(router, webhookLimiter)

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		r.Use(apiLimiter)

		notifyHandler.RegisterChatRoutes(r, webhookLimiter)

		authHandler.RegisterRoutes(r, authenticator)
		contactHandler.RegisterRoutes(r, authenticator)
		billingHandler.RegisterContactRoutes(r, authenticator)
		outreachHandler.RegisterRoutes(r, authenticator)
		recordingsHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	if cfg.Platform.SyncEnabled {
		worker := platform.NewWorker(
			platformSvc,
			cfg.Platform.SyncInterval,
			logger,
		)
		go worker.Run(ctx)
		logger.Info("platform sync worker started",
			"interval", cfg.Platform.SyncInterval,
			"activity_window", cfg.Platform.ActivityWindow,
		)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := mongoChecker.Close(shutdownCtx); err != nil {
		logger.Error("platform mongo close error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
