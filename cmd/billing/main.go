package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/vsbilling/vsbilling/internal/app"
	"github.com/vsbilling/vsbilling/internal/auth"
	"github.com/vsbilling/vsbilling/internal/billing"
	"github.com/vsbilling/vsbilling/internal/contacts"
	"github.com/vsbilling/vsbilling/internal/observability"
	"github.com/vsbilling/vsbilling/internal/platform/cache"
	"github.com/vsbilling/vsbilling/internal/platform/db"
	"github.com/vsbilling/vsbilling/internal/reports"
	"github.com/vsbilling/vsbilling/internal/shared"
	"github.com/vsbilling/vsbilling/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	decimal.MarshalJSONWithoutQuotes = true

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("resolve report timezone", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 10, MaxConnIdleTime: 5 * time.Minute})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, token revocation disabled until it recovers", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Secret:   cfg.AuthJWTSecret,
		Issuer:   cfg.AuthJWTIssuer,
		Audience: cfg.AuthJWTAudience,
		Leeway:   30 * time.Second,
	})
	if err != nil {
		logger.Error("init token verifier", slog.Any("error", err))
		os.Exit(1)
	}

	billRepo := billing.NewRepository(dbpool)
	billService := billing.NewService(billRepo, logger)
	contactService := contacts.NewService(billRepo, logger)
	reportService := reports.NewService(billRepo, contactService, loc, logger)

	hub := auth.NewHub()
	numbering := billService.Numbering()
	unsubscribe := hub.Subscribe(func(ctx context.Context, evt auth.Event) {
		if evt.Kind != auth.EventSignedIn {
			return
		}
		reconcileCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := numbering.Reconcile(reconcileCtx, evt.OwnerID); err != nil {
			logger.Warn("reconcile counter on sign in", slog.String("owner", evt.OwnerID), slog.Any("error", err))
		}
	})
	defer unsubscribe()

	authService := auth.NewService(verifier, auth.NewRedisDenylist(redisClient), hub, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthService:     authService,
		AuthHandler:     auth.NewHandler(logger, authService),
		BillingHandler:  billing.NewHandler(logger, billService).WithIdempotency(shared.NewIdempotencyStore(dbpool)),
		ContactsHandler: contacts.NewHandler(logger, contactService),
		ReportsHandler:  reports.NewHandler(logger, reportService),
		JobHandler:      jobs.NewHandler(inspector, logger),
		Metrics:         metrics,
		Ready: func(r *http.Request) error {
			return dbpool.Ping(r.Context())
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
