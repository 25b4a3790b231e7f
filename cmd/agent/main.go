package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kobo-labs/budget-agent/internal/agent"
	apperrors "github.com/kobo-labs/budget-agent/internal/errors"
	"github.com/kobo-labs/budget-agent/internal/health"
	"github.com/kobo-labs/budget-agent/internal/i18n"
	"github.com/kobo-labs/budget-agent/internal/identity"
	"github.com/kobo-labs/budget-agent/internal/jobs"
	jobhandlers "github.com/kobo-labs/budget-agent/internal/jobs/handlers"
	"github.com/kobo-labs/budget-agent/internal/ledger"
	"github.com/kobo-labs/budget-agent/internal/lifecycle"
	"github.com/kobo-labs/budget-agent/internal/middleware"
	"github.com/kobo-labs/budget-agent/internal/notify"
	"github.com/kobo-labs/budget-agent/internal/ratelimit"
	"github.com/kobo-labs/budget-agent/internal/repository"
	"github.com/kobo-labs/budget-agent/internal/rpc"
	"github.com/kobo-labs/budget-agent/pkg/config"
	"github.com/kobo-labs/budget-agent/pkg/graceful"
	"github.com/kobo-labs/budget-agent/pkg/logger"
	appredis "github.com/kobo-labs/budget-agent/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.AppEnv)
	slog.SetDefault(log)

	log.Info("starting budget agent",
		slog.String("env", cfg.AppEnv),
		slog.String("http_port", cfg.HTTP.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.AppEnv}); err != nil {
			log.Error("failed to init sentry", slog.Any("error", err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	rdb, err := appredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	kv := appredis.NewMetricsClient(rdb)

	translations, err := i18n.Load("en")
	if err != nil {
		log.Error("failed to load reply catalog", slog.Any("error", err))
		os.Exit(1)
	}

	ledgerRepo := repository.NewLedgerRepository(kv, cfg.Ledger.TTL, log)
	identityRepo := repository.NewIdentityRepository(kv, cfg.Identity.TTL, log)

	resolver := identity.NewResolver(identityRepo, log)
	ledgerSvc := ledger.NewService(ledgerRepo, log)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	queue := jobs.NewManager(redisOpt, log)
	worker := jobs.NewWorker(redisOpt, map[string]int{jobs.QueueDefault: 1}, cfg.Jobs.Concurrency, log)

	notifier := notify.NewWebhook(cfg.Webhook.Timeout, log)
	worker.RegisterHandler(jobs.TaskTypeWebhookDeliver, jobhandlers.NewWebhookDeliveryHandler(notifier, log))

	if err := worker.Start(); err != nil {
		log.Error("failed to start jobs worker", slog.Any("error", err))
		os.Exit(1)
	}

	budgetAgent := agent.New(resolver, ledgerSvc, queue, translations.Translator("en"), log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	checker := health.NewChecker(log)
	checker.AddCheck("redis", health.NewRedisChecker(rdb))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(logger.Middleware())
	e.Use(middleware.Logging(log))
	e.Use(middleware.Metrics())
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisLimiter(rdb.Client, log)
		e.Use(middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, log))
	}

	rpc.NewHandler(budgetAgent, errHandler, log).Register(e)
	health.NewHandler(checker).Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("jobs-worker", func(ctx context.Context) error {
		worker.Shutdown()
		return nil
	})
	shutdown.Register("jobs-client", func(ctx context.Context) error {
		return queue.Close()
	})
	shutdown.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	srv := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: e}
	if err := graceful.NewServer(log, srv, cfg.HTTP.ShutdownTimeout).ListenAndServe(ctx); err != nil {
		log.Error("http server exited with error", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("budget agent stopped")
}
