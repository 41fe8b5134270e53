package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/karvyapaar/karvyapaar/internal/app"
	"github.com/karvyapaar/karvyapaar/internal/assist"
	"github.com/karvyapaar/karvyapaar/internal/billing"
	"github.com/karvyapaar/karvyapaar/internal/catalog"
	"github.com/karvyapaar/karvyapaar/internal/compliance"
	jobmetrics "github.com/karvyapaar/karvyapaar/internal/jobs"
	"github.com/karvyapaar/karvyapaar/internal/platform/cache"
	"github.com/karvyapaar/karvyapaar/internal/platform/db"
	"github.com/karvyapaar/karvyapaar/internal/reports"
	"github.com/karvyapaar/karvyapaar/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	complianceService := compliance.NewService(logger, compliance.NewRepository(pool), nil)

	billingRepo := billing.NewRepository(pool)
	reportsCache := reports.NewCache(redisClient, 10*time.Minute)
	reportsService := reports.NewService(logger, billingRepo, reportsCache, nil)

	var assistService *assist.Service
	if cfg.AIGatewayKey != "" {
		assistClient := assist.NewClient(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AITimeout)
		assistService = assist.NewService(logger, assistClient)
	}

	jobMetrics := jobmetrics.NewMetrics(nil)
	expiryJob := jobs.NewExpiryScanJob(catalogService, complianceService, logger, jobMetrics)
	digestJob := jobs.NewLowStockDigestJob(catalogService, assistService, logger, jobMetrics)
	refreshJob := jobs.NewReportsRefreshJob(reportsService, logger, jobMetrics)

	expiryTask, err := jobs.NewExpiryScanTask(cfg.ExpiryAlertDays)
	if err != nil {
		logger.Error("build expiry task", slog.Any("error", err))
		os.Exit(1)
	}
	digestTask, err := jobs.NewLowStockDigestTask()
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}
	refreshTask, err := jobs.NewReportsRefreshTask()
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskExpiryScan, Handler: expiryJob.Handle},
			{Type: jobs.TaskLowStockDigest, Handler: digestJob.Handle},
			{Type: jobs.TaskReportsRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: expiryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/30 * * * *", Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
