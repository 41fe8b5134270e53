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

	"github.com/karvyapaar/karvyapaar/internal/app"
	"github.com/karvyapaar/karvyapaar/internal/assist"
	"github.com/karvyapaar/karvyapaar/internal/auth"
	"github.com/karvyapaar/karvyapaar/internal/billing"
	"github.com/karvyapaar/karvyapaar/internal/catalog"
	"github.com/karvyapaar/karvyapaar/internal/compliance"
	"github.com/karvyapaar/karvyapaar/internal/customers"
	"github.com/karvyapaar/karvyapaar/internal/observability"
	"github.com/karvyapaar/karvyapaar/internal/platform/cache"
	"github.com/karvyapaar/karvyapaar/internal/platform/db"
	"github.com/karvyapaar/karvyapaar/internal/reports"
	"github.com/karvyapaar/karvyapaar/jobs"
)

// catalogAdapter narrows the catalog service to the lookups billing needs.
type catalogAdapter struct {
	service *catalog.Service
}

func (a catalogAdapter) ProductInfo(ctx context.Context, id int64) (billing.ProductInfo, error) {
	product, err := a.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return billing.ProductInfo{}, billing.ErrNotFound
		}
		return billing.ProductInfo{}, err
	}
	return billing.ProductInfo{
		ID:       product.ID,
		Barcode:  product.Barcode,
		Name:     product.Name,
		Price:    product.Price,
		Unit:     product.Unit,
		Stock:    product.Stock,
		IsBanned: product.IsBanned,
	}, nil
}

func (a catalogAdapter) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	return a.service.DecrementStock(ctx, productID, quantity)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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

	metrics := observability.NewMetrics()

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	complianceService := compliance.NewService(logger, compliance.NewRepository(pool), nil)
	complianceHandler := compliance.NewHandler(logger, complianceService)

	customersService := customers.NewService(logger, customers.NewRepository(pool))
	customersHandler := customers.NewHandler(logger, customersService)

	billingRepo := billing.NewRepository(pool)
	reportsCache := reports.NewCache(redisClient, 10*time.Minute)
	reportsService := reports.NewService(logger, billingRepo, reportsCache, nil)
	reportsHandler := reports.NewHandler(logger, reportsService)

	billingService := billing.NewService(
		logger,
		billing.NewCartStore(),
		billingRepo,
		catalogAdapter{service: catalogService},
		complianceService,
		billing.ServiceConfig{
			Customers:  customersService,
			Bumper:     reportsCache,
			Metrics:    metrics,
			StoreName:  cfg.StoreName,
			StoreGSTIN: cfg.StoreGSTIN,
		},
	)
	billingHandler := billing.NewHandler(logger, billingService, billingRepo)

	assistClient := assist.NewClient(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AITimeout)
	assistService := assist.NewService(logger, assistClient)
	assistHandler := assist.NewHandler(logger, assistService)

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authService := auth.NewService(logger, auth.NewRepository(pool), tokenStore)
	authHandler := auth.NewHandler(logger, authService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthService:       authService,
		AuthHandler:       authHandler,
		BillingHandler:    billingHandler,
		CatalogHandler:    catalogHandler,
		ComplianceHandler: complianceHandler,
		CustomersHandler:  customersHandler,
		ReportsHandler:    reportsHandler,
		AssistHandler:     assistHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
