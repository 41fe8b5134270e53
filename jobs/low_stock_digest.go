package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/karvyapaar/karvyapaar/internal/assist"
	"github.com/karvyapaar/karvyapaar/internal/catalog"
	jobmetrics "github.com/karvyapaar/karvyapaar/internal/jobs"
)

// LowStockDigestJob logs a digest of products at or below their minimum
// stock and, when the assistant is configured, drafts a distributor
// reorder message ready to forward on WhatsApp.
type LowStockDigestJob struct {
	Catalog *catalog.Service
	Assist  *assist.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockDigestJob initialises the low stock digest handler.
func NewLowStockDigestJob(catalogSvc *catalog.Service, assistSvc *assist.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockDigestJob {
	return &LowStockDigestJob{Catalog: catalogSvc, Assist: assistSvc, Logger: logger, Metrics: metrics}
}

// Handle executes the digest.
func (j *LowStockDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("low stock digest: handler not configured")
	}

	tracker := j.metrics().Track(TaskLowStockDigest)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting low stock digest")

	products, err := j.Catalog.LowStock(ctx)
	if err != nil {
		resultErr = err
		logger.Error("low stock lookup failed", slog.Any("error", err))
		return resultErr
	}
	if len(products) == 0 {
		logger.Info("no products below minimum stock")
		return nil
	}

	items := make([]assist.LowStockItem, 0, len(products))
	for _, p := range products {
		logger.Warn("product below minimum stock",
			slog.String("product", p.Name),
			slog.Int("stock", p.Stock),
			slog.Int("min_stock", p.MinStock),
		)
		items = append(items, assist.LowStockItem{
			Name:     p.Name,
			Stock:    p.Stock,
			MinStock: p.MinStock,
			Category: p.Category,
			Unit:     p.Unit,
		})
	}

	if j.Assist != nil && len(items) <= assist.MaxReorderItems {
		result, err := j.Assist.SmartReorder(ctx, items, "")
		if err != nil {
			// Gateway errors do not fail the digest.
			logger.Warn("reorder draft failed", slog.Any("error", err))
		} else if result.WhatsAppMessage != "" {
			logger.Info("reorder message drafted", slog.String("summary", result.Summary))
		}
	}

	logger.Info("completed low stock digest", slog.Int("products", len(products)))
	return nil
}

func (j *LowStockDigestJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *LowStockDigestJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockDigest))
	}
	return slog.Default().With(slog.String("job", TaskLowStockDigest))
}
