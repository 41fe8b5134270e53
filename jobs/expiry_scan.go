package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/karvyapaar/karvyapaar/internal/catalog"
	"github.com/karvyapaar/karvyapaar/internal/compliance"
	jobmetrics "github.com/karvyapaar/karvyapaar/internal/jobs"
)

// ExpiryScanJob raises a regulatory alert for stock nearing its expiry date
// so expired medicine never reaches the counter unnoticed.
type ExpiryScanJob struct {
	Catalog    *catalog.Service
	Compliance *compliance.Service
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewExpiryScanJob initialises the expiry scan handler.
func NewExpiryScanJob(catalogSvc *catalog.Service, complianceSvc *compliance.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpiryScanJob {
	return &ExpiryScanJob{
		Catalog:    catalogSvc,
		Compliance: complianceSvc,
		Logger:     logger,
		Metrics:    metrics,
	}
}

// Handle executes the expiry scan.
func (j *ExpiryScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("expiry scan: handler not configured")
	}
	var payload ExpiryScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WithinDays <= 0 {
		payload.WithinDays = 90
	}

	tracker := j.metrics().Track(TaskExpiryScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("within_days", payload.WithinDays))
	logger.Info("starting expiry scan")

	within := time.Duration(payload.WithinDays) * 24 * time.Hour
	products, err := j.Catalog.Expiring(ctx, within)
	if err != nil {
		resultErr = err
		logger.Error("expiry scan failed", slog.Any("error", err))
		return resultErr
	}
	if len(products) == 0 {
		logger.Info("no stock nearing expiry")
		return nil
	}

	for _, p := range products {
		logger.Warn("stock nearing expiry",
			slog.String("product", p.Name),
			slog.String("batch", stringOrDash(p.BatchNo)),
			slog.Int("stock", p.Stock),
		)
	}

	if j.Compliance != nil {
		_, err = j.Compliance.CreateAlert(ctx, compliance.CreateAlertRequest{
			Title: fmt.Sprintf("%d products nearing expiry", len(products)),
			Description: fmt.Sprintf(
				"Expiry scan found %d products expiring within %d days. Review stock and remove expired batches.",
				len(products), payload.WithinDays),
			Source:   "expiry-scan",
			Severity: string(compliance.SeverityWarning),
		})
		if err != nil {
			resultErr = err
			logger.Error("create expiry alert", slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("completed expiry scan", slog.Int("products", len(products)))
	return nil
}

func (j *ExpiryScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *ExpiryScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskExpiryScan))
	}
	return slog.Default().With(slog.String("job", TaskExpiryScan))
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
