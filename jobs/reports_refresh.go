package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/karvyapaar/karvyapaar/internal/jobs"
	"github.com/karvyapaar/karvyapaar/internal/reports"
)

// ReportsRefreshJob warms the cached sales reports for every period.
type ReportsRefreshJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsRefreshJob initialises the reports refresh handler.
func NewReportsRefreshJob(reportsSvc *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsRefreshJob {
	return &ReportsRefreshJob{Reports: reportsSvc, Logger: logger, Metrics: metrics}
}

// Handle executes the refresh.
func (j *ReportsRefreshJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports refresh: handler not configured")
	}

	tracker := j.metrics().Track(TaskReportsRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	logger.Info("starting reports refresh")

	if err := j.Reports.Refresh(ctx); err != nil {
		resultErr = err
		logger.Error("reports refresh failed", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed reports refresh", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ReportsRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *ReportsRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsRefresh))
	}
	return slog.Default().With(slog.String("job", TaskReportsRefresh))
}
