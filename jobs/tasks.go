package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskExpiryScan checks the catalog for stock nearing its expiry date.
	TaskExpiryScan = "catalog:expiry_scan"
	// TaskLowStockDigest summarizes products at or below their minimum stock.
	TaskLowStockDigest = "catalog:low_stock_digest"
	// TaskReportsRefresh warms the cached sales reports.
	TaskReportsRefresh = "reports:refresh"
)

// ExpiryScanPayload controls the lookahead window for the expiry scan.
type ExpiryScanPayload struct {
	WithinDays int `json:"within_days"`
}

// NewExpiryScanTask constructs an expiry scan task.
func NewExpiryScanTask(withinDays int) (*asynq.Task, error) {
	data, err := json.Marshal(ExpiryScanPayload{WithinDays: withinDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiryScan, data), nil
}

// LowStockDigestPayload is currently empty but kept as JSON for forward
// compatibility with scheduled payload changes.
type LowStockDigestPayload struct{}

// NewLowStockDigestTask constructs a low stock digest task.
func NewLowStockDigestTask() (*asynq.Task, error) {
	data, err := json.Marshal(LowStockDigestPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockDigest, data), nil
}

// NewReportsRefreshTask constructs a reports refresh task.
func NewReportsRefreshTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskReportsRefresh, nil), nil
}
