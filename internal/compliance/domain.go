package compliance

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// BannedMedicine is an entry on the regulatory banned register. Billing
// refuses cart additions whose product name matches an entry here.
type BannedMedicine struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Reason     string    `json:"reason"`
	Source     string    `json:"source"`
	BannedDate time.Time `json:"banned_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// AlertSeverity grades regulatory alerts.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// RegulatoryAlert is a notice surfaced on the compliance dashboard, either
// entered manually or raised by the expiry scan job.
type RegulatoryAlert struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Source      string        `json:"source"`
	Severity    AlertSeverity `json:"severity"`
	IsRead      bool          `json:"is_read"`
	CreatedAt   time.Time     `json:"created_at"`
}

// AddBannedMedicineRequest carries a new banned register entry.
type AddBannedMedicineRequest struct {
	Name       string     `json:"name" validate:"required,max=200"`
	Reason     string     `json:"reason" validate:"required,max=1000"`
	Source     string     `json:"source" validate:"required,max=200"`
	BannedDate *time.Time `json:"banned_date,omitempty"`
}

// CreateAlertRequest carries a new regulatory alert.
type CreateAlertRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	Source      string `json:"source" validate:"required,max=200"`
	Severity    string `json:"severity" validate:"required,oneof=info warning critical"`
}
