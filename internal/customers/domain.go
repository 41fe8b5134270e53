package customers

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("customer not found")

// LoyaltyTier buckets customers by lifetime spend.
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "Bronze"
	TierSilver   LoyaltyTier = "Silver"
	TierGold     LoyaltyTier = "Gold"
	TierPlatinum LoyaltyTier = "Platinum"
)

// Spend thresholds for tier promotion, in rupees.
const (
	silverThreshold   = 10_000
	goldThreshold     = 50_000
	platinumThreshold = 150_000
)

// TierFor maps lifetime spend to a loyalty tier.
func TierFor(totalSpent float64) LoyaltyTier {
	switch {
	case totalSpent >= platinumThreshold:
		return TierPlatinum
	case totalSpent >= goldThreshold:
		return TierGold
	case totalSpent >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// Customer aggregates purchase history keyed by phone number.
type Customer struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       *string     `json:"email,omitempty"`
	TotalOrders int         `json:"total_orders"`
	TotalSpent  float64     `json:"total_spent"`
	LoyaltyTier LoyaltyTier `json:"loyalty_tier"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Stats summarizes the customer base for the dashboard.
type Stats struct {
	TotalCustomers int     `json:"total_customers"`
	TotalRevenue   float64 `json:"total_revenue"`
	AverageSpend   float64 `json:"average_spend"`
	TierCounts     map[LoyaltyTier]int `json:"tier_counts"`
}
