package customers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Service maintains customer purchase aggregates and loyalty tiers.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

// RecordSale folds a completed sale into the customer record. The tier is
// recomputed from the post-sale lifetime spend, so a sale that crosses a
// threshold promotes the customer immediately.
func (s *Service) RecordSale(ctx context.Context, name, phone string, amount float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Walk-in"
	}
	customer, err := s.repo.UpsertSale(ctx, name, phone, amount, TierFor(amount))
	if err != nil {
		return fmt.Errorf("record customer sale: %w", err)
	}

	newTier := TierFor(customer.TotalSpent)
	if newTier != customer.LoyaltyTier {
		if err := s.repo.UpdateTier(ctx, customer.ID, newTier); err != nil {
			return fmt.Errorf("promote customer tier: %w", err)
		}
		s.logger.Info("customer tier changed",
			"phone", phone, "from", customer.LoyaltyTier, "to", newTier)
	}
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Customer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) GetByPhone(ctx context.Context, phone string) (Customer, error) {
	return s.repo.GetByPhone(ctx, strings.TrimSpace(phone))
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
