package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Service handles the banned register and regulatory alerts.
type Service struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

func NewService(logger *slog.Logger, repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{logger: logger, repo: repo, now: now}
}

// IsBanned reports whether a product name matches the banned register.
// Matching is case-insensitive on the exact name.
func (s *Service) IsBanned(ctx context.Context, name string) (bool, error) {
	_, err := s.repo.FindBannedByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("check banned register: %w", err)
	}
	return true, nil
}

func (s *Service) ListBanned(ctx context.Context) ([]BannedMedicine, error) {
	return s.repo.ListBanned(ctx)
}

func (s *Service) AddBanned(ctx context.Context, req AddBannedMedicineRequest) (BannedMedicine, error) {
	bannedDate := s.now()
	if req.BannedDate != nil {
		bannedDate = *req.BannedDate
	}
	item := BannedMedicine{
		Name:       strings.TrimSpace(req.Name),
		Reason:     strings.TrimSpace(req.Reason),
		Source:     strings.TrimSpace(req.Source),
		BannedDate: bannedDate,
	}
	created, err := s.repo.AddBanned(ctx, item)
	if err != nil {
		return BannedMedicine{}, err
	}
	s.logger.Info("banned medicine added", "name", created.Name, "source", created.Source)
	return created, nil
}

func (s *Service) RemoveBanned(ctx context.Context, id int64) error {
	return s.repo.RemoveBanned(ctx, id)
}

func (s *Service) ListAlerts(ctx context.Context, unreadOnly bool) ([]RegulatoryAlert, error) {
	return s.repo.ListAlerts(ctx, unreadOnly)
}

func (s *Service) CreateAlert(ctx context.Context, req CreateAlertRequest) (RegulatoryAlert, error) {
	alert := RegulatoryAlert{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Source:      strings.TrimSpace(req.Source),
		Severity:    AlertSeverity(req.Severity),
	}
	created, err := s.repo.CreateAlert(ctx, alert)
	if err != nil {
		return RegulatoryAlert{}, err
	}
	s.logger.Info("regulatory alert created", "title", created.Title, "severity", created.Severity)
	return created, nil
}

func (s *Service) MarkAlertRead(ctx context.Context, id int64) error {
	return s.repo.MarkAlertRead(ctx, id)
}
