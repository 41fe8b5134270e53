package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service provides business logic for catalog operations.
type Service struct {
	repo Repository
}

// NewService constructs a catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a filtered, paginated product listing.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// Get retrieves a product by ID.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, errors.New("invalid product ID")
	}
	return s.repo.Get(ctx, id)
}

// GetByBarcode resolves a scanned barcode to a product.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, errors.New("barcode is required")
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	existing, err := s.repo.GetByBarcode(ctx, req.Barcode)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Product{}, fmt.Errorf("check existing barcode: %w", err)
	}
	if err == nil && existing.ID != 0 {
		return Product{}, fmt.Errorf("barcode %s: %w", req.Barcode, ErrAlreadyExists)
	}

	product := Product{
		Barcode:    strings.TrimSpace(req.Barcode),
		Name:       strings.TrimSpace(req.Name),
		Category:   strings.TrimSpace(req.Category),
		Price:      req.Price,
		CostPrice:  req.CostPrice,
		Stock:      req.Stock,
		MinStock:   req.MinStock,
		Unit:       req.Unit,
		GSTRate:    req.GSTRate,
		ExpiryDate: req.Expiry,
		BatchNo:    req.BatchNo,
		IsBanned:   req.IsBanned,
		BanReason:  req.BanReason,
		BanSource:  req.BanSource,
	}
	return s.repo.Create(ctx, product)
}

// Update applies the non-nil fields from the request.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Product{}, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CostPrice != nil {
		updates["cost_price"] = *req.CostPrice
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.MinStock != nil {
		updates["min_stock"] = *req.MinStock
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.GSTRate != nil {
		updates["gst_rate"] = *req.GSTRate
	}
	if req.Expiry != nil {
		updates["expiry_date"] = *req.Expiry
	}
	if req.BatchNo != nil {
		updates["batch_number"] = *req.BatchNo
	}
	if req.IsBanned != nil {
		updates["is_banned"] = *req.IsBanned
	}
	if req.BanReason != nil {
		updates["ban_reason"] = *req.BanReason
	}
	if req.BanSource != nil {
		updates["ban_source"] = *req.BanSource
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return Product{}, err
		}
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.Delete(ctx, id)
}

// LowStock lists products at or below their minimum stock level.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.repo.LowStock(ctx)
}

// Expiring lists products whose expiry falls within the given window.
func (s *Service) Expiring(ctx context.Context, within time.Duration) ([]Product, error) {
	return s.repo.Expiring(ctx, time.Now().Add(within))
}

// DecrementStock records quantity sold against the product.
func (s *Service) DecrementStock(ctx context.Context, id int64, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return s.repo.DecrementStock(ctx, id, quantity)
}
