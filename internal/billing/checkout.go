package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/karvyapaar/karvyapaar/internal/notify"
)

// ProductInfo is the catalog view billing needs when adding to a cart.
type ProductInfo struct {
	ID       int64
	Barcode  string
	Name     string
	Price    float64
	Unit     string
	Stock    int
	IsBanned bool
}

// CatalogPort supplies product lookups and stock updates.
type CatalogPort interface {
	ProductInfo(ctx context.Context, id int64) (ProductInfo, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

// CompliancePort answers whether a product name is on the banned register.
type CompliancePort interface {
	IsBanned(ctx context.Context, name string) (bool, error)
}

// CustomerPort records a completed sale against the customer book.
type CustomerPort interface {
	RecordSale(ctx context.Context, name, phone string, total float64) error
}

// SaleRepositoryPort persists completed sales.
type SaleRepositoryPort interface {
	CreateSale(ctx context.Context, sale Sale, items []SaleItem) (*Sale, error)
}

// CacheBumper invalidates cached report views after a sale lands.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// MetricsPort counts completed sales.
type MetricsPort interface {
	RecordSale(paymentMethod string, total float64)
}

// Service drives carts through the payment flow and out to persistence.
type Service struct {
	logger     *slog.Logger
	store      *CartStore
	repo       SaleRepositoryPort
	catalog    CatalogPort
	compliance CompliancePort
	customers  CustomerPort
	bumper     CacheBumper
	metrics    MetricsPort
	storeName  string
	storeGSTIN string
	now        func() time.Time
}

// ServiceConfig groups optional collaborators.
type ServiceConfig struct {
	Customers  CustomerPort
	Bumper     CacheBumper
	Metrics    MetricsPort
	StoreName  string
	StoreGSTIN string
	Now        func() time.Time
}

// NewService builds the billing service.
func NewService(logger *slog.Logger, store *CartStore, repo SaleRepositoryPort, catalog CatalogPort, compliance CompliancePort, cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	storeName := cfg.StoreName
	if storeName == "" {
		storeName = "karVyapaar"
	}
	return &Service{
		logger:     logger,
		store:      store,
		repo:       repo,
		catalog:    catalog,
		compliance: compliance,
		customers:  cfg.Customers,
		bumper:     cfg.Bumper,
		metrics:    cfg.Metrics,
		storeName:  storeName,
		storeGSTIN: cfg.StoreGSTIN,
		now:        now,
	}
}

// OpenRegister starts a new checkout session and returns its ID.
func (s *Service) OpenRegister() uuid.UUID {
	return s.store.Open()
}

// CloseRegister discards a session, its cart included.
func (s *Service) CloseRegister(id uuid.UUID) {
	s.store.Close(id)
}

// AddItem resolves the product and adds it to the register's cart. Banned
// products are rejected here, before the cart is touched: either the
// product's own ban flag or a name match on the banned register blocks it.
func (s *Service) AddItem(ctx context.Context, registerID uuid.UUID, productID int64) (AddOutcome, error) {
	info, err := s.catalog.ProductInfo(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("lookup product: %w", err)
	}
	if info.IsBanned {
		return "", ErrBannedProduct
	}
	if s.compliance != nil {
		banned, err := s.compliance.IsBanned(ctx, info.Name)
		if err != nil {
			return "", fmt.Errorf("check banned register: %w", err)
		}
		if banned {
			return "", ErrBannedProduct
		}
	}

	var outcome AddOutcome
	s.store.With(registerID, func(cart *Cart, _ **Checkout) {
		outcome = cart.Add(LineItem{
			ProductID: info.ID,
			Barcode:   info.Barcode,
			Name:      info.Name,
			UnitPrice: info.Price,
			Unit:      info.Unit,
		})
	})
	return outcome, nil
}

// UpdateQuantity floors the requested quantity at 1; unknown lines are
// silently ignored.
func (s *Service) UpdateQuantity(registerID uuid.UUID, productID int64, quantity int) {
	s.store.With(registerID, func(cart *Cart, _ **Checkout) {
		cart.UpdateQuantity(productID, quantity)
	})
}

// RemoveItem deletes a line; removing an absent line is a no-op.
func (s *Service) RemoveItem(registerID uuid.UUID, productID int64) {
	s.store.With(registerID, func(cart *Cart, _ **Checkout) {
		cart.Remove(productID)
	})
}

// ClearCart empties the register's cart.
func (s *Service) ClearCart(registerID uuid.UUID) {
	s.store.With(registerID, func(cart *Cart, _ **Checkout) {
		cart.Clear()
	})
}

// CartView returns the current lines and totals for a register.
func (s *Service) CartView(registerID uuid.UUID) ([]LineItem, Totals) {
	var (
		items  []LineItem
		totals Totals
	)
	s.store.With(registerID, func(cart *Cart, _ **Checkout) {
		items = cart.Items()
		totals = cart.Totals()
	})
	return items, totals
}

// StartCheckout moves the register from Details to Invoice: it validates
// the payment method, snapshots the totals and assigns the invoice number
// shown on the preview. Customer fields are optional free text.
func (s *Service) StartCheckout(registerID uuid.UUID, req StartCheckoutRequest) (*Checkout, error) {
	method := PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var (
		result *Checkout
		empty  bool
	)
	s.store.With(registerID, func(cart *Cart, checkout **Checkout) {
		if cart.Len() == 0 {
			empty = true
			return
		}
		co := &Checkout{
			State:         StateInvoice,
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			PaymentMethod: method,
			InvoiceNumber: NewInvoiceNumber(s.now()),
			Totals:        cart.Totals(),
		}
		*checkout = co
		result = co
	})
	if empty {
		return nil, ErrEmptyCart
	}
	return result, nil
}

// CancelCheckout abandons the payment flow. The cart is deliberately left
// intact: cancelling the flow is not clearing the cart.
func (s *Service) CancelCheckout(registerID uuid.UUID) {
	s.store.With(registerID, func(_ *Cart, checkout **Checkout) {
		*checkout = nil
	})
}

// WhatsAppLink builds the invoice notification deep link for the checkout
// in progress. The customer phone must normalize to at least 10 digits.
func (s *Service) WhatsAppLink(registerID uuid.UUID) (string, error) {
	var co *Checkout
	s.store.With(registerID, func(_ *Cart, checkout **Checkout) {
		co = *checkout
	})
	if co == nil || co.State != StateInvoice {
		return "", ErrNoActiveCheckout
	}
	link, err := notify.WhatsAppLink(co.CustomerPhone, notify.InvoiceMessage(s.storeName, co.InvoiceNumber, Round2(co.Totals.Total)))
	if err != nil {
		return "", ErrInvalidPhone
	}
	return link, nil
}

// Complete persists the sale. On success the cart is cleared and the flow
// resets; on failure both survive untouched so the operator can retry.
func (s *Service) Complete(ctx context.Context, registerID uuid.UUID) (*Sale, error) {
	var (
		co    *Checkout
		items []LineItem
	)
	s.store.With(registerID, func(cart *Cart, checkout **Checkout) {
		co = *checkout
		items = cart.Items()
	})
	if co == nil || co.State != StateInvoice {
		return nil, ErrNoActiveCheckout
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	totals := ComputeTotals(items)
	sale := Sale{
		InvoiceNumber: co.InvoiceNumber,
		Subtotal:      Round2(totals.Subtotal),
		GSTAmount:     Round2(totals.GST),
		Total:         Round2(totals.Total),
		PaymentMethod: co.PaymentMethod,
		CreatedAt:     s.now(),
	}
	if co.CustomerName != "" {
		name := co.CustomerName
		sale.CustomerName = &name
	}
	if co.CustomerPhone != "" {
		phone := co.CustomerPhone
		sale.CustomerPhone = &phone
	}

	saleItems := make([]SaleItem, 0, len(items))
	for _, item := range items {
		saleItems = append(saleItems, SaleItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  Round2(item.LineTotal()),
		})
	}

	created, err := s.repo.CreateSale(ctx, sale, saleItems)
	if err != nil {
		return nil, fmt.Errorf("persist sale: %w", err)
	}

	// Stock updates and customer aggregates run after the sale commits and
	// are not atomic with it. A failed decrement leaves the sale valid; it
	// is logged and reconciled by the low stock jobs.
	for _, item := range items {
		if err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn("decrement stock after sale",
				slog.String("invoice", created.InvoiceNumber),
				slog.Int64("product_id", item.ProductID),
				slog.Any("error", err))
		}
	}
	if s.customers != nil && co.CustomerPhone != "" {
		if err := s.customers.RecordSale(ctx, co.CustomerName, co.CustomerPhone, created.Total); err != nil {
			s.logger.Warn("record customer sale", slog.Any("error", err))
		}
	}
	if s.bumper != nil {
		if err := s.bumper.Bump(ctx); err != nil {
			s.logger.Warn("bump reports cache", slog.Any("error", err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSale(string(created.PaymentMethod), created.Total)
	}

	s.store.With(registerID, func(cart *Cart, checkout **Checkout) {
		cart.Clear()
		*checkout = nil
	})
	return created, nil
}
