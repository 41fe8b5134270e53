package billing

import (
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrBannedProduct        = errors.New("product is banned from sale")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrNoActiveCheckout     = errors.New("no active checkout for register")
)

// PaymentMethod enumerates the accepted tender types.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether the payment method is one of the accepted values.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentUPI, PaymentCard:
		return true
	}
	return false
}

// LineItem is a cart-resident reference to a product plus the requested
// quantity and the unit price captured at add time.
type LineItem struct {
	ProductID int64   `json:"product_id"`
	Barcode   string  `json:"barcode"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Unit      string  `json:"unit"`
}

// LineTotal returns the unrounded extended price of the line.
func (li LineItem) LineTotal() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// Sale is an immutable record of a completed transaction.
type Sale struct {
	ID            int64         `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	CustomerName  *string       `json:"customer_name,omitempty"`
	CustomerPhone *string       `json:"customer_phone,omitempty"`
	Subtotal      float64       `json:"subtotal"`
	GSTAmount     float64       `json:"gst_amount"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time     `json:"created_at"`
	Items         []SaleItem    `json:"items,omitempty"`
}

// SaleItem captures one product's contribution to a Sale. The product name
// is copied at sale time rather than joined live.
type SaleItem struct {
	ID          int64     `json:"id"`
	SaleID      int64     `json:"sale_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// CheckoutState tracks the payment flow position for a register.
type CheckoutState string

const (
	// StateDetails collects customer details and the payment method.
	StateDetails CheckoutState = "details"
	// StateInvoice previews totals and waits for print/send/complete.
	StateInvoice CheckoutState = "invoice"
)

// Checkout is the per-register payment flow. It is re-enterable: completing
// a sale resets it to StateDetails.
type Checkout struct {
	State         CheckoutState `json:"state"`
	CustomerName  string        `json:"customer_name,omitempty"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	Totals        Totals        `json:"totals"`
}

// StartCheckoutRequest carries the Details-step input.
type StartCheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"omitempty,max=200"`
	CustomerPhone string `json:"customer_phone" validate:"omitempty,max=20"`
}

// AddItemRequest identifies the product to add to a cart.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// UpdateQuantityRequest carries a requested quantity for a cart line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
