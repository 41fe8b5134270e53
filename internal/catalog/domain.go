package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Product is a catalog entry. gst_rate is stored per product but billing
// currently applies the uniform rate; the column is kept for GST filings.
type Product struct {
	ID         int64      `json:"id"`
	Barcode    string     `json:"barcode"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Price      float64    `json:"price"`
	CostPrice  float64    `json:"cost_price"`
	Stock      int        `json:"stock"`
	MinStock   int        `json:"min_stock"`
	Unit       string     `json:"unit"`
	GSTRate    float64    `json:"gst_rate"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	BatchNo    *string    `json:"batch_number,omitempty"`
	IsBanned   bool       `json:"is_banned"`
	BanReason  *string    `json:"ban_reason,omitempty"`
	BanSource  *string    `json:"ban_source,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// LowOnStock reports whether the product is at or below its floor.
func (p Product) LowOnStock() bool {
	return p.Stock <= p.MinStock
}

// CreateProductRequest carries the fields for a new product.
type CreateProductRequest struct {
	Barcode   string     `json:"barcode" validate:"required,max=50"`
	Name      string     `json:"name" validate:"required,max=200"`
	Category  string     `json:"category" validate:"required,max=100"`
	Price     float64    `json:"price" validate:"gte=0,lte=9999999"`
	CostPrice float64    `json:"cost_price" validate:"gte=0,lte=9999999"`
	Stock     int        `json:"stock" validate:"gte=0"`
	MinStock  int        `json:"min_stock" validate:"gte=0"`
	Unit      string     `json:"unit" validate:"required,max=50"`
	GSTRate   float64    `json:"gst_rate" validate:"gte=0,lte=100"`
	Expiry    *time.Time `json:"expiry_date,omitempty"`
	BatchNo   *string    `json:"batch_number,omitempty" validate:"omitempty,max=100"`
	IsBanned  bool       `json:"is_banned"`
	BanReason *string    `json:"ban_reason,omitempty" validate:"omitempty,max=500"`
	BanSource *string    `json:"ban_source,omitempty" validate:"omitempty,max=200"`
}

// UpdateProductRequest applies partial updates; nil fields are untouched.
type UpdateProductRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Category  *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	Price     *float64   `json:"price,omitempty" validate:"omitempty,gte=0,lte=9999999"`
	CostPrice *float64   `json:"cost_price,omitempty" validate:"omitempty,gte=0,lte=9999999"`
	Stock     *int       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	MinStock  *int       `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	Unit      *string    `json:"unit,omitempty" validate:"omitempty,max=50"`
	GSTRate   *float64   `json:"gst_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Expiry    *time.Time `json:"expiry_date,omitempty"`
	BatchNo   *string    `json:"batch_number,omitempty" validate:"omitempty,max=100"`
	IsBanned  *bool      `json:"is_banned,omitempty"`
	BanReason *string    `json:"ban_reason,omitempty" validate:"omitempty,max=500"`
	BanSource *string    `json:"ban_source,omitempty" validate:"omitempty,max=200"`
}

// ListFilters narrows product listings.
type ListFilters struct {
	Search   string
	Category string
	Page     int
	Limit    int
}
