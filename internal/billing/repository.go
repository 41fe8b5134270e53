package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karvyapaar/karvyapaar/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSale inserts the sale and its items in one transaction. The sale
// row goes first because the items reference its generated ID; any item
// failure rolls the whole sale back.
func (r *Repository) CreateSale(ctx context.Context, sale Sale, items []SaleItem) (*Sale, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO sales (invoice_number, customer_name, customer_phone, subtotal, gst_amount, total, payment_method, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at`,
			sale.InvoiceNumber, sale.CustomerName, sale.CustomerPhone,
			sale.Subtotal, sale.GSTAmount, sale.Total, string(sale.PaymentMethod), sale.CreatedAt,
		)
		if err := row.Scan(&sale.ID, &sale.CreatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("invoice %s: %w", sale.InvoiceNumber, ErrDuplicateInvoice)
			}
			return fmt.Errorf("insert sale: %w", err)
		}

		for i := range items {
			items[i].SaleID = sale.ID
			items[i].CreatedAt = sale.CreatedAt
			if err := tx.QueryRow(ctx, `
				INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, total_price, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				items[i].SaleID, items[i].ProductID, items[i].ProductName,
				items[i].Quantity, items[i].UnitPrice, items[i].TotalPrice, items[i].CreatedAt,
			).Scan(&items[i].ID); err != nil {
				return fmt.Errorf("insert sale item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sale.Items = items
	return &sale, nil
}

// ErrDuplicateInvoice indicates an invoice number collision at insert time.
var ErrDuplicateInvoice = errors.New("invoice number already exists")

const saleColumns = `id, invoice_number, customer_name, customer_phone, subtotal, gst_amount, total, payment_method, created_at`

// ListSales returns the most recent sales, newest first.
func (r *Repository) ListSales(ctx context.Context, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSales(rows)
}

// ListSalesBetween returns sales created within [from, to], oldest first.
func (r *Repository) ListSalesBetween(ctx context.Context, from, to time.Time) ([]Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSales(rows)
}

// GetSale fetches one sale with its items.
func (r *Repository) GetSale(ctx context.Context, id int64) (*Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.ListSaleItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

// ListSaleItems returns the items belonging to one sale.
func (r *Repository) ListSaleItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, total_price, created_at
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSaleItems(rows)
}

// ListSaleItemsBetween returns the items of every sale created within the
// range, used by the report aggregations.
func (r *Repository) ListSaleItemsBetween(ctx context.Context, from, to time.Time) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT si.id, si.sale_id, si.product_id, si.product_name, si.quantity, si.unit_price, si.total_price, si.created_at
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.created_at >= $1 AND s.created_at <= $2
		ORDER BY si.id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSaleItems(rows)
}

func scanSales(rows pgx.Rows) ([]Sale, error) {
	var out []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sale)
	}
	return out, rows.Err()
}

func scanSale(row pgx.Row) (*Sale, error) {
	var (
		s      Sale
		method string
	)
	if err := row.Scan(&s.ID, &s.InvoiceNumber, &s.CustomerName, &s.CustomerPhone,
		&s.Subtotal, &s.GSTAmount, &s.Total, &method, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.PaymentMethod = PaymentMethod(method)
	return &s, nil
}

func scanSaleItems(rows pgx.Rows) ([]SaleItem, error) {
	var out []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
