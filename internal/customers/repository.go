package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists customer aggregates.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Customer, error)
	GetByPhone(ctx context.Context, phone string) (Customer, error)
	UpsertSale(ctx context.Context, name, phone string, amount float64, tier LoyaltyTier) (Customer, error)
	UpdateTier(ctx context.Context, id int64, tier LoyaltyTier) error
	Stats(ctx context.Context) (Stats, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const customerColumns = `id, name, phone, email, total_orders, total_spent, loyalty_tier, created_at, updated_at`

func (r *pgRepository) List(ctx context.Context, limit, offset int) ([]Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY total_spent DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *pgRepository) GetByPhone(ctx context.Context, phone string) (Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// UpsertSale folds a completed sale into the customer keyed by phone,
// creating the row on first purchase. The tier passed in is recomputed
// by the service from the post-sale spend.
func (r *pgRepository) UpsertSale(ctx context.Context, name, phone string, amount float64, tier LoyaltyTier) (Customer, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO customers (name, phone, total_orders, total_spent, loyalty_tier)
		 VALUES ($1, $2, 1, $3, $4)
		 ON CONFLICT (phone) DO UPDATE SET
		   name = EXCLUDED.name,
		   total_orders = customers.total_orders + 1,
		   total_spent = customers.total_spent + EXCLUDED.total_spent,
		   updated_at = now()
		 RETURNING `+customerColumns,
		name, phone, amount, tier)
	c, err := scanCustomer(row)
	if err != nil {
		return Customer{}, fmt.Errorf("upsert customer sale: %w", err)
	}
	return c, nil
}

func (r *pgRepository) UpdateTier(ctx context.Context, id int64, tier LoyaltyTier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET loyalty_tier = $2, updated_at = now() WHERE id = $1`, id, tier)
	if err != nil {
		return fmt.Errorf("update customer tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{TierCounts: make(map[LoyaltyTier]int)}

	row := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_spent), 0) FROM customers`)
	if err := row.Scan(&stats.TotalCustomers, &stats.TotalRevenue); err != nil {
		return Stats{}, fmt.Errorf("customer stats: %w", err)
	}
	if stats.TotalCustomers > 0 {
		stats.AverageSpend = stats.TotalRevenue / float64(stats.TotalCustomers)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT loyalty_tier, COUNT(*) FROM customers GROUP BY loyalty_tier`)
	if err != nil {
		return Stats{}, fmt.Errorf("customer tier counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tier LoyaltyTier
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return Stats{}, fmt.Errorf("scan tier count: %w", err)
		}
		stats.TierCounts[tier] = count
	}
	return stats, rows.Err()
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.TotalOrders, &c.TotalSpent,
		&c.LoyaltyTier, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
