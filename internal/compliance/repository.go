package compliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the banned register and regulatory alerts.
type Repository interface {
	ListBanned(ctx context.Context) ([]BannedMedicine, error)
	FindBannedByName(ctx context.Context, name string) (BannedMedicine, error)
	AddBanned(ctx context.Context, item BannedMedicine) (BannedMedicine, error)
	RemoveBanned(ctx context.Context, id int64) error

	ListAlerts(ctx context.Context, unreadOnly bool) ([]RegulatoryAlert, error)
	CreateAlert(ctx context.Context, alert RegulatoryAlert) (RegulatoryAlert, error)
	MarkAlertRead(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const bannedColumns = `id, name, reason, source, banned_date, created_at`

func (r *pgRepository) ListBanned(ctx context.Context) ([]BannedMedicine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bannedColumns+` FROM banned_medicines ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list banned medicines: %w", err)
	}
	defer rows.Close()
	return scanBanned(rows)
}

func (r *pgRepository) FindBannedByName(ctx context.Context, name string) (BannedMedicine, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+bannedColumns+` FROM banned_medicines WHERE lower(name) = lower($1)`, name)
	var item BannedMedicine
	if err := row.Scan(&item.ID, &item.Name, &item.Reason, &item.Source, &item.BannedDate, &item.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BannedMedicine{}, ErrNotFound
		}
		return BannedMedicine{}, fmt.Errorf("find banned medicine: %w", err)
	}
	return item, nil
}

func (r *pgRepository) AddBanned(ctx context.Context, item BannedMedicine) (BannedMedicine, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO banned_medicines (name, reason, source, banned_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		item.Name, item.Reason, item.Source, item.BannedDate)
	if err := row.Scan(&item.ID, &item.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return BannedMedicine{}, ErrAlreadyExists
		}
		return BannedMedicine{}, fmt.Errorf("add banned medicine: %w", err)
	}
	return item, nil
}

func (r *pgRepository) RemoveBanned(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM banned_medicines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove banned medicine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const alertColumns = `id, title, description, source, severity, is_read, created_at`

func (r *pgRepository) ListAlerts(ctx context.Context, unreadOnly bool) ([]RegulatoryAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM regulatory_alerts`
	if unreadOnly {
		query += ` WHERE is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list regulatory alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]RegulatoryAlert, 0)
	for rows.Next() {
		var a RegulatoryAlert
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Source, &a.Severity, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan regulatory alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *pgRepository) CreateAlert(ctx context.Context, alert RegulatoryAlert) (RegulatoryAlert, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO regulatory_alerts (title, description, source, severity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_read, created_at`,
		alert.Title, alert.Description, alert.Source, alert.Severity)
	if err := row.Scan(&alert.ID, &alert.IsRead, &alert.CreatedAt); err != nil {
		return RegulatoryAlert{}, fmt.Errorf("create regulatory alert: %w", err)
	}
	return alert, nil
}

func (r *pgRepository) MarkAlertRead(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE regulatory_alerts SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBanned(rows pgx.Rows) ([]BannedMedicine, error) {
	items := make([]BannedMedicine, 0)
	for rows.Next() {
		var item BannedMedicine
		if err := rows.Scan(&item.ID, &item.Name, &item.Reason, &item.Source, &item.BannedDate, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan banned medicine: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
