package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/brgy-egov/assets-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogRepository reads the asset catalog. Admin CRUD happens outside this
// engine; UpsertAsset exists for seeding a fresh deployment.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) GetAsset(ctx context.Context, id string) (domain.Asset, error) {
	const query = `
SELECT id, name, description, category, unit_price::text, stock, status, created_at, updated_at
FROM assets
WHERE id = $1`

	var a domain.Asset
	var price string
	err := r.queryRow(ctx, query, id).
		Scan(&a.ID, &a.Name, &a.Description, &a.Category, &price, &a.Stock, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Asset{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Asset{}, domain.ErrAssetNotFound
		}
		return domain.Asset{}, fmt.Errorf("get asset: %w", err)
	}
	a.UnitPrice, err = decimal.NewFromString(price)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("parse unit price: %w", err)
	}

	a.OpenDates, err = r.openDates(ctx, id)
	if err != nil {
		return domain.Asset{}, err
	}
	return a, nil
}

func (r *CatalogRepository) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	const query = `
SELECT id, name, description, category, unit_price::text, stock, status, created_at, updated_at
FROM assets
ORDER BY name`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		var price string
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Category, &price, &a.Stock, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		if a.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	for i := range assets {
		if assets[i].OpenDates, err = r.openDates(ctx, assets[i].ID); err != nil {
			return nil, err
		}
	}
	return assets, nil
}

func (r *CatalogRepository) openDates(ctx context.Context, assetID string) ([]time.Time, error) {
	const query = `SELECT day FROM asset_open_dates WHERE asset_id = $1 ORDER BY day`

	rows, err := r.query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("open dates: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan open date: %w", err)
		}
		days = append(days, domain.DateOnly(d))
	}
	return days, rows.Err()
}

// CommittedQuantity is the display-side ledger read. It takes no lock; commit
// decisions go through RequestRepository.LockLedger instead.
func (r *CatalogRepository) CommittedQuantity(ctx context.Context, assetID string, day time.Time) (int, error) {
	const query = `SELECT COALESCE(committed, 0) FROM asset_date_ledger WHERE asset_id = $1 AND day = $2`

	var committed int
	err := r.queryRow(ctx, query, assetID, domain.DateOnly(day)).Scan(&committed)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("committed quantity: %w", err)
	}
	return committed, nil
}

// UpsertAsset inserts or updates a seed asset keyed by name and replaces its
// open-date set. Returns the asset id.
func (r *CatalogRepository) UpsertAsset(ctx context.Context, a domain.Asset) (string, error) {
	const stmt = `
INSERT INTO assets (name, description, category, unit_price, stock, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET
	description = EXCLUDED.description,
	category = EXCLUDED.category,
	unit_price = EXCLUDED.unit_price,
	stock = EXCLUDED.stock,
	status = EXCLUDED.status,
	updated_at = NOW()
RETURNING id`

	status := a.Status
	if status == "" {
		status = domain.AssetStatusInStock
	}

	var id string
	err := r.queryRow(ctx, stmt, a.Name, a.Description, a.Category, a.UnitPrice.StringFixed(2), a.Stock, status).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert asset: %w", err)
	}

	if _, err := r.exec(ctx, `DELETE FROM asset_open_dates WHERE asset_id = $1`, id); err != nil {
		return "", fmt.Errorf("reset open dates: %w", err)
	}
	for _, day := range a.OpenDates {
		if _, err := r.exec(ctx,
			`INSERT INTO asset_open_dates (asset_id, day) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			id, domain.DateOnly(day),
		); err != nil {
			return "", fmt.Errorf("insert open date: %w", err)
		}
	}
	return id, nil
}

func (r *CatalogRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CatalogRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CatalogRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CatalogRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
