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

// RequestRepository persists booking requests and owns the ledger rows. Every
// ledger mutation happens under a row lock taken by LockLedger inside the
// caller's transaction.
type RequestRepository struct {
	pool    *pgxpool.Pool
	catalog *CatalogRepository
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{
		pool:    pool,
		catalog: NewCatalogRepository(pool),
	}
}

func (r *RequestRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RequestRepository) GetAsset(ctx context.Context, id string) (domain.Asset, error) {
	return r.catalog.GetAsset(ctx, id)
}

// LockLedger ensures a ledger row exists for (asset, date) and locks it until
// the surrounding transaction ends. Concurrent submissions for the same key
// serialize here; disjoint keys proceed independently.
func (r *RequestRepository) LockLedger(ctx context.Context, assetID string, day time.Time) (int, error) {
	day = domain.DateOnly(day)

	_, err := r.exec(ctx, `
INSERT INTO asset_date_ledger (asset_id, day, committed)
VALUES ($1, $2, 0)
ON CONFLICT (asset_id, day) DO NOTHING`, assetID, day)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("ensure ledger row: %w", err)
	}

	var committed int
	err = r.queryRow(ctx, `
SELECT committed FROM asset_date_ledger
WHERE asset_id = $1 AND day = $2
FOR UPDATE`, assetID, day).Scan(&committed)
	if err != nil {
		return 0, fmt.Errorf("lock ledger: %w", err)
	}
	return committed, nil
}

// AddCommitted adjusts a locked ledger row. The CHECK constraint on committed
// backstops the service-level stock check.
func (r *RequestRepository) AddCommitted(ctx context.Context, assetID string, day time.Time, delta int) error {
	const stmt = `
UPDATE asset_date_ledger
SET committed = committed + $3
WHERE asset_id = $1 AND day = $2`

	tag, err := r.exec(ctx, stmt, assetID, domain.DateOnly(day), delta)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("ledger underflow for asset %s: %w", assetID, err)
		}
		return fmt.Errorf("add committed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add committed: ledger row missing for asset %s", assetID)
	}
	return nil
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req domain.AssetRequest) error {
	const headerStmt = `
INSERT INTO asset_requests (id, requester_id, status, total, payment_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, headerStmt,
		req.ID,
		req.RequesterID,
		req.Status,
		req.Total.StringFixed(2),
		req.PaymentStatus,
		req.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create request: %w", err)
	}

	const itemStmt = `
INSERT INTO asset_request_items (id, request_id, asset_id, day, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6)`

	for _, it := range req.Items {
		_, err := r.exec(ctx, itemStmt,
			it.ID,
			req.ID,
			it.AssetID,
			domain.DateOnly(it.Day),
			it.Quantity,
			it.UnitPrice.StringFixed(2),
		)
		if err != nil {
			return fmt.Errorf("create request item: %w", err)
		}
	}
	return nil
}

func (r *RequestRepository) GetRequest(ctx context.Context, id string) (domain.AssetRequest, error) {
	return r.getRequest(ctx, id, false)
}

func (r *RequestRepository) GetRequestForUpdate(ctx context.Context, id string) (domain.AssetRequest, error) {
	return r.getRequest(ctx, id, true)
}

func (r *RequestRepository) getRequest(ctx context.Context, id string, forUpdate bool) (domain.AssetRequest, error) {
	query := `
SELECT id, requester_id, status, total::text, payment_status, receipt_number,
       amount_paid::text, created_at, approved_at, paid_at
FROM asset_requests
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	req, err := scanRequest(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.AssetRequest{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.AssetRequest{}, domain.ErrRequestNotFound
		}
		return domain.AssetRequest{}, fmt.Errorf("get request: %w", err)
	}

	req.Items, err = r.itemsFor(ctx, req.ID)
	if err != nil {
		return domain.AssetRequest{}, err
	}
	return req, nil
}

func (r *RequestRepository) ListRequestsByRequester(ctx context.Context, requesterID string) ([]domain.AssetRequest, error) {
	const query = `
SELECT id, requester_id, status, total::text, payment_status, receipt_number,
       amount_paid::text, created_at, approved_at, paid_at
FROM asset_requests
WHERE requester_id = $1
ORDER BY created_at DESC`

	return r.listRequests(ctx, query, requesterID)
}

func (r *RequestRepository) ListRequests(ctx context.Context) ([]domain.AssetRequest, error) {
	const query = `
SELECT id, requester_id, status, total::text, payment_status, receipt_number,
       amount_paid::text, created_at, approved_at, paid_at
FROM asset_requests
ORDER BY created_at DESC`

	return r.listRequests(ctx, query)
}

func (r *RequestRepository) listRequests(ctx context.Context, query string, args ...any) ([]domain.AssetRequest, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.AssetRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	for i := range requests {
		if requests[i].Items, err = r.itemsFor(ctx, requests[i].ID); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (r *RequestRepository) itemsFor(ctx context.Context, requestID string) ([]domain.AssetRequestItem, error) {
	const query = `
SELECT id, request_id, asset_id, day, quantity, unit_price::text
FROM asset_request_items
WHERE request_id = $1
ORDER BY asset_id, day`

	rows, err := r.query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("request items: %w", err)
	}
	defer rows.Close()

	var items []domain.AssetRequestItem
	for rows.Next() {
		var it domain.AssetRequestItem
		var price string
		if err := rows.Scan(&it.ID, &it.RequestID, &it.AssetID, &it.Day, &it.Quantity, &price); err != nil {
			return nil, fmt.Errorf("scan request item: %w", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse item price: %w", err)
		}
		it.Day = domain.DateOnly(it.Day)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, approvedAt *time.Time) error {
	const stmt = `
UPDATE asset_requests
SET status = $2, approved_at = COALESCE($3, approved_at)
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status, approvedAt)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// NextReceiptNumber allocates from a dedicated sequence so numbers stay
// unique and monotonic under concurrent payments.
func (r *RequestRepository) NextReceiptNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.queryRow(ctx, `SELECT nextval('receipt_numbers')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next receipt number: %w", err)
	}
	return n, nil
}

func (r *RequestRepository) MarkPaid(ctx context.Context, id, receiptNumber string, amountPaid decimal.Decimal, paidAt time.Time) error {
	const stmt = `
UPDATE asset_requests
SET status = $2, payment_status = $3, receipt_number = $4, amount_paid = $5, paid_at = $6
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		id,
		domain.RequestStatusPaid,
		domain.PaymentStatusPaid,
		receiptNumber,
		amountPaid.StringFixed(2),
		paidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("receipt number collision: %w", err)
		}
		return fmt.Errorf("mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// DeleteRequest removes the header; items cascade. Callers release the ledger
// first in the same transaction.
func (r *RequestRepository) DeleteRequest(ctx context.Context, id string) error {
	tag, err := r.exec(ctx, `DELETE FROM asset_requests WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func scanRequest(row pgx.Row) (domain.AssetRequest, error) {
	var req domain.AssetRequest
	var total string
	var amountPaid *string
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.Status,
		&total,
		&req.PaymentStatus,
		&req.ReceiptNumber,
		&amountPaid,
		&req.CreatedAt,
		&req.ApprovedAt,
		&req.PaidAt,
	)
	if err != nil {
		return domain.AssetRequest{}, err
	}
	if req.Total, err = decimal.NewFromString(total); err != nil {
		return domain.AssetRequest{}, fmt.Errorf("parse total: %w", err)
	}
	req.AmountPaid = decimal.Zero
	if amountPaid != nil {
		if req.AmountPaid, err = decimal.NewFromString(*amountPaid); err != nil {
			return domain.AssetRequest{}, fmt.Errorf("parse amount paid: %w", err)
		}
	}
	return req, nil
}

func (r *RequestRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RequestRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *RequestRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
