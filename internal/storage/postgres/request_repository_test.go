package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brgy-egov/assets-api/internal/app"
	"github.com/brgy-egov/assets-api/internal/clock"
	"github.com/brgy-egov/assets-api/internal/domain"
	"github.com/brgy-egov/assets-api/internal/storage/postgres"
	"github.com/brgy-egov/assets-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRequestRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := postgres.NewRequestRepository(pool)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("150.50")

	assetID := testutil.InsertAsset(t, ctx, pool, "Tent", price, 5, day)

	newRequest := func(qty int) domain.AssetRequest {
		itemID := uuid.NewString()
		reqID := uuid.NewString()
		return domain.AssetRequest{
			ID:            reqID,
			RequesterID:   "resident-1",
			Status:        domain.RequestStatusSubmitted,
			PaymentStatus: domain.PaymentStatusUnpaid,
			Total:         price.Mul(decimal.NewFromInt(int64(qty))),
			AmountPaid:    decimal.Zero,
			CreatedAt:     time.Now().UTC(),
			Items: []domain.AssetRequestItem{{
				ID:        itemID,
				RequestID: reqID,
				AssetID:   assetID,
				Day:       day,
				Quantity:  qty,
				UnitPrice: price,
			}},
		}
	}

	t.Run("ledger lock and adjust", func(t *testing.T) {
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			committed, err := repo.LockLedger(txCtx, assetID, day)
			require.NoError(t, err)
			require.Zero(t, committed)
			return repo.AddCommitted(txCtx, assetID, day, 3)
		})
		require.NoError(t, err)

		err = repo.WithTx(ctx, func(txCtx context.Context) error {
			committed, err := repo.LockLedger(txCtx, assetID, day)
			require.NoError(t, err)
			require.Equal(t, 3, committed)
			return repo.AddCommitted(txCtx, assetID, day, -3)
		})
		require.NoError(t, err)
	})

	t.Run("request round trip", func(t *testing.T) {
		req := newRequest(2)
		require.NoError(t, repo.WithTx(ctx, func(txCtx context.Context) error {
			return repo.CreateRequest(txCtx, req)
		}))

		got, err := repo.GetRequest(ctx, req.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestStatusSubmitted, got.Status)
		require.True(t, got.Total.Equal(req.Total))
		require.Len(t, got.Items, 1)
		require.Equal(t, 2, got.Items[0].Quantity)
		require.True(t, got.Items[0].Day.Equal(day))
		require.Nil(t, got.ReceiptNumber)

		byRequester, err := repo.ListRequestsByRequester(ctx, "resident-1")
		require.NoError(t, err)
		require.NotEmpty(t, byRequester)

		_, err = repo.GetRequest(ctx, uuid.NewString())
		require.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("status and payment updates", func(t *testing.T) {
		req := newRequest(1)
		require.NoError(t, repo.CreateRequest(ctx, req))

		now := time.Now().UTC()
		require.NoError(t, repo.UpdateStatus(ctx, req.ID, domain.RequestStatusApproved, &now))

		got, err := repo.GetRequest(ctx, req.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestStatusApproved, got.Status)
		require.NotNil(t, got.ApprovedAt)

		require.NoError(t, repo.MarkPaid(ctx, req.ID, "OR-000042", req.Total, now))
		got, err = repo.GetRequest(ctx, req.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestStatusPaid, got.Status)
		require.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus)
		require.NotNil(t, got.ReceiptNumber)
		require.Equal(t, "OR-000042", *got.ReceiptNumber)
		require.True(t, got.AmountPaid.Equal(req.Total))
	})

	t.Run("receipt numbers are monotonic", func(t *testing.T) {
		first, err := repo.NextReceiptNumber(ctx)
		require.NoError(t, err)
		second, err := repo.NextReceiptNumber(ctx)
		require.NoError(t, err)
		require.Greater(t, second, first)
	})

	t.Run("delete cascades to items", func(t *testing.T) {
		req := newRequest(1)
		require.NoError(t, repo.CreateRequest(ctx, req))
		require.NoError(t, repo.DeleteRequest(ctx, req.ID))

		_, err := repo.GetRequest(ctx, req.ID)
		require.ErrorIs(t, err, domain.ErrRequestNotFound)

		var itemCount int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM asset_request_items WHERE request_id = $1`, req.ID,
		).Scan(&itemCount))
		require.Zero(t, itemCount)
	})
}

// Concurrent submissions for the same (asset, date) must serialize on the
// ledger row: with stock 5 and two carts of 3, exactly one may win.
func TestConcurrentSubmitSerializes(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assetID := testutil.InsertAsset(t, ctx, pool, "Tent", decimal.RequireFromString("150.50"), 5, day)

	repo := postgres.NewRequestRepository(pool)
	svc := app.NewReservationService(repo, clock.NewSystem())

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, app.SubmitInput{
				RequesterID: "resident-1",
				Lines:       []app.SubmitLine{{AssetID: assetID, Day: day, Quantity: 3}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var capErr *domain.CapacityError
		require.True(t, errors.As(err, &capErr), "unexpected error: %v", err)
	}
	require.Equal(t, 1, succeeded)

	var committed int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT committed FROM asset_date_ledger WHERE asset_id = $1 AND day = $2`, assetID, day,
	).Scan(&committed))
	require.Equal(t, 3, committed)
}
