package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/brgy-egov/assets-api/internal/clock"
	"github.com/brgy-egov/assets-api/internal/domain"
	"github.com/shopspring/decimal"
)

func TestPaymentService_Pay(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 14, 11, 0, 0, 0, time.UTC)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("301.00")

	t.Run("records payment and issues a receipt", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		seedRequest(repo, "req-1", domain.RequestStatusApproved, item("tent", day, 2, "150.50"))
		notifier := &captureNotifier{}
		svc := NewPaymentService(repo, clock.NewFixed(now), WithPaymentNotifier(notifier))

		receipt, err := svc.Pay(context.Background(), "req-1", total)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if receipt.Number != "OR-000001" {
			t.Fatalf("expected receipt OR-000001, got %s", receipt.Number)
		}
		if !receipt.AmountPaid.Equal(total) {
			t.Fatalf("expected amount %s, got %s", total, receipt.AmountPaid)
		}
		if !receipt.PaidAt.Equal(now) {
			t.Fatalf("expected paid_at %v, got %v", now, receipt.PaidAt)
		}
		if len(receipt.Items) != 1 {
			t.Fatalf("expected receipt to carry the request items")
		}

		stored, _ := repo.GetRequest(context.Background(), "req-1")
		if stored.Status != domain.RequestStatusPaid || stored.PaymentStatus != domain.PaymentStatusPaid {
			t.Fatalf("expected stored request paid, got %s/%s", stored.Status, stored.PaymentStatus)
		}
		if stored.ReceiptNumber == nil || *stored.ReceiptNumber != "OR-000001" {
			t.Fatalf("expected stored receipt number, got %v", stored.ReceiptNumber)
		}

		if len(notifier.events) != 1 || notifier.events[0].NewStatus != domain.RequestStatusPaid {
			t.Fatalf("unexpected events: %+v", notifier.events)
		}
	})

	t.Run("rejects an amount that is not the frozen total", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		seedRequest(repo, "req-1", domain.RequestStatusApproved, item("tent", day, 2, "150.50"))
		svc := NewPaymentService(repo, clock.NewFixed(now))

		_, err := svc.Pay(context.Background(), "req-1", decimal.RequireFromString("300.00"))
		var amErr *domain.AmountMismatchError
		if !errors.As(err, &amErr) {
			t.Fatalf("expected AmountMismatchError, got %v", err)
		}
		if !amErr.Expected.Equal(total) {
			t.Fatalf("expected reported total %s, got %s", total, amErr.Expected)
		}
		stored, _ := repo.GetRequest(context.Background(), "req-1")
		if stored.PaymentStatus != domain.PaymentStatusUnpaid {
			t.Fatalf("expected request left unpaid")
		}
		if repo.nextReceipt != 0 {
			t.Fatalf("expected no receipt number consumed, got %d", repo.nextReceipt)
		}
	})

	t.Run("rejects payment before approval", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		seedRequest(repo, "req-1", domain.RequestStatusSubmitted, item("tent", day, 2, "150.50"))
		svc := NewPaymentService(repo, clock.NewFixed(now))

		_, err := svc.Pay(context.Background(), "req-1", total)
		var trErr *domain.InvalidTransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
		if trErr.Current != domain.RequestStatusSubmitted || trErr.Requested != domain.RequestStatusPaid {
			t.Fatalf("unexpected detail: %+v", trErr)
		}
	})

	t.Run("second payment is rejected, not re-receipted", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		seedRequest(repo, "req-1", domain.RequestStatusApproved, item("tent", day, 2, "150.50"))
		svc := NewPaymentService(repo, clock.NewFixed(now))

		if _, err := svc.Pay(context.Background(), "req-1", total); err != nil {
			t.Fatalf("first pay: %v", err)
		}
		_, err := svc.Pay(context.Background(), "req-1", total)
		if err != domain.ErrAlreadyPaid {
			t.Fatalf("expected ErrAlreadyPaid, got %v", err)
		}
		if repo.nextReceipt != 1 {
			t.Fatalf("expected exactly one receipt number consumed, got %d", repo.nextReceipt)
		}
	})

	t.Run("receipt numbers are distinct and monotonic across requests", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc := NewPaymentService(repo, clock.NewFixed(now))

		seen := make(map[string]bool)
		for i := 1; i <= 5; i++ {
			id := fmt.Sprintf("req-%d", i)
			seedRequest(repo, id, domain.RequestStatusApproved, item("tent", day.AddDate(0, 0, i), 2, "150.50"))
			receipt, err := svc.Pay(context.Background(), id, total)
			if err != nil {
				t.Fatalf("pay %s: %v", id, err)
			}
			if seen[receipt.Number] {
				t.Fatalf("duplicate receipt number %s", receipt.Number)
			}
			seen[receipt.Number] = true
			want := domain.FormatReceiptNumber(int64(i))
			if receipt.Number != want {
				t.Fatalf("expected %s, got %s", want, receipt.Number)
			}
		}
	})

	t.Run("rejects a negative amount", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc := NewPaymentService(repo, clock.NewFixed(now))
		if _, err := svc.Pay(context.Background(), "req-1", decimal.RequireFromString("-1")); err != domain.ErrInvalidAmount {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})
}
