package app

import (
	"context"
	"time"

	"github.com/brgy-egov/assets-api/internal/clock"
	"github.com/brgy-egov/assets-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentRepository is the storage surface for recording payments.
// NextReceiptNumber must allocate from a serialized counter so concurrent
// payments can never collide.
type PaymentRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetRequestForUpdate(ctx context.Context, id string) (domain.AssetRequest, error)
	NextReceiptNumber(ctx context.Context) (int64, error)
	MarkPaid(ctx context.Context, id, receiptNumber string, amountPaid decimal.Decimal, paidAt time.Time) error
}

type PaymentService struct {
	repo     PaymentRepository
	clock    clock.Clock
	notifier Notifier
}

func NewPaymentService(repo PaymentRepository, clk clock.Clock, opts ...PaymentServiceOption) *PaymentService {
	svc := &PaymentService{
		repo:     repo,
		clock:    clk,
		notifier: NopNotifier{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PaymentServiceOption func(*PaymentService)

func WithPaymentNotifier(n Notifier) PaymentServiceOption {
	return func(s *PaymentService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// Pay records payment capture for an approved request. The amount must equal
// the frozen total exactly; partial payment is not supported. A second call on
// an already-paid request is rejected rather than re-issuing a receipt.
func (s *PaymentService) Pay(ctx context.Context, requestID string, amountPaid decimal.Decimal) (domain.Receipt, error) {
	if requestID == "" {
		return domain.Receipt{}, domain.ErrInvalidID
	}
	if amountPaid.IsNegative() {
		return domain.Receipt{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	var receipt domain.Receipt
	var requesterID string

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.GetRequestForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		requesterID = req.RequesterID

		if req.PaymentStatus == domain.PaymentStatusPaid {
			return domain.ErrAlreadyPaid
		}
		if !req.Status.CanTransitionTo(domain.RequestStatusPaid) {
			return &domain.InvalidTransitionError{Current: req.Status, Requested: domain.RequestStatusPaid}
		}
		if !amountPaid.Equal(req.Total) {
			return &domain.AmountMismatchError{Expected: req.Total, Got: amountPaid}
		}

		seq, err := s.repo.NextReceiptNumber(txCtx)
		if err != nil {
			return err
		}
		number := domain.FormatReceiptNumber(seq)

		if err := s.repo.MarkPaid(txCtx, requestID, number, amountPaid, now); err != nil {
			return err
		}

		receipt = domain.Receipt{
			Number:     number,
			RequestID:  requestID,
			AmountPaid: amountPaid,
			Items:      req.Items,
			PaidAt:     now,
		}
		return nil
	})
	if err != nil {
		return domain.Receipt{}, err
	}

	s.notifier.Notify(ctx, Event{
		RequestID:   requestID,
		RequesterID: requesterID,
		OldStatus:   domain.RequestStatusApproved,
		NewStatus:   domain.RequestStatusPaid,
		OccurredAt:  now,
		Payload:     map[string]any{"receipt_number": receipt.Number, "amount_paid": amountPaid.StringFixed(2)},
	})
	return receipt, nil
}
