package payment

import (
	"context"
	"errors"
	"time"

	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Payment"

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

type Method string

const (
	MethodCreditCard   Method = "credit_card"
	MethodDebitCard    Method = "debit_card"
	MethodPayPal       Method = "paypal"
	MethodBankTransfer Method = "bank_transfer"
)

var (
	// ErrPaymentFailed rejects failed attempts outright. "failed" belongs to
	// the status domain but is never a storable state: the caller gets this
	// error and no payment row exists.
	ErrPaymentFailed = errors.New("failed payments are not recorded")

	ErrInvalidStatus = errors.New("unknown payment status")
	ErrInvalidMethod = errors.New("unknown payment method")
	ErrInvalidAmount = errors.New("amount must not be negative")
)

func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusPending:
		return true
	}
	return false
}

func (m Method) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodBankTransfer:
		return true
	}
	return false
}

type Payment struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Status      Status    `json:"status"`
	Method      Method    `json:"method"`
	AmountCents int64     `json:"amount_cents"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Record validates and persists a payment attempt. All validation runs
// before the event is appended, so a rejected attempt leaves no trace.
func (s *Service) Record(ctx context.Context, orderID string, status Status, method Method, amountCents int64) (*Payment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if status == StatusFailed {
		return nil, ErrPaymentFailed
	}
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}
	if amountCents < 0 {
		return nil, ErrInvalidAmount
	}

	paymentID := uuid.New().String()
	now := time.Now()

	event := PaymentRecorded{
		PaymentID:   paymentID,
		OrderID:     orderID,
		Status:      status,
		Method:      method,
		AmountCents: amountCents,
		RecordedAt:  now,
	}

	if _, err := s.eventStore.Append(ctx, paymentID, AggregateType, EventPaymentRecorded, event); err != nil {
		return nil, err
	}

	return &Payment{
		ID:          paymentID,
		OrderID:     orderID,
		Status:      status,
		Method:      method,
		AmountCents: amountCents,
		RecordedAt:  now,
	}, nil
}
