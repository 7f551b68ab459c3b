package payment

import "time"

const EventPaymentRecorded = "PaymentRecorded"

// PaymentRecorded is appended for every accepted payment. The fulfillment
// engine consumes it to settle the order; failed attempts never produce one.
type PaymentRecorded struct {
	PaymentID   string    `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	Status      Status    `json:"status"`
	Method      Method    `json:"method"`
	AmountCents int64     `json:"amount_cents"`
	RecordedAt  time.Time `json:"recorded_at"`
}
