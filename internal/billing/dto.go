package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// ChargeInput captures a subscription payment request.
type ChargeInput struct {
	UserID      uuid.UUID
	ServiceID   uuid.UUID
	TariffID    uuid.UUID
	AcceptRules bool
}

// ChargeResult is the outcome of a successful charge: the amount taken now
// and the schedule for the charge that follows.
type ChargeResult struct {
	PaymentID         uuid.UUID `json:"payment_id"`
	Total             int64     `json:"total"`
	IsTrial           bool      `json:"is_trial"`
	NextPaymentDate   time.Time `json:"next_payment_date"`
	NextPaymentAmount int64     `json:"next_payment_amount"`
}

// ListPaymentsParams describe the payment-history list inputs.
type ListPaymentsParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
}

// PaymentSummary is the list representation of a payment.
type PaymentSummary struct {
	ID                uuid.UUID           `json:"id"`
	SubscriptionID    uuid.UUID           `json:"subscription_id"`
	ServiceID         uuid.UUID           `json:"service_id"`
	Amount            int64               `json:"amount"`
	Status            enums.PaymentStatus `json:"status"`
	IsTrial           bool                `json:"is_trial"`
	PaidAt            *time.Time          `json:"paid_at,omitempty"`
	NextPaymentDate   *time.Time          `json:"next_payment_date,omitempty"`
	NextPaymentAmount *int64              `json:"next_payment_amount,omitempty"`
}

// PaymentList wraps the paginated history plus the next page cursor.
type PaymentList struct {
	Payments   []PaymentSummary `json:"payments"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
