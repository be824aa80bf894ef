package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// SubscriptionCreatedEvent signals a new subscription awaiting its first payment.
type SubscriptionCreatedEvent struct {
	SubscriptionID uuid.UUID  `json:"subscription_id"`
	UserID         uuid.UUID  `json:"user_id"`
	ServiceID      uuid.UUID  `json:"service_id"`
	TariffID       *uuid.UUID `json:"tariff_id,omitempty"`
	Trial          bool       `json:"trial"`
}

// SubscriptionActivatedEvent is emitted once the first charge settles.
type SubscriptionActivatedEvent struct {
	SubscriptionID  uuid.UUID                `json:"subscription_id"`
	UserID          uuid.UUID                `json:"user_id"`
	ServiceID       uuid.UUID                `json:"service_id"`
	Status          enums.SubscriptionStatus `json:"status"`
	ExpiryDate      time.Time                `json:"expiry_date"`
	NextPaymentDate time.Time                `json:"next_payment_date"`
}

// SubscriptionCancelledEvent is emitted whenever a user cancels a subscription.
type SubscriptionCancelledEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	ServiceID      uuid.UUID `json:"service_id"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// SubscriptionLapsedEvent reports a subscription that passed its expiry unpaid.
type SubscriptionLapsedEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	ServiceID      uuid.UUID `json:"service_id"`
	ExpiredAt      time.Time `json:"expired_at"`
}

// SubscriptionExpiringEvent warns that the paid period ends soon.
type SubscriptionExpiringEvent struct {
	SubscriptionID      uuid.UUID `json:"subscription_id"`
	UserID              uuid.UUID `json:"user_id"`
	ServiceID           uuid.UUID `json:"service_id"`
	ExpiryDate          time.Time `json:"expiry_date"`
	DaysUntilExpiration int       `json:"days_until_expiration"`
}

// TariffChangedEvent is emitted when a subscription moves to another tariff.
type TariffChangedEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	OldTariffID    uuid.UUID `json:"old_tariff_id"`
	NewTariffID    uuid.UUID `json:"new_tariff_id"`
}

// AutopaymentChangedEvent reports the autopayment toggle flip.
type AutopaymentChangedEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	Enabled        bool      `json:"enabled"`
}

// PaymentSucceededEvent carries the settled charge and its follow-up schedule.
type PaymentSucceededEvent struct {
	PaymentID         uuid.UUID  `json:"payment_id"`
	SubscriptionID    uuid.UUID  `json:"subscription_id"`
	UserID            uuid.UUID  `json:"user_id"`
	ServiceID         uuid.UUID  `json:"service_id"`
	Amount            int64      `json:"amount"`
	Trial             bool       `json:"trial"`
	PaidAt            time.Time  `json:"paid_at"`
	NextPaymentDate   *time.Time `json:"next_payment_date,omitempty"`
	NextPaymentAmount *int64     `json:"next_payment_amount,omitempty"`
}

// PaymentFailedEvent reports a charge the provider declined.
type PaymentFailedEvent struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	Amount         int64     `json:"amount"`
	Reason         string    `json:"reason,omitempty"`
}

// CashbackAccruedEvent reports reward accrual for a settled payment.
type CashbackAccruedEvent struct {
	CashbackID uuid.UUID `json:"cashback_id"`
	PaymentID  uuid.UUID `json:"payment_id"`
	UserID     uuid.UUID `json:"user_id"`
	Amount     string    `json:"amount"`
	Percent    int       `json:"percent"`
}

// PromoCodeIssuedEvent carries the activation code for a paid subscription.
type PromoCodeIssuedEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	ServiceID      uuid.UUID `json:"service_id"`
	PromoCode      string    `json:"promo_code"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	UserID  uuid.UUID              `json:"user_id"`
	Type    enums.NotificationType `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
}
