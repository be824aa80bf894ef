package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSubscription OutboxAggregateType = "subscription"
	AggregatePayment      OutboxAggregateType = "payment"
	AggregateCashback     OutboxAggregateType = "cashback"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSubscription,
	AggregatePayment,
	AggregateCashback,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSubscriptionCreated   OutboxEventType = "subscription_created"
	EventSubscriptionActivated OutboxEventType = "subscription_activated"
	EventSubscriptionCancelled OutboxEventType = "subscription_cancelled"
	EventSubscriptionLapsed    OutboxEventType = "subscription_lapsed"
	EventSubscriptionExpiring  OutboxEventType = "subscription_expiring_soon"
	EventTariffChanged         OutboxEventType = "tariff_changed"
	EventAutopaymentChanged    OutboxEventType = "autopayment_changed"
	EventPaymentSucceeded      OutboxEventType = "payment_succeeded"
	EventPaymentFailed         OutboxEventType = "payment_failed"
	EventCashbackAccrued       OutboxEventType = "cashback_accrued"
	EventPromoCodeIssued       OutboxEventType = "promo_code_issued"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSubscriptionCreated,
	EventSubscriptionActivated,
	EventSubscriptionCancelled,
	EventSubscriptionLapsed,
	EventSubscriptionExpiring,
	EventTariffChanged,
	EventAutopaymentChanged,
	EventPaymentSucceeded,
	EventPaymentFailed,
	EventCashbackAccrued,
	EventPromoCodeIssued,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
