package enums

import "fmt"

// SubscriptionStatus tracks a subscription through its lifecycle.
type SubscriptionStatus string

const (
	SubscriptionStatusAwaitingActivation SubscriptionStatus = "awaiting_activation"
	SubscriptionStatusTrial              SubscriptionStatus = "trial"
	SubscriptionStatusActive             SubscriptionStatus = "active"
	SubscriptionStatusCancelled          SubscriptionStatus = "cancelled"
	SubscriptionStatusLapsed             SubscriptionStatus = "lapsed"
)

var validSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusAwaitingActivation,
	SubscriptionStatusTrial,
	SubscriptionStatusActive,
	SubscriptionStatusCancelled,
	SubscriptionStatusLapsed,
}

// String implements fmt.Stringer.
func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s SubscriptionStatus) IsValid() bool {
	for _, candidate := range validSubscriptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsBillable reports whether the subscription is in a state that accrues
// charges on its next payment date.
func (s SubscriptionStatus) IsBillable() bool {
	return s == SubscriptionStatusTrial || s == SubscriptionStatusActive
}

// ParseSubscriptionStatus converts raw input into a SubscriptionStatus.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	for _, candidate := range validSubscriptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription status %q", value)
}
