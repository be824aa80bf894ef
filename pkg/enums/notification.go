package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypePaymentReceipt       NotificationType = "payment_receipt"
	NotificationTypeTrialStarted         NotificationType = "trial_started"
	NotificationTypeSubscriptionExpiring NotificationType = "subscription_expiring"
	NotificationTypeSubscriptionLapsed   NotificationType = "subscription_lapsed"
	NotificationTypePromoCodeIssued      NotificationType = "promo_code_issued"
)

var validNotificationTypes = []NotificationType{
	NotificationTypePaymentReceipt,
	NotificationTypeTrialStarted,
	NotificationTypeSubscriptionExpiring,
	NotificationTypeSubscriptionLapsed,
	NotificationTypePromoCodeIssued,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
