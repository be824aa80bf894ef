package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// Payment records a single charge against a subscription, including the
// schedule for the charge that follows it.
type Payment struct {
	ID                uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SubscriptionID    uuid.UUID           `gorm:"column:subscription_id;type:uuid;not null;index"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ServiceID         uuid.UUID           `gorm:"column:service_id;type:uuid;not null;index"`
	TariffID          uuid.UUID           `gorm:"column:tariff_id;type:uuid;not null"`
	Amount            int64               `gorm:"column:amount;not null"`
	Status            enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	Trial             bool                `gorm:"column:trial;not null;default:false"`
	AcceptRules       bool                `gorm:"column:accept_rules;not null;default:false"`
	ProviderRef       *string             `gorm:"column:provider_ref;type:text"`
	PaidAt            *time.Time          `gorm:"column:paid_at"`
	NextPaymentDate   *time.Time          `gorm:"column:next_payment_date"`
	NextPaymentAmount *int64              `gorm:"column:next_payment_amount"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Subscription *Subscription `gorm:"foreignKey:SubscriptionID"`
}
