package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// Subscription links a user to a service tariff and carries the lifecycle
// state plus the next scheduled charge. At most one billable subscription may
// exist per (user, service) pair; a partial unique index enforces it.
type Subscription struct {
	ID                uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	ServiceID         uuid.UUID                `gorm:"column:service_id;type:uuid;not null;index"`
	TariffID          *uuid.UUID               `gorm:"column:tariff_id;type:uuid"`
	Status            enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'awaiting_activation'"`
	Trial             bool                     `gorm:"column:trial;not null;default:false"`
	Autopayment       bool                     `gorm:"column:autopayment;not null;default:false"`
	PromoCode         *string                  `gorm:"column:promo_code;type:varchar(12)"`
	PromoCodeExpiry   *time.Time               `gorm:"column:promo_code_expiry"`
	ActivatedAt       *time.Time               `gorm:"column:activated_at"`
	ExpiryDate        *time.Time               `gorm:"column:expiry_date"`
	NextPaymentDate   *time.Time               `gorm:"column:next_payment_date"`
	NextPaymentAmount *int64                   `gorm:"column:next_payment_amount"`
	CancelledAt       *time.Time               `gorm:"column:cancelled_at"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Service *Service `gorm:"foreignKey:ServiceID"`
	Tariff  *Tariff  `gorm:"foreignKey:TariffID"`
}
