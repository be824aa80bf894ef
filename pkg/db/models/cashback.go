package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cashback is the reward accrued for exactly one successful payment.
type Cashback struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID uuid.UUID       `gorm:"column:payment_id;type:uuid;not null;uniqueIndex"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Percent   int             `gorm:"column:percent;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
