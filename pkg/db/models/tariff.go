package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// Tariff is a billing plan for a service. MonthlyPrice is the base price of
// one month before the duration discount is applied.
type Tariff struct {
	ID           uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceID    uuid.UUID            `gorm:"column:service_id;type:uuid;not null;index"`
	Name         string               `gorm:"type:text;not null"`
	Description  *string              `gorm:"type:text"`
	MonthlyPrice int64                `gorm:"column:monthly_price;not null"`
	Duration     enums.TariffDuration `gorm:"column:duration_months;not null"`
	IsActive     bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Service *Service `gorm:"foreignKey:ServiceID"`
}
