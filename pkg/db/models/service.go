package models

import (
	"time"

	"github.com/google/uuid"
)

// Service is a partner subscription provider listed in the catalog.
type Service struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID      uuid.UUID `gorm:"column:category_id;type:uuid;not null;index"`
	Name            string    `gorm:"type:text;not null"`
	Slug            string    `gorm:"type:text;not null;uniqueIndex"`
	Description     *string   `gorm:"type:text"`
	LogoURL         *string   `gorm:"column:logo_url;type:text"`
	CashbackPercent int       `gorm:"column:cashback_percent;not null;default:0"`
	IsPopular       bool      `gorm:"column:is_popular;not null;default:false"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Category *Category `gorm:"foreignKey:CategoryID"`
}
