package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Phone     string     `gorm:"type:text;not null;uniqueIndex"`
	Email     *string    `gorm:"type:text"`
	FirstName string     `gorm:"column:first_name;not null"`
	LastName  string     `gorm:"column:last_name;not null"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	LastSeen  *time.Time `gorm:"column:last_seen_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
