package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a user's 1-5 star score for a service, one row per (user, service).
type Rating struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_ratings_user_service"`
	ServiceID uuid.UUID `gorm:"column:service_id;type:uuid;not null;uniqueIndex:idx_ratings_user_service"`
	Stars     int       `gorm:"column:stars;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
