package ratings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
)

// Repository persists per-user service ratings. One row per (user, service);
// Upsert overwrites the stars on conflict.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, rating *models.Rating) error
	Find(ctx context.Context, userID, serviceID uuid.UUID) (*models.Rating, error)
	FindService(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a rating repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "service_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stars", "updated_at"}),
		}).
		Create(rating).Error
}

func (r *repository) Find(ctx context.Context, userID, serviceID uuid.UUID) (*models.Rating, error) {
	var row models.Rating
	err := r.db.WithContext(ctx).
		First(&row, "user_id = ? AND service_id = ?", userID, serviceID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var row models.Service
	if err := r.db.WithContext(ctx).First(&row, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
