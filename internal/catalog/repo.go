package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// Repository reads catalog reference data: categories, services, and tariffs.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type serviceQuery struct {
	categoryID  uuid.UUID
	popularOnly bool
	newerThan   *time.Time
}

// ListCategories returns all categories ordered by their display position.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).Order("position ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCategory returns a single category by id.
func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var row models.Category
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListServices returns active services matching the query, newest first.
func (r *Repository) ListServices(ctx context.Context, opts serviceQuery) ([]models.Service, error) {
	query := r.db.WithContext(ctx).Model(&models.Service{}).Where("is_active = ?", true)

	if opts.categoryID != uuid.Nil {
		query = query.Where("category_id = ?", opts.categoryID)
	}
	if opts.popularOnly {
		query = query.Where("is_popular = ?", true)
	}
	if opts.newerThan != nil {
		query = query.Where("created_at >= ?", *opts.newerThan)
	}

	var rows []models.Service
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindService returns a single active service with its category preloaded.
func (r *Repository) FindService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var row models.Service
	if err := r.db.WithContext(ctx).Preload("Category").First(&row, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListTariffs returns the active tariffs of a service, shortest plan first.
func (r *Repository) ListTariffs(ctx context.Context, serviceID uuid.UUID) ([]models.Tariff, error) {
	var rows []models.Tariff
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND is_active = ?", serviceID, true).
		Order("duration_months ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindTariff returns a single tariff by id.
func (r *Repository) FindTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error) {
	var row models.Tariff
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CountBillableSubscriptions counts the live subscriptions of a service.
func (r *Repository) CountBillableSubscriptions(ctx context.Context, serviceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("service_id = ? AND status IN ?", serviceID, []enums.SubscriptionStatus{
			enums.SubscriptionStatusTrial,
			enums.SubscriptionStatusActive,
		}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SetPopular updates the popular flag of a service.
func (r *Repository) SetPopular(ctx context.Context, serviceID uuid.UUID, popular bool) error {
	return r.db.WithContext(ctx).Model(&models.Service{}).
		Where("id = ?", serviceID).
		Update("is_popular", popular).Error
}

// AverageRating returns the mean star rating of a service, zero when unrated.
func (r *Repository) AverageRating(ctx context.Context, serviceID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Where("service_id = ?", serviceID).
		Select("AVG(stars)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
