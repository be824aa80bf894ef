package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// Repository exposes subscription persistence. WithTx rebinds it to a
// transaction scope.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
	Update(ctx context.Context, subscription *models.Subscription) error
	FindService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	FindTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error)
	ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.Subscription, error)
	ListDueForRenewal(ctx context.Context, from, to time.Time, limit int) ([]models.Subscription, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time, limit int) ([]models.Subscription, error)
	PromoCodeInUse(ctx context.Context, code string) (bool, error)
	SetPromoCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a subscription repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error) {
	if err := r.db.WithContext(ctx).Create(subscription).Error; err != nil {
		return nil, err
	}
	return subscription, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var row models.Subscription
	if err := r.db.WithContext(ctx).Preload("Service").Preload("Tariff").First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var row models.Subscription
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Service").Preload("Tariff").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Save(subscription).Error
}

func (r *repository) FindService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var row models.Service
	if err := r.db.WithContext(ctx).First(&row, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error) {
	var row models.Tariff
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListOverdue returns billable subscriptions whose next payment date has
// passed, oldest due first.
func (r *repository) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status IN ? AND next_payment_date < ?", billableStatuses(), asOf).
		Order("next_payment_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDueForRenewal returns autopayment subscriptions whose next charge falls
// inside the window.
func (r *repository) ListDueForRenewal(ctx context.Context, from, to time.Time, limit int) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status IN ? AND autopayment = ? AND next_payment_date >= ? AND next_payment_date < ?", billableStatuses(), true, from, to).
		Order("next_payment_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListExpiringBetween returns billable subscriptions expiring in the window,
// for reminder fan-out.
func (r *repository) ListExpiringBetween(ctx context.Context, from, to time.Time, limit int) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status IN ? AND next_payment_date >= ? AND next_payment_date < ?", billableStatuses(), from, to).
		Order("next_payment_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PromoCodeInUse reports whether any subscription still carries an unexpired
// copy of the code.
func (r *repository) PromoCodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("promo_code = ? AND promo_code_expiry > now()", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) SetPromoCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"promo_code":        code,
			"promo_code_expiry": expiry,
		}).Error
}

func billableStatuses() []enums.SubscriptionStatus {
	return []enums.SubscriptionStatus{
		enums.SubscriptionStatusTrial,
		enums.SubscriptionStatusActive,
	}
}
