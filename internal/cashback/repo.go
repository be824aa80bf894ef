package cashback

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
)

// Repository persists cashback accruals. WithTx rebinds it to a transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cashback *models.Cashback) (*models.Cashback, error)
	FindByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Cashback, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Cashback, error)
	SumByUser(ctx context.Context, userID uuid.UUID) (string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a cashback repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, cashback *models.Cashback) (*models.Cashback, error) {
	if err := r.db.WithContext(ctx).Create(cashback).Error; err != nil {
		return nil, err
	}
	return cashback, nil
}

func (r *repository) FindByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Cashback, error) {
	var row models.Cashback
	if err := r.db.WithContext(ctx).First(&row, "payment_id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Cashback, error) {
	var rows []models.Cashback
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumByUser returns the user's accrued balance as a decimal string.
func (r *repository) SumByUser(ctx context.Context, userID uuid.UUID) (string, error) {
	var sum *string
	err := r.db.WithContext(ctx).Model(&models.Cashback{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)::text").
		Scan(&sum).Error
	if err != nil {
		return "", err
	}
	if sum == nil {
		return "0", nil
	}
	return *sum, nil
}
