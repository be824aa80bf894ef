package billing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	"github.com/pay2u-app/pay2u-backend/pkg/pagination"
)

// Repository exposes the persistence surface the charge path needs. WithTx
// rebinds it to a transaction so lookups and writes share one scope.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSubscriptionForUpdate(ctx context.Context, userID, serviceID uuid.UUID) (*models.Subscription, error)
	FindService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	FindTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error)
	CountPayments(ctx context.Context, userID, serviceID uuid.UUID) (int64, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	SettlePayment(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, providerRef *string) error
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context, opts paymentQuery) ([]models.Payment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a billing repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

type paymentQuery struct {
	userID uuid.UUID
	cursor *pagination.Cursor
	limit  int
}

func terminalSubscriptionStatuses() []enums.SubscriptionStatus {
	return []enums.SubscriptionStatus{
		enums.SubscriptionStatusCancelled,
		enums.SubscriptionStatusLapsed,
	}
}

// FindSubscriptionForUpdate loads the live subscription for the pair and
// locks its row, serializing concurrent charges for the same pair.
func (r *repository) FindSubscriptionForUpdate(ctx context.Context, userID, serviceID uuid.UUID) (*models.Subscription, error) {
	var row models.Subscription
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND service_id = ? AND status NOT IN ?", userID, serviceID, terminalSubscriptionStatuses()).
		First(&row).Error
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

func (r *repository) FindTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error) {
	var row models.Tariff
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CountPayments counts payments recorded for the (user, service) pair.
func (r *repository) CountPayments(ctx context.Context, userID, serviceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// SettlePayment records the provider's verdict on a pending payment.
func (r *repository) SettlePayment(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, providerRef *string) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"provider_ref": providerRef,
		}).Error
}

func (r *repository) FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var row models.Payment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListPayments returns user-scoped payment history using cursor pagination.
func (r *repository) ListPayments(ctx context.Context, opts paymentQuery) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("user_id = ?", opts.userID)

	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Payment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
