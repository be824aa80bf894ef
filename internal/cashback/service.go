package cashback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
)

// Service accrues and reports cashback. Accruals are one-to-one with
// payments; the unique index on payment_id backs that up.
type Service interface {
	Accrue(ctx context.Context, tx *gorm.DB, payment *models.Payment, percent int) (*models.Cashback, error)
	Balance(ctx context.Context, userID uuid.UUID) (*BalanceView, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]AccrualView, error)
}

// BalanceView is the user's total accrued cashback.
type BalanceView struct {
	Total string `json:"total"`
}

// AccrualView is one accrual line in the user's history.
type AccrualView struct {
	ID        uuid.UUID `json:"id"`
	PaymentID uuid.UUID `json:"payment_id"`
	Amount    string    `json:"amount"`
	Percent   int       `json:"percent"`
}

type service struct {
	repo Repository
}

// NewService builds a cashback service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cashback repository required")
	}
	return &service{repo: repo}, nil
}

// Accrue computes and stores the reward for a settled payment:
// amount = payment total * percent / 100, kept at two decimal places.
func (s *service) Accrue(ctx context.Context, tx *gorm.DB, payment *models.Payment, percent int) (*models.Cashback, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if payment == nil || payment.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment required")
	}
	if percent <= 0 || percent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashback percent out of range")
	}
	if payment.Trial {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "trial payments accrue no cashback")
	}

	amount := decimal.NewFromInt(payment.Amount).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(2)

	row := &models.Cashback{
		PaymentID: payment.ID,
		UserID:    payment.UserID,
		Amount:    amount,
		Percent:   percent,
	}
	created, err := s.repo.WithTx(tx).Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cashback")
	}
	return created, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*BalanceView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	total, err := s.repo.SumByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum cashback")
	}
	return &BalanceView{Total: total}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]AccrualView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cashback")
	}
	views := make([]AccrualView, len(rows))
	for i, row := range rows {
		views[i] = AccrualView{
			ID:        row.ID,
			PaymentID: row.PaymentID,
			Amount:    row.Amount.StringFixed(2),
			Percent:   row.Percent,
		}
	}
	return views, nil
}
