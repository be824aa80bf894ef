package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/internal/catalog"
	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox/payloads"
	"github.com/pay2u-app/pay2u-backend/pkg/pagination"
)

// scheduleDaysPerMonth spaces the renewal schedule: the next payment falls
// 30 days per subscribed month after the charge.
const scheduleDaysPerMonth = 30

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type lifecycleApplier interface {
	ApplyPayment(ctx context.Context, tx *gorm.DB, subscription *models.Subscription, payment *models.Payment) error
}

type cashbackAccruer interface {
	Accrue(ctx context.Context, tx *gorm.DB, payment *models.Payment, percent int) (*models.Cashback, error)
}

type popularRecalculator interface {
	RecalculatePopular(ctx context.Context, serviceID uuid.UUID) error
}

// Service composes the tariff catalog, the trial policy, and the lifecycle
// into the charge operation, plus payment-history reads.
type Service interface {
	Charge(ctx context.Context, input ChargeInput) (*ChargeResult, error)
	GetPayment(ctx context.Context, userID, paymentID uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context, params ListPaymentsParams) (*PaymentList, error)
}

// ServiceParams groups dependencies for the billing service.
type ServiceParams struct {
	Repo        Repository
	Tx          txRunner
	Gateway     Gateway
	Lifecycle   lifecycleApplier
	Cashback    cashbackAccruer
	Outbox      outboxPublisher
	Catalog     popularRecalculator
	Logger      *logger.Logger
	TrialAmount int64
}

type service struct {
	repo        Repository
	tx          txRunner
	trial       TrialPolicy
	gateway     Gateway
	lifecycle   lifecycleApplier
	cashback    cashbackAccruer
	outbox      outboxPublisher
	catalog     popularRecalculator
	logg        *logger.Logger
	trialAmount int64
	now         func() time.Time
}

// NewService builds a billing service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if params.Lifecycle == nil {
		return nil, fmt.Errorf("lifecycle is required")
	}
	if params.Cashback == nil {
		return nil, fmt.Errorf("cashback accruer is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox is required")
	}
	if params.TrialAmount <= 0 {
		return nil, fmt.Errorf("trial amount must be positive")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		gateway:     params.Gateway,
		lifecycle:   params.Lifecycle,
		cashback:    params.Cashback,
		outbox:      params.Outbox,
		catalog:     params.Catalog,
		logg:        params.Logger,
		trialAmount: params.TrialAmount,
		now:         time.Now,
	}, nil
}

// Charge runs the full billing operation for one subscription payment. The
// trial check, the charge record, the cashback accrual, and the lifecycle
// transition all commit or roll back together; the locked subscription row
// serializes concurrent first payments for the same pair.
func (s *service) Charge(ctx context.Context, input ChargeInput) (*ChargeResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_id is required")
	}
	if input.TariffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tariff_kind_id is required")
	}
	if !input.AcceptRules {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terms must be accepted")
	}

	var result *ChargeResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subscription, err := repo.FindSubscriptionForUpdate(ctx, input.UserID, input.ServiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock subscription")
		}

		svc, err := repo.FindService(ctx, input.ServiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
		}

		tariff, err := repo.FindTariff(ctx, input.TariffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "tariff not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup tariff")
		}
		if tariff.ServiceID != svc.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "tariff not found for service")
		}

		total, err := catalog.TotalCost(tariff.MonthlyPrice, tariff.Duration)
		if err != nil {
			return err
		}

		isTrial, err := s.trial.IsEligible(ctx, repo, input.UserID, input.ServiceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check trial eligibility")
		}

		amount := total
		if isTrial {
			amount = s.trialAmount
		}

		paidAt := s.now().UTC()
		nextPaymentDate := paidAt.AddDate(0, 0, scheduleDaysPerMonth*tariff.Duration.Months())
		nextPaymentAmount := total

		payment := &models.Payment{
			SubscriptionID:    subscription.ID,
			UserID:            input.UserID,
			ServiceID:         input.ServiceID,
			TariffID:          tariff.ID,
			Amount:            amount,
			Status:            enums.PaymentStatusPending,
			Trial:             isTrial,
			AcceptRules:       true,
			PaidAt:            &paidAt,
			NextPaymentDate:   &nextPaymentDate,
			NextPaymentAmount: &nextPaymentAmount,
		}
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		confirmation, err := s.gateway.Confirm(ctx, ChargeRequest{
			PaymentID: payment.ID,
			UserID:    input.UserID,
			Amount:    amount,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "confirm charge with provider")
		}
		payment.Status = enums.PaymentStatusSucceeded
		payment.ProviderRef = &confirmation.ProviderRef
		if err := repo.SettlePayment(ctx, payment.ID, payment.Status, payment.ProviderRef); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle payment")
		}

		if err := s.lifecycle.ApplyPayment(ctx, tx, subscription, payment); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentSucceeded,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Source: "api"},
			Data: payloads.PaymentSucceededEvent{
				PaymentID:         payment.ID,
				SubscriptionID:    subscription.ID,
				UserID:            input.UserID,
				ServiceID:         input.ServiceID,
				Amount:            amount,
				Trial:             isTrial,
				PaidAt:            paidAt,
				NextPaymentDate:   &nextPaymentDate,
				NextPaymentAmount: &nextPaymentAmount,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit payment event")
		}

		if !isTrial && svc.CashbackPercent > 0 {
			accrued, err := s.cashback.Accrue(ctx, tx, payment, svc.CashbackPercent)
			if err != nil {
				return err
			}
			cashbackEvent := outbox.DomainEvent{
				EventType:     enums.EventCashbackAccrued,
				AggregateType: enums.AggregateCashback,
				AggregateID:   accrued.ID,
				Version:       1,
				Actor:         &outbox.ActorRef{UserID: input.UserID, Source: "api"},
				Data: payloads.CashbackAccruedEvent{
					CashbackID: accrued.ID,
					PaymentID:  payment.ID,
					UserID:     input.UserID,
					Amount:     accrued.Amount.StringFixed(2),
					Percent:    accrued.Percent,
				},
			}
			if err := s.outbox.Emit(ctx, tx, cashbackEvent); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit cashback event")
			}
		}

		result = &ChargeResult{
			PaymentID:         payment.ID,
			Total:             amount,
			IsTrial:           isTrial,
			NextPaymentDate:   nextPaymentDate,
			NextPaymentAmount: nextPaymentAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Popularity is derived data; a failed recalculation must not undo a
	// committed charge.
	if s.catalog != nil {
		if err := s.catalog.RecalculatePopular(ctx, input.ServiceID); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithServiceID(ctx, input.ServiceID.String()), "recalculate popular failed after charge")
		}
	}
	return result, nil
}

func (s *service) GetPayment(ctx context.Context, userID, paymentID uuid.UUID) (*models.Payment, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if paymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	payment, err := s.repo.FindPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup payment")
	}
	if payment.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context, params ListPaymentsParams) (*PaymentList, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := paymentQuery{
		userID: params.UserID,
		limit:  pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.ListPayments(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	payments := make([]PaymentSummary, len(rows))
	for i, row := range rows {
		payments[i] = PaymentSummary{
			ID:                row.ID,
			SubscriptionID:    row.SubscriptionID,
			ServiceID:         row.ServiceID,
			Amount:            row.Amount,
			Status:            row.Status,
			IsTrial:           row.Trial,
			PaidAt:            row.PaidAt,
			NextPaymentDate:   row.NextPaymentDate,
			NextPaymentAmount: row.NextPaymentAmount,
		}
	}

	return &PaymentList{
		Payments:   payments,
		NextCursor: nextCursor,
	}, nil
}
