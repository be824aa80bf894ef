package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/internal/catalog"
	dbpkg "github.com/pay2u-app/pay2u-backend/pkg/db"
	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox/payloads"
)

// liveSubscriptionConstraint is the partial unique index guarding one live
// subscription per (user, service) pair.
const liveSubscriptionConstraint = "uq_subscriptions_user_service_live"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type popularRecalculator interface {
	RecalculatePopular(ctx context.Context, serviceID uuid.UUID) error
}

// Service governs the subscription state machine: creation, cancellation,
// tariff changes, the autopayment flag, payment-driven transitions, and the
// lapse sweep.
type Service interface {
	Subscribe(ctx context.Context, userID, serviceID uuid.UUID) (*SubscriptionView, error)
	Unsubscribe(ctx context.Context, userID, subscriptionID uuid.UUID) error
	ChangeTariff(ctx context.Context, userID, subscriptionID, tariffID uuid.UUID) (*SubscriptionView, error)
	SetAutopayment(ctx context.Context, userID, subscriptionID uuid.UUID, enabled bool) (*SubscriptionView, error)
	ActivateAutopayment(ctx context.Context, userID, subscriptionID uuid.UUID) (*SubscriptionView, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]SubscriptionView, error)
	GetMine(ctx context.Context, userID, subscriptionID uuid.UUID) (*SubscriptionView, error)
	ApplyPayment(ctx context.Context, tx *gorm.DB, subscription *models.Subscription, payment *models.Payment) error
	LapseOverdue(ctx context.Context, batchSize int) (int, error)
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Catalog popularRecalculator
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	catalog popularRecalculator
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds a subscription lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox is required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		catalog: params.Catalog,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

// Subscribe creates an awaiting_activation subscription. The unique index on
// live rows makes concurrent duplicates an insert conflict rather than a
// read-then-write race.
func (s *service) Subscribe(ctx context.Context, userID, serviceID uuid.UUID) (*SubscriptionView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_id is required")
	}

	var created *models.Subscription
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindService(ctx, serviceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
		}

		subscription := &models.Subscription{
			UserID:    userID,
			ServiceID: serviceID,
			Status:    enums.SubscriptionStatusAwaitingActivation,
		}
		row, err := repo.Create(ctx, subscription)
		if err != nil {
			if dbpkg.IsUniqueViolation(err, liveSubscriptionConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "subscription already exists for service")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
		created = row

		event := outbox.DomainEvent{
			EventType:     enums.EventSubscriptionCreated,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   row.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: userID, Source: "api"},
			Data: payloads.SubscriptionCreatedEvent{
				SubscriptionID: row.ID,
				UserID:         userID,
				ServiceID:      serviceID,
				TariffID:       row.TariffID,
				Trial:          row.Trial,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	view := toView(*created)
	return &view, nil
}

// Unsubscribe cancels the subscription. The row stays behind as history;
// resubscribing later creates a fresh record.
func (s *service) Unsubscribe(ctx context.Context, userID, subscriptionID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if subscriptionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}

	var serviceID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subscription, err := s.lockOwned(ctx, repo, userID, subscriptionID)
		if err != nil {
			return err
		}
		if subscription.Status == enums.SubscriptionStatusCancelled || subscription.Status == enums.SubscriptionStatusLapsed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription already ended")
		}

		cancelledAt := s.now().UTC()
		subscription.Status = enums.SubscriptionStatusCancelled
		subscription.CancelledAt = &cancelledAt
		subscription.Autopayment = false
		if err := repo.Update(ctx, subscription); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel subscription")
		}
		serviceID = subscription.ServiceID

		event := outbox.DomainEvent{
			EventType:     enums.EventSubscriptionCancelled,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   subscription.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: userID, Source: "api"},
			Data: payloads.SubscriptionCancelledEvent{
				SubscriptionID: subscription.ID,
				UserID:         userID,
				ServiceID:      subscription.ServiceID,
				CancelledAt:    cancelledAt,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return err
	}

	s.recalculatePopular(ctx, serviceID)
	return nil
}

// ChangeTariff moves an active subscription to another tariff of the same
// service. The next payment amount follows the new tariff; the next payment
// date stays put.
func (s *service) ChangeTariff(ctx context.Context, userID, subscriptionID, tariffID uuid.UUID) (*SubscriptionView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if subscriptionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}
	if tariffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tariff_id is required")
	}

	var updated *models.Subscription
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subscription, err := s.lockOwned(ctx, repo, userID, subscriptionID)
		if err != nil {
			return err
		}
		if subscription.Status != enums.SubscriptionStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "tariff change requires an active subscription")
		}

		tariff, err := repo.FindTariff(ctx, tariffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "tariff not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup tariff")
		}
		if tariff.ServiceID != subscription.ServiceID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "tariff not found for service")
		}

		total, err := catalog.TotalCost(tariff.MonthlyPrice, tariff.Duration)
		if err != nil {
			return err
		}

		var oldTariffID uuid.UUID
		if subscription.TariffID != nil {
			oldTariffID = *subscription.TariffID
		}
		subscription.TariffID = &tariff.ID
		subscription.NextPaymentAmount = &total
		if err := repo.Update(ctx, subscription); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tariff")
		}
		updated = subscription

		event := outbox.DomainEvent{
			EventType:     enums.EventTariffChanged,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   subscription.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: userID, Source: "api"},
			Data: payloads.TariffChangedEvent{
				SubscriptionID: subscription.ID,
				UserID:         userID,
				OldTariffID:    oldTariffID,
				NewTariffID:    tariff.ID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	view := toView(*updated)
	return &view, nil
}

// SetAutopayment flips the autopayment flag to the requested value.
func (s *service) SetAutopayment(ctx context.Context, userID, subscriptionID uuid.UUID, enabled bool) (*SubscriptionView, error) {
	return s.setAutopayment(ctx, userID, subscriptionID, enabled, false)
}

// ActivateAutopayment enables autopayment and rejects the call when it is
// already on. The flag itself ends up true either way.
func (s *service) ActivateAutopayment(ctx context.Context, userID, subscriptionID uuid.UUID) (*SubscriptionView, error) {
	return s.setAutopayment(ctx, userID, subscriptionID, true, true)
}

func (s *service) setAutopayment(ctx context.Context, userID, subscriptionID uuid.UUID, enabled, rejectNoop bool) (*SubscriptionView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if subscriptionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}

	var updated *models.Subscription
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subscription, err := s.lockOwned(ctx, repo, userID, subscriptionID)
		if err != nil {
			return err
		}
		if !subscription.Status.IsBillable() && subscription.Status != enums.SubscriptionStatusAwaitingActivation {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription already ended")
		}
		if subscription.Autopayment == enabled {
			if rejectNoop {
				return pkgerrors.New(pkgerrors.CodeConflict, "autopayment already enabled")
			}
			updated = subscription
			return nil
		}

		subscription.Autopayment = enabled
		if err := repo.Update(ctx, subscription); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update autopayment")
		}
		updated = subscription

		event := outbox.DomainEvent{
			EventType:     enums.EventAutopaymentChanged,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   subscription.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: userID, Source: "api"},
			Data: payloads.AutopaymentChangedEvent{
				SubscriptionID: subscription.ID,
				UserID:         userID,
				Enabled:        enabled,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	view := toView(*updated)
	return &view, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]SubscriptionView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	views := make([]SubscriptionView, len(rows))
	for i, row := range rows {
		views[i] = toView(row)
	}
	return views, nil
}

func (s *service) GetMine(ctx context.Context, userID, subscriptionID uuid.UUID) (*SubscriptionView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	row, err := s.repo.FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup subscription")
	}
	if row.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	view := toView(*row)
	return &view, nil
}

// ApplyPayment advances the state machine for a settled charge. It runs
// inside the charge transaction, against the row the caller already locked.
func (s *service) ApplyPayment(ctx context.Context, tx *gorm.DB, subscription *models.Subscription, payment *models.Payment) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if subscription == nil || payment == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "subscription and payment required")
	}

	switch subscription.Status {
	case enums.SubscriptionStatusAwaitingActivation:
		if payment.Trial {
			subscription.Status = enums.SubscriptionStatusTrial
		} else {
			subscription.Status = enums.SubscriptionStatusActive
		}
	case enums.SubscriptionStatusTrial:
		subscription.Status = enums.SubscriptionStatusActive
	case enums.SubscriptionStatusActive:
		// Renewal; status unchanged.
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription cannot accept payments")
	}

	now := s.now().UTC()
	if subscription.ActivatedAt == nil {
		subscription.ActivatedAt = &now
	}
	subscription.Trial = payment.Trial
	subscription.TariffID = &payment.TariffID
	subscription.ExpiryDate = payment.NextPaymentDate
	subscription.NextPaymentDate = payment.NextPaymentDate
	subscription.NextPaymentAmount = payment.NextPaymentAmount

	repo := s.repo.WithTx(tx)
	if err := repo.Update(ctx, subscription); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment to subscription")
	}

	var expiry, nextPayment time.Time
	if subscription.ExpiryDate != nil {
		expiry = *subscription.ExpiryDate
	}
	if subscription.NextPaymentDate != nil {
		nextPayment = *subscription.NextPaymentDate
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventSubscriptionActivated,
		AggregateType: enums.AggregateSubscription,
		AggregateID:   subscription.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: subscription.UserID, Source: "api"},
		Data: payloads.SubscriptionActivatedEvent{
			SubscriptionID:  subscription.ID,
			UserID:          subscription.UserID,
			ServiceID:       subscription.ServiceID,
			Status:          subscription.Status,
			ExpiryDate:      expiry,
			NextPaymentDate: nextPayment,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

// LapseOverdue sweeps billable subscriptions whose renewal never arrived and
// marks them lapsed, one transaction per row so a poison row cannot wedge
// the batch. Returns how many rows lapsed.
func (s *service) LapseOverdue(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	asOf := s.now().UTC()
	rows, err := s.repo.ListOverdue(ctx, asOf, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue subscriptions")
	}

	lapsed := 0
	for _, row := range rows {
		row := row
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			subscription, err := repo.FindByIDForUpdate(ctx, row.ID)
			if err != nil {
				return err
			}
			if !subscription.Status.IsBillable() {
				return nil
			}
			if subscription.NextPaymentDate == nil || !subscription.NextPaymentDate.Before(asOf) {
				return nil
			}

			subscription.Status = enums.SubscriptionStatusLapsed
			subscription.Autopayment = false
			if err := repo.Update(ctx, subscription); err != nil {
				return err
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventSubscriptionLapsed,
				AggregateType: enums.AggregateSubscription,
				AggregateID:   subscription.ID,
				Version:       1,
				Data: payloads.SubscriptionLapsedEvent{
					SubscriptionID: subscription.ID,
					UserID:         subscription.UserID,
					ServiceID:      subscription.ServiceID,
					ExpiredAt:      *subscription.NextPaymentDate,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
			lapsed++
			return nil
		})
		if err != nil {
			if s.logg != nil {
				logCtx := s.logg.WithSubscriptionID(ctx, row.ID.String())
				s.logg.Error(logCtx, "lapse sweep failed for subscription", err)
			}
			continue
		}
		s.recalculatePopular(ctx, row.ServiceID)
	}
	return lapsed, nil
}

func (s *service) lockOwned(ctx context.Context, repo Repository, userID, subscriptionID uuid.UUID) (*models.Subscription, error) {
	subscription, err := repo.FindByIDForUpdate(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock subscription")
	}
	if subscription.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return subscription, nil
}

func (s *service) recalculatePopular(ctx context.Context, serviceID uuid.UUID) {
	if s.catalog == nil || serviceID == uuid.Nil {
		return
	}
	if err := s.catalog.RecalculatePopular(ctx, serviceID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithServiceID(ctx, serviceID.String()), "recalculate popular failed")
	}
}
