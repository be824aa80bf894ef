package notifications

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox/payloads"
)

const (
	// Users are warned this many days before the paid period runs out.
	reminderLeadTime = 3 * 24 * time.Hour

	reminderBatchSize = 200
)

type expiringLister interface {
	ListExpiringBetween(ctx context.Context, from, to time.Time, limit int) ([]models.Subscription, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dedupedPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Reminder scans subscriptions approaching their next payment date and queues
// one expiry warning per subscription. The outbox unique index keeps repeated
// sweeps from emitting duplicates.
type Reminder struct {
	subscriptions expiringLister
	tx            txRunner
	outbox        dedupedPublisher
	logg          *logger.Logger
	now           func() time.Time
}

// NewReminder builds the expiry reminder sweep.
func NewReminder(subscriptions expiringLister, tx txRunner, publisher dedupedPublisher, logg *logger.Logger) (*Reminder, error) {
	if subscriptions == nil {
		return nil, fmt.Errorf("subscription lister is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Reminder{
		subscriptions: subscriptions,
		tx:            tx,
		outbox:        publisher,
		logg:          logg,
		now:           time.Now,
	}, nil
}

// Run emits subscription_expiring_soon events for subscriptions whose next
// payment falls inside the lead-time window. Returns the number of events
// queued.
func (r *Reminder) Run(ctx context.Context) (int, error) {
	now := r.now().UTC()
	windowEnd := now.Add(reminderLeadTime)

	rows, err := r.subscriptions.ListExpiringBetween(ctx, now, windowEnd, reminderBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list expiring subscriptions: %w", err)
	}

	queued := 0
	for _, subscription := range rows {
		if subscription.NextPaymentDate == nil {
			continue
		}
		days := int(math.Ceil(subscription.NextPaymentDate.Sub(now).Hours() / 24))
		if days < 0 {
			days = 0
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSubscriptionExpiring,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   subscription.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{Source: "cron"},
			Data: payloads.SubscriptionExpiringEvent{
				SubscriptionID:      subscription.ID,
				UserID:              subscription.UserID,
				ServiceID:           subscription.ServiceID,
				ExpiryDate:          *subscription.NextPaymentDate,
				DaysUntilExpiration: days,
			},
		}

		err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return r.outbox.EmitIfNotExists(ctx, tx, event)
		})
		if err != nil {
			logCtx := r.logg.WithSubscriptionID(ctx, subscription.ID.String())
			r.logg.Error(logCtx, "failed to queue expiry reminder", err)
			continue
		}
		queued++
	}

	return queued, nil
}
