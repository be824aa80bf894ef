package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox/idempotency"
)

const notificationConsumer = "notification-worker"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer turns domain events from the notification topic into in-app
// notification rows.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	pusher       Pusher
	logg         *logger.Logger
}

// NewConsumer builds a notification consumer. The pusher is optional; when
// nil, events only produce in-app rows.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, pusher Pusher, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		pusher:       pusher,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.Data, msg.Attributes["event_type"], msg.ID)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, data []byte, eventType, messageID string) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	parsed, err := enums.ParseOutboxEventType(eventType)
	if err != nil || !handledEvent(parsed) {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := buildNotification(parsed, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}

	logCtx = c.logg.WithUserID(logCtx, notification.UserID.String())
	c.logg.Info(logCtx, "notification stored")

	if c.pusher != nil {
		if err := c.pusher.Push(ctx, notification); err != nil {
			c.logg.Warn(c.logg.WithField(logCtx, "push_error", err.Error()), "push delivery failed")
		}
	}
	return processResult{ack: true}
}

func handledEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventPaymentSucceeded,
		enums.EventSubscriptionExpiring,
		enums.EventSubscriptionLapsed,
		enums.EventPromoCodeIssued:
		return true
	}
	return false
}

func buildNotification(eventType enums.OutboxEventType, data json.RawMessage) (*models.Notification, error) {
	now := time.Now().UTC()
	switch eventType {
	case enums.EventPaymentSucceeded:
		var payload paymentSucceededPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.Trial {
			return &models.Notification{
				UserID:  payload.UserID,
				Type:    enums.NotificationTypeTrialStarted,
				Title:   "Trial started",
				Message: "Your trial period has begun. The full price applies from the next payment.",
				SentAt:  &now,
			}, nil
		}
		return &models.Notification{
			UserID:  payload.UserID,
			Type:    enums.NotificationTypePaymentReceipt,
			Title:   "Payment received",
			Message: fmt.Sprintf("We received your payment of %d.", payload.Amount),
			SentAt:  &now,
		}, nil

	case enums.EventSubscriptionExpiring:
		var payload subscriptionExpiringPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return &models.Notification{
			UserID:  payload.UserID,
			Type:    enums.NotificationTypeSubscriptionExpiring,
			Title:   "Subscription expiring soon",
			Message: fmt.Sprintf("Your subscription expires in %d day(s). Renew to keep your access.", payload.DaysUntilExpiration),
			SentAt:  &now,
		}, nil

	case enums.EventSubscriptionLapsed:
		var payload subscriptionLapsedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return &models.Notification{
			UserID:  payload.UserID,
			Type:    enums.NotificationTypeSubscriptionLapsed,
			Title:   "Subscription expired",
			Message: "Your subscription has expired. Resubscribe any time to restore access.",
			SentAt:  &now,
		}, nil

	case enums.EventPromoCodeIssued:
		var payload promoCodeIssuedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return &models.Notification{
			UserID:  payload.UserID,
			Type:    enums.NotificationTypePromoCodeIssued,
			Title:   "Your activation code",
			Message: fmt.Sprintf("Use code %s to activate your subscription. It expires on %s.", payload.PromoCode, payload.ExpiresAt.Format("2 January 2006")),
			SentAt:  &now,
		}, nil
	}
	return nil, nil
}

type paymentSucceededPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Amount int64     `json:"amount"`
	Trial  bool      `json:"trial"`
}

type subscriptionExpiringPayload struct {
	UserID              uuid.UUID `json:"user_id"`
	DaysUntilExpiration int       `json:"days_until_expiration"`
}

type subscriptionLapsedPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type promoCodeIssuedPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	PromoCode string    `json:"promo_code"`
	ExpiresAt time.Time `json:"expires_at"`
}
