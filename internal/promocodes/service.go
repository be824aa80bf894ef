package promocodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/internal/subscriptions"
	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox/payloads"
)

// codeExpiryWindow is how long an issued code stays redeemable.
const codeExpiryWindow = 7 * 24 * time.Hour

// maxGenerateAttempts bounds the collision retry loop. With 36^12 possible
// codes a second attempt is already rare.
const maxGenerateAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type paymentFinder interface {
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
}


// IssueResult carries the code handed back to the user after payment.
type IssueResult struct {
	PromoCode       string    `json:"promo_code"`
	PromoCodeExpiry time.Time `json:"promo_code_expiry_date"`
}

// Service issues one-time promo codes for settled payments.
type Service interface {
	Issue(ctx context.Context, userID, paymentID uuid.UUID) (*IssueResult, error)
}

// ServiceParams groups dependencies for the promo code issuer.
type ServiceParams struct {
	Tx            txRunner
	Payments      paymentFinder
	Subscriptions subscriptions.Repository
	Outbox        outboxPublisher
}

type service struct {
	tx            txRunner
	payments      paymentFinder
	subscriptions subscriptions.Repository
	outbox        outboxPublisher
	now           func() time.Time
}

// NewService builds a promo code issuer.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment finder is required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription store is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox is required")
	}
	return &service{
		tx:            params.Tx,
		payments:      params.Payments,
		subscriptions: params.Subscriptions,
		outbox:        params.Outbox,
		now:           time.Now,
	}, nil
}

// Issue generates a 12-character code for a settled payment, expiring seven
// days after the payment date, and stores it on the subscription. Issuing
// twice for the same payment returns the already stored code.
func (s *service) Issue(ctx context.Context, userID, paymentID uuid.UUID) (*IssueResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if paymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_id is required")
	}

	payment, err := s.payments.FindPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup payment")
	}
	if payment.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	if payment.Status != enums.PaymentStatusSucceeded || payment.PaidAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not settled")
	}

	expiry := payment.PaidAt.Add(codeExpiryWindow)

	var result *IssueResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.subscriptions.WithTx(tx)

		subscription, err := store.FindByIDForUpdate(ctx, payment.SubscriptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock subscription")
		}

		if subscription.PromoCode != nil && subscription.PromoCodeExpiry != nil && subscription.PromoCodeExpiry.After(s.now()) {
			result = &IssueResult{
				PromoCode:       *subscription.PromoCode,
				PromoCodeExpiry: *subscription.PromoCodeExpiry,
			}
			return nil
		}

		code, err := s.generateUnusedCode(ctx, store)
		if err != nil {
			return err
		}

		if err := store.SetPromoCode(ctx, subscription.ID, code, expiry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store promo code")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPromoCodeIssued,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   subscription.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: userID, Source: "api"},
			Data: payloads.PromoCodeIssuedEvent{
				SubscriptionID: subscription.ID,
				UserID:         userID,
				ServiceID:      subscription.ServiceID,
				PromoCode:      code,
				ExpiresAt:      expiry,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit promo code event")
		}

		result = &IssueResult{PromoCode: code, PromoCodeExpiry: expiry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) generateUnusedCode(ctx context.Context, store subscriptions.Repository) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate promo code")
		}
		inUse, err := store.PromoCodeInUse(ctx, code)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check promo code")
		}
		if !inUse {
			return code, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "promo code space exhausted")
}
