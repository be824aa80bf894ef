package subscriptions

import (
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// SubscriptionView is the API representation of a subscription.
type SubscriptionView struct {
	ID                uuid.UUID                `json:"id"`
	ServiceID         uuid.UUID                `json:"service_id"`
	ServiceName       string                   `json:"service_name,omitempty"`
	TariffID          *uuid.UUID               `json:"tariff_id,omitempty"`
	Status            enums.SubscriptionStatus `json:"status"`
	Trial             bool                     `json:"trial"`
	Autopayment       bool                     `json:"autopayment"`
	PromoCode         *string                  `json:"promo_code,omitempty"`
	PromoCodeExpiry   *time.Time               `json:"promo_code_expiry,omitempty"`
	ActivatedAt       *time.Time               `json:"activated_at,omitempty"`
	ExpiryDate        *time.Time               `json:"expiry_date,omitempty"`
	NextPaymentDate   *time.Time               `json:"next_payment_date,omitempty"`
	NextPaymentAmount *int64                   `json:"next_payment_amount,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}

func toView(row models.Subscription) SubscriptionView {
	view := SubscriptionView{
		ID:                row.ID,
		ServiceID:         row.ServiceID,
		TariffID:          row.TariffID,
		Status:            row.Status,
		Trial:             row.Trial,
		Autopayment:       row.Autopayment,
		PromoCode:         row.PromoCode,
		PromoCodeExpiry:   row.PromoCodeExpiry,
		ActivatedAt:       row.ActivatedAt,
		ExpiryDate:        row.ExpiryDate,
		NextPaymentDate:   row.NextPaymentDate,
		NextPaymentAmount: row.NextPaymentAmount,
		CreatedAt:         row.CreatedAt,
	}
	if row.Service != nil {
		view.ServiceName = row.Service.Name
	}
	return view
}
