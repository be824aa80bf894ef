package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/api/responses"
	"github.com/pay2u-app/pay2u-backend/api/validators"
	"github.com/pay2u-app/pay2u-backend/internal/promocodes"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
)

type subscriptionPaidRequest struct {
	PaymentID uuid.UUID `json:"payment_id" validate:"required"`
}

// ConfirmSubscriptionPaid issues the activation promo code for a settled
// payment. Re-posting the same payment returns the existing code.
func ConfirmSubscriptionPaid(svc promocodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promo code service unavailable"))
			return
		}

		uid, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req subscriptionPaidRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Issue(r.Context(), uid, req.PaymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
