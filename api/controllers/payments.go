package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/api/responses"
	"github.com/pay2u-app/pay2u-backend/api/validators"
	"github.com/pay2u-app/pay2u-backend/internal/billing"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
)

type subscriptionPaymentRequest struct {
	ServiceID    uuid.UUID `json:"service_id" validate:"required"`
	TariffKindID uuid.UUID `json:"tariff_kind_id" validate:"required"`
	AcceptRules  bool      `json:"accept_rules"`
}

// CreateSubscriptionPayment charges the user for a tariff. First payments per
// service run at the trial amount; the response carries the schedule for the
// renewal charge.
func CreateSubscriptionPayment(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		uid, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req subscriptionPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Charge(r.Context(), billing.ChargeInput{
			UserID:      uid,
			ServiceID:   req.ServiceID,
			TariffID:    req.TariffKindID,
			AcceptRules: req.AcceptRules,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListPayments returns the user's payment history, newest first.
func ListPayments(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		uid, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := billing.ListPaymentsParams{UserID: uid}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}
		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		list, err := svc.ListPayments(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
