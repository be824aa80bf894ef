package controllers

import (
	"net/http"

	"github.com/pay2u-app/pay2u-backend/api/responses"
	"github.com/pay2u-app/pay2u-backend/internal/cashback"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
)

// ListCashbacks returns the authenticated user's accrual history.
func ListCashbacks(svc cashback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cashback service unavailable"))
			return
		}

		uid, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accruals, err := svc.ListMine(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"cashbacks": accruals})
	}
}

// GetCashbackBalance returns the authenticated user's total accrued cashback.
func GetCashbackBalance(svc cashback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cashback service unavailable"))
			return
		}

		uid, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}
