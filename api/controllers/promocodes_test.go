package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/internal/promocodes"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
)

type testPromoService struct {
	issueFn func(ctx context.Context, userID, paymentID uuid.UUID) (*promocodes.IssueResult, error)
}

func (s *testPromoService) Issue(ctx context.Context, userID, paymentID uuid.UUID) (*promocodes.IssueResult, error) {
	if s.issueFn != nil {
		return s.issueFn(ctx, userID, paymentID)
	}
	return &promocodes.IssueResult{}, nil
}

func TestConfirmSubscriptionPaid(t *testing.T) {
	userID := uuid.New()
	paymentID := uuid.New()
	expiry := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	svc := &testPromoService{
		issueFn: func(ctx context.Context, uid, pid uuid.UUID) (*promocodes.IssueResult, error) {
			if uid != userID || pid != paymentID {
				t.Fatalf("unexpected args %s %s", uid, pid)
			}
			return &promocodes.IssueResult{PromoCode: "A1B2C3D4E5F6", PromoCodeExpiry: expiry}, nil
		},
	}

	body := `{"payment_id":"` + paymentID.String() + `"}`
	req := authedRequest(http.MethodPost, "/api/v1/subscription_paid", body, userID)
	resp := httptest.NewRecorder()
	ConfirmSubscriptionPaid(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data promocodes.IssueResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.PromoCode != "A1B2C3D4E5F6" {
		t.Fatalf("unexpected code %q", envelope.Data.PromoCode)
	}
	if !envelope.Data.PromoCodeExpiry.Equal(expiry) {
		t.Fatalf("unexpected expiry %s", envelope.Data.PromoCodeExpiry)
	}
}

func TestConfirmSubscriptionPaidPendingPayment(t *testing.T) {
	svc := &testPromoService{
		issueFn: func(ctx context.Context, uid, pid uuid.UUID) (*promocodes.IssueResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not settled")
		},
	}

	body := `{"payment_id":"` + uuid.NewString() + `"}`
	req := authedRequest(http.MethodPost, "/api/v1/subscription_paid", body, uuid.New())
	resp := httptest.NewRecorder()
	ConfirmSubscriptionPaid(svc, testLogger())(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestConfirmSubscriptionPaidMissingPaymentID(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/subscription_paid", `{}`, uuid.New())
	resp := httptest.NewRecorder()
	ConfirmSubscriptionPaid(&testPromoService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
