package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/internal/billing"
	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
)

type testBillingService struct {
	chargeFn       func(ctx context.Context, input billing.ChargeInput) (*billing.ChargeResult, error)
	listPaymentsFn func(ctx context.Context, params billing.ListPaymentsParams) (*billing.PaymentList, error)
}

func (s *testBillingService) Charge(ctx context.Context, input billing.ChargeInput) (*billing.ChargeResult, error) {
	if s.chargeFn != nil {
		return s.chargeFn(ctx, input)
	}
	return &billing.ChargeResult{}, nil
}

func (s *testBillingService) GetPayment(ctx context.Context, userID, paymentID uuid.UUID) (*models.Payment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
}

func (s *testBillingService) ListPayments(ctx context.Context, params billing.ListPaymentsParams) (*billing.PaymentList, error) {
	if s.listPaymentsFn != nil {
		return s.listPaymentsFn(ctx, params)
	}
	return &billing.PaymentList{}, nil
}

func TestCreateSubscriptionPayment(t *testing.T) {
	userID := uuid.New()
	serviceID := uuid.New()
	tariffID := uuid.New()
	next := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := &testBillingService{
		chargeFn: func(ctx context.Context, input billing.ChargeInput) (*billing.ChargeResult, error) {
			if input.UserID != userID {
				t.Fatalf("unexpected user %s", input.UserID)
			}
			if input.ServiceID != serviceID || input.TariffID != tariffID {
				t.Fatalf("unexpected service/tariff %s %s", input.ServiceID, input.TariffID)
			}
			if !input.AcceptRules {
				t.Fatal("expected accept_rules passed through")
			}
			return &billing.ChargeResult{
				PaymentID:         uuid.New(),
				Total:             1,
				IsTrial:           true,
				NextPaymentDate:   next,
				NextPaymentAmount: 199,
			}, nil
		},
	}

	body := `{"service_id":"` + serviceID.String() + `","tariff_kind_id":"` + tariffID.String() + `","accept_rules":true}`
	req := authedRequest(http.MethodPost, "/api/v1/subscription_payment", body, userID)
	resp := httptest.NewRecorder()
	CreateSubscriptionPayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data billing.ChargeResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Total != 1 || !envelope.Data.IsTrial {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
	if envelope.Data.NextPaymentAmount != 199 {
		t.Fatalf("unexpected next amount %d", envelope.Data.NextPaymentAmount)
	}
}

func TestCreateSubscriptionPaymentRejectsUnknownFields(t *testing.T) {
	userID := uuid.New()
	body := `{"service_id":"` + uuid.NewString() + `","tariff_kind_id":"` + uuid.NewString() + `","bogus":1}`
	req := authedRequest(http.MethodPost, "/api/v1/subscription_payment", body, userID)
	resp := httptest.NewRecorder()
	CreateSubscriptionPayment(&testBillingService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateSubscriptionPaymentUpstreamFailure(t *testing.T) {
	userID := uuid.New()
	svc := &testBillingService{
		chargeFn: func(ctx context.Context, input billing.ChargeInput) (*billing.ChargeResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUpstream, "payment provider declined")
		},
	}

	body := `{"service_id":"` + uuid.NewString() + `","tariff_kind_id":"` + uuid.NewString() + `","accept_rules":true}`
	req := authedRequest(http.MethodPost, "/api/v1/subscription_payment", body, userID)
	resp := httptest.NewRecorder()
	CreateSubscriptionPayment(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", resp.Code)
	}
}

func TestListPaymentsForwardsPagination(t *testing.T) {
	userID := uuid.New()
	svc := &testBillingService{
		listPaymentsFn: func(ctx context.Context, params billing.ListPaymentsParams) (*billing.PaymentList, error) {
			if params.UserID != userID {
				t.Fatalf("unexpected user %s", params.UserID)
			}
			if params.Limit != 25 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if params.Cursor != "abc" {
				t.Fatalf("unexpected cursor %q", params.Cursor)
			}
			return &billing.PaymentList{NextCursor: "def"}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/payments?limit=25&cursor=abc", "", userID)
	resp := httptest.NewRecorder()
	ListPayments(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListPaymentsInvalidLimit(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/payments?limit=zero", "", uuid.New())
	resp := httptest.NewRecorder()
	ListPayments(&testBillingService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
