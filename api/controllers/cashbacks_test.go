package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/internal/cashback"
	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
)

type testCashbackService struct {
	balanceFn  func(ctx context.Context, userID uuid.UUID) (*cashback.BalanceView, error)
	listMineFn func(ctx context.Context, userID uuid.UUID) ([]cashback.AccrualView, error)
}

func (s *testCashbackService) Accrue(ctx context.Context, tx *gorm.DB, payment *models.Payment, percent int) (*models.Cashback, error) {
	return &models.Cashback{}, nil
}

func (s *testCashbackService) Balance(ctx context.Context, userID uuid.UUID) (*cashback.BalanceView, error) {
	if s.balanceFn != nil {
		return s.balanceFn(ctx, userID)
	}
	return &cashback.BalanceView{}, nil
}

func (s *testCashbackService) ListMine(ctx context.Context, userID uuid.UUID) ([]cashback.AccrualView, error) {
	if s.listMineFn != nil {
		return s.listMineFn(ctx, userID)
	}
	return nil, nil
}

func TestGetCashbackBalance(t *testing.T) {
	userID := uuid.New()
	svc := &testCashbackService{
		balanceFn: func(ctx context.Context, uid uuid.UUID) (*cashback.BalanceView, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return &cashback.BalanceView{Total: "149.50"}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/cashbacks/balance", "", userID)
	resp := httptest.NewRecorder()
	GetCashbackBalance(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cashback.BalanceView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Total != "149.50" {
		t.Fatalf("unexpected total %q", envelope.Data.Total)
	}
}

func TestGetCashbackBalanceMissingUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cashbacks/balance", nil)
	resp := httptest.NewRecorder()
	GetCashbackBalance(&testCashbackService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListCashbacks(t *testing.T) {
	userID := uuid.New()
	accrualID := uuid.New()
	svc := &testCashbackService{
		listMineFn: func(ctx context.Context, uid uuid.UUID) ([]cashback.AccrualView, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return []cashback.AccrualView{{ID: accrualID, Amount: "19.90", Percent: 10}}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/cashbacks", "", userID)
	resp := httptest.NewRecorder()
	ListCashbacks(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Cashbacks []cashback.AccrualView `json:"cashbacks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Cashbacks) != 1 || envelope.Data.Cashbacks[0].ID != accrualID {
		t.Fatalf("unexpected accruals %+v", envelope.Data.Cashbacks)
	}
}
