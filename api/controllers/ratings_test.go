package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/internal/ratings"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
)

type testRatingsService struct {
	rateFn func(ctx context.Context, userID, serviceID uuid.UUID, stars int) (*ratings.RatingView, error)
}

func (s *testRatingsService) Rate(ctx context.Context, userID, serviceID uuid.UUID, stars int) (*ratings.RatingView, error) {
	if s.rateFn != nil {
		return s.rateFn(ctx, userID, serviceID, stars)
	}
	return &ratings.RatingView{}, nil
}

func (s *testRatingsService) GetMine(ctx context.Context, userID, serviceID uuid.UUID) (*ratings.RatingView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rating not found")
}

func TestRateService(t *testing.T) {
	userID := uuid.New()
	serviceID := uuid.New()
	svc := &testRatingsService{
		rateFn: func(ctx context.Context, uid, sid uuid.UUID, stars int) (*ratings.RatingView, error) {
			if uid != userID || sid != serviceID {
				t.Fatalf("unexpected args %s %s", uid, sid)
			}
			if stars != 4 {
				t.Fatalf("unexpected stars %d", stars)
			}
			return &ratings.RatingView{ServiceID: sid, Stars: stars, UpdatedAt: time.Now()}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/services/"+serviceID.String()+"/rating", `{"stars":4}`, userID)
	req = addRouteParam(req, "serviceId", serviceID.String())
	resp := httptest.NewRecorder()
	RateService(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRateServiceStarsOutOfRange(t *testing.T) {
	userID := uuid.New()
	serviceID := uuid.New()
	for _, body := range []string{`{"stars":0}`, `{"stars":6}`} {
		req := authedRequest(http.MethodPost, "/api/v1/services/"+serviceID.String()+"/rating", body, userID)
		req = addRouteParam(req, "serviceId", serviceID.String())
		resp := httptest.NewRecorder()
		RateService(&testRatingsService{}, testLogger())(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 got %d", body, resp.Code)
		}
	}
}

func TestRateServiceMissingUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/services/"+uuid.NewString()+"/rating", nil)
	req = addRouteParam(req, "serviceId", uuid.NewString())
	resp := httptest.NewRecorder()
	RateService(&testRatingsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
