package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/enums"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox"
)

type stubSubscriptionRepo struct {
	service      *models.Service
	tariff       *models.Tariff
	subscription *models.Subscription
	listRows     []models.Subscription
	overdue      []models.Subscription
	createErr    error
	promoInUse   bool

	created   *models.Subscription
	updated   *models.Subscription
	promoCode string
	promoSub  uuid.UUID
}

func (s *stubSubscriptionRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSubscriptionRepo) Create(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	subscription.ID = uuid.New()
	s.created = subscription
	return subscription, nil
}

func (s *stubSubscriptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	if s.subscription == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.subscription, nil
}

func (s *stubSubscriptionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	if s.subscription == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.subscription, nil
}

func (s *stubSubscriptionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	return s.listRows, nil
}

func (s *stubSubscriptionRepo) Update(ctx context.Context, subscription *models.Subscription) error {
	s.updated = subscription
	return nil
}

func (s *stubSubscriptionRepo) FindService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if s.service == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.service, nil
}

func (s *stubSubscriptionRepo) FindTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error) {
	if s.tariff == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.tariff, nil
}

func (s *stubSubscriptionRepo) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.Subscription, error) {
	return s.overdue, nil
}

func (s *stubSubscriptionRepo) ListDueForRenewal(ctx context.Context, from, to time.Time, limit int) ([]models.Subscription, error) {
	return nil, nil
}

func (s *stubSubscriptionRepo) ListExpiringBetween(ctx context.Context, from, to time.Time, limit int) ([]models.Subscription, error) {
	return nil, nil
}

func (s *stubSubscriptionRepo) PromoCodeInUse(ctx context.Context, code string) (bool, error) {
	return s.promoInUse, nil
}

func (s *stubSubscriptionRepo) SetPromoCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	s.promoSub = id
	s.promoCode = code
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func newLifecycleService(t *testing.T, repo Repository) (*service, *recordingOutbox) {
	t.Helper()
	sink := &recordingOutbox{}
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     stubTx{},
		Outbox: sink,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc.(*service), sink
}

func TestSubscribeCreatesAwaitingActivation(t *testing.T) {
	userID := uuid.New()
	serviceID := uuid.New()
	repo := &stubSubscriptionRepo{service: &models.Service{ID: serviceID, IsActive: true}}
	svc, sink := newLifecycleService(t, repo)

	view, err := svc.Subscribe(context.Background(), userID, serviceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Status != enums.SubscriptionStatusAwaitingActivation {
		t.Fatalf("unexpected status %s", view.Status)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.EventSubscriptionCreated {
		t.Fatalf("unexpected events %+v", sink.events)
	}
}

func TestSubscribeDuplicateIsConflict(t *testing.T) {
	repo := &stubSubscriptionRepo{
		service:   &models.Service{ID: uuid.New(), IsActive: true},
		createErr: errors.New(`duplicate key value violates unique constraint "uq_subscriptions_user_service_live"`),
	}
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.Subscribe(context.Background(), uuid.New(), repo.service.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUnsubscribeSoftCancels(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubscriptionRepo{
		subscription: &models.Subscription{
			ID:        uuid.New(),
			UserID:    userID,
			ServiceID: uuid.New(),
			Status:    enums.SubscriptionStatusActive,
		},
	}
	svc, sink := newLifecycleService(t, repo)

	if err := svc.Unsubscribe(context.Background(), userID, repo.subscription.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updated.Status != enums.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", repo.updated.Status)
	}
	if repo.updated.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be set")
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.EventSubscriptionCancelled {
		t.Fatalf("unexpected events %+v", sink.events)
	}
}

func TestUnsubscribeTwiceIsStateConflict(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubscriptionRepo{
		subscription: &models.Subscription{ID: uuid.New(), UserID: userID, Status: enums.SubscriptionStatusCancelled},
	}
	svc, _ := newLifecycleService(t, repo)

	err := svc.Unsubscribe(context.Background(), userID, repo.subscription.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestChangeTariffRecomputesAmountKeepsDate(t *testing.T) {
	userID := uuid.New()
	serviceID := uuid.New()
	nextDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	oldAmount := int64(199)
	repo := &stubSubscriptionRepo{
		subscription: &models.Subscription{
			ID:                uuid.New(),
			UserID:            userID,
			ServiceID:         serviceID,
			Status:            enums.SubscriptionStatusActive,
			NextPaymentDate:   &nextDate,
			NextPaymentAmount: &oldAmount,
		},
		tariff: &models.Tariff{
			ID:           uuid.New(),
			ServiceID:    serviceID,
			MonthlyPrice: 199,
			Duration:     enums.TariffDurationAnnual,
		},
	}
	svc, sink := newLifecycleService(t, repo)

	view, err := svc.ChangeTariff(context.Background(), userID, repo.subscription.ID, repo.tariff.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.NextPaymentAmount == nil || *view.NextPaymentAmount != 1212 {
		t.Fatalf("expected next amount 1212, got %v", view.NextPaymentAmount)
	}
	if view.NextPaymentDate == nil || !view.NextPaymentDate.Equal(nextDate) {
		t.Fatalf("next payment date must not move, got %v", view.NextPaymentDate)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.EventTariffChanged {
		t.Fatalf("unexpected events %+v", sink.events)
	}
}

func TestChangeTariffRequiresActive(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubscriptionRepo{
		subscription: &models.Subscription{ID: uuid.New(), UserID: userID, Status: enums.SubscriptionStatusTrial},
		tariff:       &models.Tariff{ID: uuid.New()},
	}
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.ChangeTariff(context.Background(), userID, repo.subscription.ID, repo.tariff.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestActivateAutopaymentIdempotentFlag(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubscriptionRepo{
		subscription: &models.Subscription{
			ID:     uuid.New(),
			UserID: userID,
			Status: enums.SubscriptionStatusActive,
		},
	}
	svc, _ := newLifecycleService(t, repo)

	view, err := svc.ActivateAutopayment(context.Background(), userID, repo.subscription.ID)
	if err != nil {
		t.Fatalf("first activation failed: %v", err)
	}
	if !view.Autopayment {
		t.Fatal("expected autopayment on")
	}

	_, err = svc.ActivateAutopayment(context.Background(), userID, repo.subscription.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on second activation, got %v", err)
	}
	if !repo.subscription.Autopayment {
		t.Fatal("flag must remain true after rejected call")
	}
}

func TestApplyPaymentTransitions(t *testing.T) {
	cases := []struct {
		name   string
		from   enums.SubscriptionStatus
		trial  bool
		expect enums.SubscriptionStatus
	}{
		{name: "first trial charge", from: enums.SubscriptionStatusAwaitingActivation, trial: true, expect: enums.SubscriptionStatusTrial},
		{name: "first full charge", from: enums.SubscriptionStatusAwaitingActivation, trial: false, expect: enums.SubscriptionStatusActive},
		{name: "trial renewal", from: enums.SubscriptionStatusTrial, trial: false, expect: enums.SubscriptionStatusActive},
		{name: "active renewal", from: enums.SubscriptionStatusActive, trial: false, expect: enums.SubscriptionStatusActive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubSubscriptionRepo{}
			svc, sink := newLifecycleService(t, repo)

			next := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
			amount := int64(500)
			subscription := &models.Subscription{
				ID:        uuid.New(),
				UserID:    uuid.New(),
				ServiceID: uuid.New(),
				Status:    tc.from,
			}
			payment := &models.Payment{
				ID:                uuid.New(),
				TariffID:          uuid.New(),
				Trial:             tc.trial,
				NextPaymentDate:   &next,
				NextPaymentAmount: &amount,
			}

			if err := svc.ApplyPayment(context.Background(), &gorm.DB{}, subscription, payment); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if subscription.Status != tc.expect {
				t.Fatalf("expected %s, got %s", tc.expect, subscription.Status)
			}
			if subscription.NextPaymentDate == nil || !subscription.NextPaymentDate.Equal(next) {
				t.Fatalf("schedule not applied: %+v", subscription)
			}
			if len(sink.events) != 1 || sink.events[0].EventType != enums.EventSubscriptionActivated {
				t.Fatalf("unexpected events %+v", sink.events)
			}
		})
	}
}

func TestApplyPaymentRejectsTerminalStates(t *testing.T) {
	repo := &stubSubscriptionRepo{}
	svc, _ := newLifecycleService(t, repo)

	subscription := &models.Subscription{ID: uuid.New(), Status: enums.SubscriptionStatusCancelled}
	payment := &models.Payment{ID: uuid.New(), TariffID: uuid.New()}

	err := svc.ApplyPayment(context.Background(), &gorm.DB{}, subscription, payment)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestLapseOverdueSweep(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	row := models.Subscription{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		ServiceID:       uuid.New(),
		Status:          enums.SubscriptionStatusActive,
		Autopayment:     true,
		NextPaymentDate: &past,
	}
	repo := &stubSubscriptionRepo{
		overdue:      []models.Subscription{row},
		subscription: &row,
	}
	svc, sink := newLifecycleService(t, repo)

	lapsed, err := svc.LapseOverdue(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lapsed != 1 {
		t.Fatalf("expected 1 lapsed, got %d", lapsed)
	}
	if repo.updated.Status != enums.SubscriptionStatusLapsed {
		t.Fatalf("expected lapsed, got %s", repo.updated.Status)
	}
	if repo.updated.Autopayment {
		t.Fatal("autopayment must be cleared on lapse")
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.EventSubscriptionLapsed {
		t.Fatalf("unexpected events %+v", sink.events)
	}
}
