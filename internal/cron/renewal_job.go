package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/pay2u-app/pay2u-backend/internal/billing"
	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
)

const (
	defaultRenewalBatchSize = 250

	// Renewals are attempted for charges falling due within the next cycle.
	defaultRenewalWindow = 24 * time.Hour
)

type renewalLister interface {
	ListDueForRenewal(ctx context.Context, from, to time.Time, limit int) ([]models.Subscription, error)
}

type charger interface {
	Charge(ctx context.Context, input billing.ChargeInput) (*billing.ChargeResult, error)
}

// RenewalJobParams configures the autopayment renewal job.
type RenewalJobParams struct {
	Logger        *logger.Logger
	Subscriptions renewalLister
	Billing       charger
	BatchSize     int
	Window        time.Duration
	Now           func() time.Time
}

// NewRenewalJob builds the job that charges autopayment subscriptions whose
// next payment date falls inside the renewal window.
func NewRenewalJob(params RenewalJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if params.Billing == nil {
		return nil, fmt.Errorf("billing service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultRenewalBatchSize
	}
	window := params.Window
	if window <= 0 {
		window = defaultRenewalWindow
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &renewalJob{
		logg:          params.Logger,
		subscriptions: params.Subscriptions,
		billing:       params.Billing,
		batchSize:     batchSize,
		window:        window,
		now:           now,
	}, nil
}

type renewalJob struct {
	logg          *logger.Logger
	subscriptions renewalLister
	billing       charger
	batchSize     int
	window        time.Duration
	now           func() time.Time
}

func (j *renewalJob) Name() string { return "autopayment-renewal" }

func (j *renewalJob) Run(ctx context.Context) error {
	from := j.now().UTC()
	to := from.Add(j.window)

	due, err := j.subscriptions.ListDueForRenewal(ctx, from, to, j.batchSize)
	if err != nil {
		return fmt.Errorf("list renewals due: %w", err)
	}

	var errs error
	charged := 0
	for i := range due {
		subscription := &due[i]
		if subscription.TariffID == nil {
			continue
		}
		logCtx := j.logg.WithSubscriptionID(ctx, subscription.ID.String())
		_, err := j.billing.Charge(logCtx, billing.ChargeInput{
			UserID:      subscription.UserID,
			ServiceID:   subscription.ServiceID,
			TariffID:    *subscription.TariffID,
			AcceptRules: true,
		})
		if err != nil {
			j.logg.Error(logCtx, "renewal charge failed", err)
			errs = multierr.Append(errs, fmt.Errorf("renew subscription %s: %w", subscription.ID, err))
			continue
		}
		charged++
	}

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(due),
		"charged":    charged,
	})
	j.logg.Info(reportCtx, "autopayment renewal loop complete")
	return errs
}
