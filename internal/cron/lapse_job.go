package cron

import (
	"context"
	"fmt"

	"github.com/pay2u-app/pay2u-backend/pkg/logger"
	"gorm.io/gorm"
)

const defaultLapseBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type overdueLapser interface {
	LapseOverdue(ctx context.Context, batchSize int) (int, error)
}

// LapseJobParams configures the overdue subscription sweep.
type LapseJobParams struct {
	Logger        *logger.Logger
	Subscriptions overdueLapser
	BatchSize     int
}

// NewLapseJob builds the job that marks unpaid subscriptions as lapsed once
// their next payment date passes.
func NewLapseJob(params LapseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultLapseBatchSize
	}
	return &lapseJob{
		logg:          params.Logger,
		subscriptions: params.Subscriptions,
		batchSize:     batchSize,
	}, nil
}

type lapseJob struct {
	logg          *logger.Logger
	subscriptions overdueLapser
	batchSize     int
}

func (j *lapseJob) Name() string { return "subscription-lapse" }

func (j *lapseJob) Run(ctx context.Context) error {
	lapsed, err := j.subscriptions.LapseOverdue(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("lapse overdue subscriptions: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_lapsed", lapsed)
	j.logg.Info(logCtx, "subscription lapse sweep complete")
	return nil
}
