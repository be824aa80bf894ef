package cron

import (
	"context"
	"fmt"

	"github.com/pay2u-app/pay2u-backend/pkg/logger"
)

type expiryReminder interface {
	Run(ctx context.Context) (int, error)
}

// ReminderJobParams configures the expiry reminder job.
type ReminderJobParams struct {
	Logger   *logger.Logger
	Reminder expiryReminder
}

// NewReminderJob wraps the notification reminder sweep as a cron job.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reminder == nil {
		return nil, fmt.Errorf("reminder required")
	}
	return &reminderJob{
		logg:     params.Logger,
		reminder: params.Reminder,
	}, nil
}

type reminderJob struct {
	logg     *logger.Logger
	reminder expiryReminder
}

func (j *reminderJob) Name() string { return "expiry-reminder" }

func (j *reminderJob) Run(ctx context.Context) error {
	queued, err := j.reminder.Run(ctx)
	if err != nil {
		return fmt.Errorf("expiry reminder sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "events_queued", queued)
	j.logg.Info(logCtx, "expiry reminder sweep complete")
	return nil
}
