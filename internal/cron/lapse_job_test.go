package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/pay2u-app/pay2u-backend/pkg/logger"
)

type fakeLapser struct {
	lapsed    int
	batchSize int
	err       error
}

func (f *fakeLapser) LapseOverdue(ctx context.Context, batchSize int) (int, error) {
	f.batchSize = batchSize
	if f.err != nil {
		return 0, f.err
	}
	return f.lapsed, nil
}

func TestLapseJobSweepsOverdueSubscriptions(t *testing.T) {
	lapser := &fakeLapser{lapsed: 7}
	job, err := NewLapseJob(LapseJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		Subscriptions: lapser,
	})
	if err != nil {
		t.Fatalf("NewLapseJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lapser.batchSize != defaultLapseBatchSize {
		t.Fatalf("expected default batch size %d, got %d", defaultLapseBatchSize, lapser.batchSize)
	}
}

func TestLapseJobPropagatesErrors(t *testing.T) {
	job, err := NewLapseJob(LapseJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		Subscriptions: &fakeLapser{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewLapseJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
