package notifications

import (
	"context"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
)

// Pusher delivers a stored notification to the user's device. Delivery is
// fire-and-forget: a failed push is logged and dropped, the in-app row
// remains the source of truth.
type Pusher interface {
	Push(ctx context.Context, notification *models.Notification) error
}

type logPusher struct {
	logg *logger.Logger
}

// NewLogPusher returns a Pusher that only logs deliveries. It stands in for
// the real push provider integration.
func NewLogPusher(logg *logger.Logger) Pusher {
	return &logPusher{logg: logg}
}

func (p *logPusher) Push(ctx context.Context, notification *models.Notification) error {
	if notification == nil {
		return nil
	}
	p.logg.Info(p.logg.WithFields(ctx, map[string]any{
		"user_id": notification.UserID.String(),
		"type":    string(notification.Type),
	}), "push delivered")
	return nil
}
