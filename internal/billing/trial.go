package billing

import (
	"context"

	"github.com/google/uuid"
)

type paymentCounter interface {
	CountPayments(ctx context.Context, userID, serviceID uuid.UUID) (int64, error)
}

// TrialPolicy decides whether a (user, service) pair qualifies for the trial
// price: only a first-ever payment does. Callers must evaluate it against a
// transaction-scoped repository while holding the subscription row lock, so
// two concurrent first payments cannot both observe an empty history.
type TrialPolicy struct{}

// IsEligible reports whether the pair has no payment history.
func (TrialPolicy) IsEligible(ctx context.Context, payments paymentCounter, userID, serviceID uuid.UUID) (bool, error) {
	count, err := payments.CountPayments(ctx, userID, serviceID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
