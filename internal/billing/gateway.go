package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChargeRequest is what the bank collaborator needs to confirm a charge.
type ChargeRequest struct {
	PaymentID uuid.UUID
	UserID    uuid.UUID
	Amount    int64
}

// ChargeConfirmation is the bank's acknowledgement of a charge.
type ChargeConfirmation struct {
	ProviderRef string
	ConfirmedAt time.Time
}

// Gateway confirms charges with the payment provider. Failures surface as
// upstream errors at the request boundary.
type Gateway interface {
	Confirm(ctx context.Context, req ChargeRequest) (*ChargeConfirmation, error)
}

// SimulatedGateway stands in for the real bank integration. It accepts every
// non-zero charge and mints a synthetic provider reference.
type SimulatedGateway struct {
	now func() time.Time
}

// NewSimulatedGateway builds the stub provider.
func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{now: time.Now}
}

func (g *SimulatedGateway) Confirm(ctx context.Context, req ChargeRequest) (*ChargeConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("bank rejected non-positive amount %d", req.Amount)
	}
	return &ChargeConfirmation{
		ProviderRef: fmt.Sprintf("sim-%s", uuid.NewString()),
		ConfirmedAt: g.now(),
	}, nil
}
