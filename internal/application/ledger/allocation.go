package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// allocationSplit is the outcome of routing an allocation request
// against an envelope's remaining capacity
type allocationSplit struct {
	primary          decimal.Decimal
	overflow         decimal.Decimal
	overflowEnvelope *ledger.BudgetEnvelope
}

// resolveAllocationSplit splits a budget allocation between the target
// envelope and the entity's overflow envelope. The part exceeding the
// target's remaining capacity routes to the overflow target; requesting
// overflow without one configured is an error rather than a silent cap.
// Allocating straight into the overflow envelope never splits, even
// when a maximum is configured on it.
func resolveAllocationSplit(
	ctx context.Context,
	repos TransactionalRepositories,
	userID, entityID uuid.UUID,
	envelope *ledger.BudgetEnvelope,
	amount decimal.Decimal,
) (*allocationSplit, error) {
	amount = amount.Round(2)
	if envelope.IsOverflowTarget {
		return &allocationSplit{primary: amount, overflow: decimal.Zero}, nil
	}
	capacity, capped := envelope.RemainingCapacity()
	if !capped || capacity.GreaterThanOrEqual(amount) {
		return &allocationSplit{primary: amount, overflow: decimal.Zero}, nil
	}

	overflow := amount.Sub(capacity).Round(2)
	target, err := repos.Envelopes().FindOverflowTarget(ctx, userID, entityID)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError(shared.CodeOverflowEnvelopeMissing, "Allocation exceeds the envelope maximum and no overflow envelope is configured")
		}
		return nil, err
	}
	return &allocationSplit{primary: capacity, overflow: overflow, overflowEnvelope: target}, nil
}
