package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/shared"
)

// SystemEnvelopeType identifies the role of an engine-managed envelope
type SystemEnvelopeType string

const (
	SystemEnvelopeTransfer          SystemEnvelopeType = "TRANSFER"
	SystemEnvelopeCreditCardPayment SystemEnvelopeType = "CREDIT_CARD_PAYMENT"
	SystemEnvelopeLoanInflow        SystemEnvelopeType = "LOAN_INFLOW"
	SystemEnvelopeLoanPayment       SystemEnvelopeType = "LOAN_PAYMENT"
)

// IsValid checks if the system envelope type is valid
func (t SystemEnvelopeType) IsValid() bool {
	switch t {
	case SystemEnvelopeTransfer, SystemEnvelopeCreditCardPayment,
		SystemEnvelopeLoanInflow, SystemEnvelopeLoanPayment:
		return true
	}
	return false
}

// String returns the string representation
func (t SystemEnvelopeType) String() string {
	return string(t)
}

// Logical names of the engine-managed clearing envelopes. The legacy
// shared credit-card reserve used the bare "System: CC Payment" name
// before the reserve became one-per-card.
const (
	SystemEnvelopeNameTransfer      = "System: Transfer"
	SystemEnvelopeNameLoanInflow    = "System: Loan Inflow"
	SystemEnvelopeNameLoanPayment   = "System: Loan Payment"
	LegacySharedReserveEnvelopeName = "System: CC Payment"
)

// ReserveEnvelopeName derives the per-card payment reserve envelope name
// from the credit-card wallet name.
func ReserveEnvelopeName(walletName string) string {
	return "System: CC Payment - " + walletName
}

// BudgetEnvelope represents an allocation bucket. Available is the
// spendable allocation balance, distinct from any wallet's cash balance.
// System envelopes are engine-owned clearing/reserve buckets keyed by
// (entity, systemType, linkedWalletAccountID) so renames cannot fork
// their identity.
type BudgetEnvelope struct {
	shared.OwnedAggregateRoot
	Name                  string              `json:"name"`
	Available             decimal.Decimal     `json:"available"`
	MonthlyTarget         decimal.Decimal     `json:"monthly_target"`
	MaxAllocation         *decimal.Decimal    `json:"max_allocation,omitempty"`
	IsSystem              bool                `json:"is_system"`
	SystemType            *SystemEnvelopeType `json:"system_type,omitempty"`
	LinkedWalletAccountID *uuid.UUID          `json:"linked_wallet_account_id,omitempty"`
	LinkedCreditAccountID *uuid.UUID          `json:"linked_credit_account_id,omitempty"`
	IsOverflowTarget      bool                `json:"is_overflow_target"`
	IsArchived            bool                `json:"is_archived"`
}

// NewBudgetEnvelope creates a user envelope with zero balances
func NewBudgetEnvelope(userID, entityID uuid.UUID, name string) (*BudgetEnvelope, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Envelope name cannot be empty")
	}
	if len(name) > 150 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Envelope name cannot exceed 150 characters")
	}
	return &BudgetEnvelope{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, entityID),
		Name:               name,
		Available:          decimal.Zero,
		MonthlyTarget:      decimal.Zero,
	}, nil
}

// NewSystemEnvelope creates an engine-owned envelope with zero balances
func NewSystemEnvelope(userID, entityID uuid.UUID, name string, systemType SystemEnvelopeType) *BudgetEnvelope {
	env := &BudgetEnvelope{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, entityID),
		Name:               name,
		Available:          decimal.Zero,
		MonthlyTarget:      decimal.Zero,
		IsSystem:           true,
	}
	st := systemType
	env.SystemType = &st
	return env
}

// ApplyDelta applies an allocation balance delta
func (e *BudgetEnvelope) ApplyDelta(delta decimal.Decimal) {
	e.Available = e.Available.Add(delta).Round(2)
	e.Touch()
}

// RemainingCapacity returns how much more allocation the envelope can
// hold before hitting its configured maximum, floored at zero. Envelopes
// without a maximum have no capacity constraint.
func (e *BudgetEnvelope) RemainingCapacity() (decimal.Decimal, bool) {
	if e.MaxAllocation == nil {
		return decimal.Zero, false
	}
	capacity := e.MaxAllocation.Sub(e.Available).Round(2)
	if capacity.IsNegative() {
		capacity = decimal.Zero
	}
	return capacity, true
}

// Rename changes the envelope name. System envelopes keep their derived
// names; the provisioner updates those in place.
func (e *BudgetEnvelope) Rename(name string) error {
	if e.IsSystem {
		return shared.NewDomainError("INVALID_STATE", "System envelopes cannot be renamed by users")
	}
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Envelope name cannot be empty")
	}
	e.Name = name
	e.Touch()
	return nil
}

// SetMaxAllocation configures the hard cap on the allocation balance
func (e *BudgetEnvelope) SetMaxAllocation(max *decimal.Decimal) error {
	if max != nil && max.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Maximum allocation cannot be negative")
	}
	if max != nil {
		rounded := max.Round(2)
		e.MaxAllocation = &rounded
	} else {
		e.MaxAllocation = nil
	}
	e.Touch()
	return nil
}

// MarkOverflowTarget designates the envelope as the entity's catch-all
// overflow target ("Needs/Wants")
func (e *BudgetEnvelope) MarkOverflowTarget(isTarget bool) {
	e.IsOverflowTarget = isTarget
	e.Touch()
}

// Archive hides the envelope. System envelopes are never user-deletable
// or archivable.
func (e *BudgetEnvelope) Archive() error {
	if e.IsSystem {
		return shared.NewDomainError("INVALID_STATE", "System envelopes cannot be archived")
	}
	e.IsArchived = true
	e.Touch()
	return nil
}

// RetagAsReserve converts a legacy shared reserve envelope into a
// per-card payment reserve linked to the given wallet. One-time
// compatibility path; remove once historical data is confirmed migrated.
func (e *BudgetEnvelope) RetagAsReserve(name string, walletID uuid.UUID, creditAccountID *uuid.UUID) {
	st := SystemEnvelopeCreditCardPayment
	e.Name = name
	e.IsSystem = true
	e.SystemType = &st
	e.LinkedWalletAccountID = &walletID
	e.LinkedCreditAccountID = creditAccountID
	e.Touch()
}
