package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/shared"
)

// LoanDirection distinguishes money the user owes from money owed to them
type LoanDirection string

const (
	LoanDirectionYouOwe     LoanDirection = "YOU_OWE"
	LoanDirectionYouAreOwed LoanDirection = "YOU_ARE_OWED"
)

// IsValid checks if the loan direction is valid
func (d LoanDirection) IsValid() bool {
	return d == LoanDirectionYouOwe || d == LoanDirectionYouAreOwed
}

// String returns the string representation
func (d LoanDirection) String() string {
	return string(d)
}

// LoanStatus represents the lifecycle state of a loan record
type LoanStatus string

const (
	LoanStatusInactive   LoanStatus = "INACTIVE"
	LoanStatusActive     LoanStatus = "ACTIVE"
	LoanStatusPaid       LoanStatus = "PAID"
	LoanStatusWrittenOff LoanStatus = "WRITTEN_OFF"
)

// IsValid checks if the loan status is valid
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusInactive, LoanStatusActive, LoanStatusPaid, LoanStatusWrittenOff:
		return true
	}
	return false
}

// String returns the string representation
func (s LoanStatus) String() string {
	return string(s)
}

// LoanRecord tracks principal drawn and repaid on a single loan.
// RemainingPrincipal is derived state kept alongside the counters so
// reads never need to replay the transaction history.
type LoanRecord struct {
	shared.OwnedAggregateRoot
	Name               string          `json:"name"`
	Direction          LoanDirection   `json:"direction"`
	Status             LoanStatus      `json:"status"`
	Counterparty       string          `json:"counterparty"`
	TotalBorrowed      decimal.Decimal `json:"total_borrowed"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
	Remarks            string          `json:"remarks"`
	IsArchived         bool            `json:"is_archived"`
}

// NewLoanRecord creates a loan record with no principal drawn yet
func NewLoanRecord(userID, entityID uuid.UUID, name string, direction LoanDirection) (*LoanRecord, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Loan name cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid loan direction: "+direction.String())
	}
	return &LoanRecord{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, entityID),
		Name:               name,
		Direction:          direction,
		Status:             LoanStatusInactive,
		TotalBorrowed:      decimal.Zero,
		TotalPaid:          decimal.Zero,
		RemainingPrincipal: decimal.Zero,
	}, nil
}

// ApplyBorrow records a principal draw. sign is +1 for a posting and -1
// for its reversal. Forward draws activate the loan; unwinding the very
// first draw returns it to INACTIVE.
func (l *LoanRecord) ApplyBorrow(amount decimal.Decimal, sign int) {
	delta := amount
	if sign < 0 {
		delta = amount.Neg()
	}
	l.TotalBorrowed = l.TotalBorrowed.Add(delta).Round(2)
	if l.TotalBorrowed.IsNegative() {
		l.TotalBorrowed = decimal.Zero
	}
	l.RemainingPrincipal = l.RemainingPrincipal.Add(delta).Round(2)
	if l.RemainingPrincipal.IsNegative() {
		l.RemainingPrincipal = decimal.Zero
	}
	if sign > 0 {
		if l.Status == LoanStatusInactive || l.Status == LoanStatusPaid {
			l.Status = LoanStatusActive
		}
	} else if l.TotalBorrowed.IsZero() {
		l.Status = LoanStatusInactive
	}
	l.Touch()
}

// ApplyRepay records a principal repayment. sign is +1 for a posting and
// -1 for its reversal. Paying the principal down to zero marks the loan
// PAID; unwinding a repayment on a PAID loan reactivates it.
func (l *LoanRecord) ApplyRepay(amount decimal.Decimal, sign int) {
	delta := amount
	if sign < 0 {
		delta = amount.Neg()
	}
	l.TotalPaid = l.TotalPaid.Add(delta).Round(2)
	if l.TotalPaid.IsNegative() {
		l.TotalPaid = decimal.Zero
	}
	l.RemainingPrincipal = l.RemainingPrincipal.Sub(delta).Round(2)
	if l.RemainingPrincipal.IsNegative() {
		l.RemainingPrincipal = decimal.Zero
	}
	if sign > 0 {
		if l.RemainingPrincipal.IsZero() && l.Status == LoanStatusActive {
			l.Status = LoanStatusPaid
		}
	} else if l.Status == LoanStatusPaid && l.RemainingPrincipal.GreaterThan(decimal.Zero) {
		l.Status = LoanStatusActive
	}
	l.Touch()
}

// SetStatus applies a manual status change, e.g. writing off a bad loan
func (l *LoanRecord) SetStatus(status LoanStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid loan status: "+status.String())
	}
	l.Status = status
	l.Touch()
	return nil
}

// SetRemarks updates the free-form notes
func (l *LoanRecord) SetRemarks(remarks string) {
	l.Remarks = remarks
	l.Touch()
}

// Archive hides the loan record
func (l *LoanRecord) Archive() {
	l.IsArchived = true
	l.Touch()
}
