package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/shared"
)

// TransactionKind is the closed set of posting kinds the engine knows
// how to apply and reverse
type TransactionKind string

const (
	KindIncome            TransactionKind = "INCOME"
	KindExpense           TransactionKind = "EXPENSE"
	KindBudgetAllocation  TransactionKind = "BUDGET_ALLOCATION"
	KindTransfer          TransactionKind = "TRANSFER"
	KindCreditCardCharge  TransactionKind = "CREDIT_CARD_CHARGE"
	KindCreditCardPayment TransactionKind = "CREDIT_CARD_PAYMENT"
	KindLoanBorrow        TransactionKind = "LOAN_BORROW"
	KindLoanRepay         TransactionKind = "LOAN_REPAY"
	KindAdjustment        TransactionKind = "ADJUSTMENT"
)

// IsValid checks if the transaction kind is valid
func (k TransactionKind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense, KindBudgetAllocation, KindTransfer,
		KindCreditCardCharge, KindCreditCardPayment,
		KindLoanBorrow, KindLoanRepay, KindAdjustment:
		return true
	}
	return false
}

// String returns the string representation
func (k TransactionKind) String() string {
	return string(k)
}

// CountsTowardBudget reports whether postings of this kind feed budget
// period reporting. Clearing movements (transfers, card payments, loan
// flows, adjustments) never do.
func (k TransactionKind) CountsTowardBudget() bool {
	switch k {
	case KindIncome, KindExpense, KindBudgetAllocation, KindCreditCardCharge:
		return true
	}
	return false
}

// AdjustmentDirection gives an ADJUSTMENT its sign. Amounts are stored as
// positive magnitudes; the direction says which way balances move.
type AdjustmentDirection string

const (
	AdjustmentIncrease AdjustmentDirection = "INCREASE"
	AdjustmentDecrease AdjustmentDirection = "DECREASE"
)

// IsValid checks if the adjustment direction is valid
func (d AdjustmentDirection) IsValid() bool {
	return d == AdjustmentIncrease || d == AdjustmentDecrease
}

// String returns the string representation
func (d AdjustmentDirection) String() string {
	return string(d)
}

// FinanceTransaction is the immutable record of one posted movement.
// Balance effects live on the referenced aggregates; the row itself is
// the audit trail. Voided rows stay in place, linked to the reversal
// that undid them.
type FinanceTransaction struct {
	shared.OwnedAggregateRoot
	Kind                  TransactionKind      `json:"kind"`
	PostedAt              time.Time            `json:"posted_at"`
	Amount                decimal.Decimal      `json:"amount"`
	WalletAccountID       uuid.UUID            `json:"wallet_account_id"`
	TargetWalletAccountID *uuid.UUID           `json:"target_wallet_account_id,omitempty"`
	BudgetEnvelopeID      *uuid.UUID           `json:"budget_envelope_id,omitempty"`
	OverflowEnvelopeID    *uuid.UUID           `json:"overflow_envelope_id,omitempty"`
	OverflowAmount        *decimal.Decimal     `json:"overflow_amount,omitempty"`
	CreditAccountID       *uuid.UUID           `json:"credit_account_id,omitempty"`
	LoanRecordID          *uuid.UUID           `json:"loan_record_id,omitempty"`
	IncomeStreamID        *uuid.UUID           `json:"income_stream_id,omitempty"`
	AdjustmentDirection   *AdjustmentDirection `json:"adjustment_direction,omitempty"`
	AdjustmentReasonCode  string               `json:"adjustment_reason_code,omitempty"`
	Remarks               string               `json:"remarks,omitempty"`
	RecordOnly            bool                 `json:"record_only"`
	CountsTowardBudget    bool                 `json:"counts_toward_budget"`
	IsVoided              bool                 `json:"is_voided"`
	VoidedAt              *time.Time           `json:"voided_at,omitempty"`
	VoidedBy              *uuid.UUID           `json:"voided_by,omitempty"`
	IsReversal            bool                 `json:"is_reversal"`
	ReversesTransactionID *uuid.UUID           `json:"reverses_transaction_id,omitempty"`
	CreatedBy             uuid.UUID            `json:"created_by"`
}

// Void stamps the transaction as undone by a reversal
func (t *FinanceTransaction) Void(actor uuid.UUID) error {
	if t.IsVoided {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Transaction is already voided")
	}
	now := time.Now()
	t.IsVoided = true
	t.VoidedAt = &now
	t.VoidedBy = &actor
	t.Touch()
	return nil
}
