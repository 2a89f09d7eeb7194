package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/ledger"
)

// PostTransactionRequest carries everything needed to post one movement
type PostTransactionRequest struct {
	UserID                uuid.UUID
	EntityID              uuid.UUID
	ActorUserID           uuid.UUID
	Kind                  ledger.TransactionKind
	PostedAt              time.Time
	Amount                decimal.Decimal
	WalletAccountID       uuid.UUID
	TargetWalletAccountID *uuid.UUID
	BudgetEnvelopeID      *uuid.UUID
	LoanRecordID          *uuid.UUID
	IncomeStreamID        *uuid.UUID
	AdjustmentDirection   *ledger.AdjustmentDirection
	AdjustmentReasonCode  string
	Remarks               string
	RecordOnly            bool
}

// TransactionResponse is the API view of a posted transaction
type TransactionResponse struct {
	ID                    uuid.UUID        `json:"id"`
	Kind                  string           `json:"kind"`
	PostedAt              time.Time        `json:"posted_at"`
	Amount                decimal.Decimal  `json:"amount"`
	WalletAccountID       uuid.UUID        `json:"wallet_account_id"`
	TargetWalletAccountID *uuid.UUID       `json:"target_wallet_account_id,omitempty"`
	BudgetEnvelopeID      *uuid.UUID       `json:"budget_envelope_id,omitempty"`
	OverflowEnvelopeID    *uuid.UUID       `json:"overflow_envelope_id,omitempty"`
	OverflowAmount        *decimal.Decimal `json:"overflow_amount,omitempty"`
	CreditAccountID       *uuid.UUID       `json:"credit_account_id,omitempty"`
	LoanRecordID          *uuid.UUID       `json:"loan_record_id,omitempty"`
	IncomeStreamID        *uuid.UUID       `json:"income_stream_id,omitempty"`
	AdjustmentDirection   *string          `json:"adjustment_direction,omitempty"`
	AdjustmentReasonCode  string           `json:"adjustment_reason_code,omitempty"`
	Remarks               string           `json:"remarks,omitempty"`
	RecordOnly            bool             `json:"record_only"`
	CountsTowardBudget    bool             `json:"counts_toward_budget"`
	IsVoided              bool             `json:"is_voided"`
	VoidedAt              *time.Time       `json:"voided_at,omitempty"`
	IsReversal            bool             `json:"is_reversal"`
	ReversesTransactionID *uuid.UUID       `json:"reverses_transaction_id,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
}

// ToTransactionResponse maps a domain transaction to its API view
func ToTransactionResponse(tx *ledger.FinanceTransaction) *TransactionResponse {
	if tx == nil {
		return nil
	}
	resp := &TransactionResponse{
		ID:                    tx.ID,
		Kind:                  tx.Kind.String(),
		PostedAt:              tx.PostedAt,
		Amount:                tx.Amount,
		WalletAccountID:       tx.WalletAccountID,
		TargetWalletAccountID: tx.TargetWalletAccountID,
		BudgetEnvelopeID:      tx.BudgetEnvelopeID,
		OverflowEnvelopeID:    tx.OverflowEnvelopeID,
		OverflowAmount:        tx.OverflowAmount,
		CreditAccountID:       tx.CreditAccountID,
		LoanRecordID:          tx.LoanRecordID,
		IncomeStreamID:        tx.IncomeStreamID,
		AdjustmentReasonCode:  tx.AdjustmentReasonCode,
		Remarks:               tx.Remarks,
		RecordOnly:            tx.RecordOnly,
		CountsTowardBudget:    tx.CountsTowardBudget,
		IsVoided:              tx.IsVoided,
		VoidedAt:              tx.VoidedAt,
		IsReversal:            tx.IsReversal,
		ReversesTransactionID: tx.ReversesTransactionID,
		CreatedAt:             tx.CreatedAt,
	}
	if tx.AdjustmentDirection != nil {
		dir := tx.AdjustmentDirection.String()
		resp.AdjustmentDirection = &dir
	}
	return resp
}

// ListTransactionsRequest narrows a history listing
type ListTransactionsRequest struct {
	UserID           uuid.UUID
	EntityID         uuid.UUID
	Page             int
	PageSize         int
	Kind             *ledger.TransactionKind
	WalletAccountID  *uuid.UUID
	BudgetEnvelopeID *uuid.UUID
	CreditAccountID  *uuid.UUID
	LoanRecordID     *uuid.UUID
	IncomeStreamID   *uuid.UUID
	PostedFrom       *time.Time
	PostedTo         *time.Time
	IncludeVoided    bool
	BudgetOnly       bool
	OrderBy          string
	OrderDir         string
}
