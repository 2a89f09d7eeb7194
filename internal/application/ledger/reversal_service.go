package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// ReverseTransactionRequest identifies the transaction to undo
type ReverseTransactionRequest struct {
	UserID        uuid.UUID
	EntityID      uuid.UUID
	ActorUserID   uuid.UUID
	TransactionID uuid.UUID
	Remarks       string
}

// UpdateTransactionRequest replaces a posted transaction with a
// corrected one
type UpdateTransactionRequest struct {
	TransactionID uuid.UUID
	Replacement   *PostTransactionRequest
}

// ReversalService undoes posted transactions by replaying their effects
// with the opposite sign. The original row is voided and a reversal row
// documents the undo. Record-only rows, having moved nothing, are simply
// deleted.
type ReversalService struct {
	scope TransactionScope
}

// NewReversalService creates a reversal service
func NewReversalService(scope TransactionScope) *ReversalService {
	return &ReversalService{scope: scope}
}

// Reverse undoes one transaction atomically
func (s *ReversalService) Reverse(ctx context.Context, req *ReverseTransactionRequest) (*TransactionResponse, error) {
	var reversal *ledger.FinanceTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := reverseWithinScope(ctx, repos, req)
		if err != nil {
			return err
		}
		reversal = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToTransactionResponse(reversal), nil
}

// Update corrects a posted transaction by posting its replacement and
// then reversing the original. The two steps commit separately so a
// reversal failure cannot take the replacement down with it; instead the
// replacement is compensated away. If even the compensation fails, both
// rows stand and the caller is told to intervene.
func (s *ReversalService) Update(ctx context.Context, req *UpdateTransactionRequest) (*TransactionResponse, error) {
	if req.Replacement == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Update requires a replacement transaction")
	}

	var replacement *ledger.FinanceTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := postWithinScope(ctx, repos, req.Replacement)
		if err != nil {
			return err
		}
		replacement = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	reverseReq := &ReverseTransactionRequest{
		UserID:        req.Replacement.UserID,
		EntityID:      req.Replacement.EntityID,
		ActorUserID:   req.Replacement.ActorUserID,
		TransactionID: req.TransactionID,
		Remarks:       "Superseded by correction",
	}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		_, err := reverseWithinScope(ctx, repos, reverseReq)
		return err
	})
	if err == nil {
		return ToTransactionResponse(replacement), nil
	}

	compensate := &ReverseTransactionRequest{
		UserID:        req.Replacement.UserID,
		EntityID:      req.Replacement.EntityID,
		ActorUserID:   req.Replacement.ActorUserID,
		TransactionID: replacement.ID,
		Remarks:       "Correction rolled back",
	}
	compErr := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		_, err := reverseWithinScope(ctx, repos, compensate)
		return err
	})
	if compErr != nil {
		return nil, shared.NewDomainError(shared.CodeUpdateRollbackFailed, "Original could not be reversed and the correction could not be rolled back; manual intervention required")
	}
	return nil, err
}

// reverseWithinScope undoes a transaction against transaction-bound
// repositories
func reverseWithinScope(ctx context.Context, repos TransactionalRepositories, req *ReverseTransactionRequest) (*ledger.FinanceTransaction, error) {
	original, err := repos.Transactions().FindByIDForOwner(ctx, req.UserID, req.EntityID, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if original.IsVoided {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Transaction is already voided")
	}
	if original.IsReversal {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Reversals cannot themselves be reversed")
	}

	// A record-only row moved no balances, so its undo is plain deletion:
	// no void, no paired reversal row.
	if original.RecordOnly {
		if err := repos.Transactions().Delete(ctx, req.UserID, req.EntityID, original.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	targets, err := resolveReversalTargets(ctx, repos, original)
	if err != nil {
		return nil, err
	}

	if err := ledger.ApplyEffects(original, targets, -1); err != nil {
		return nil, err
	}
	if err := persistEffectTargets(ctx, repos, targets); err != nil {
		return nil, err
	}

	if err := original.Void(req.ActorUserID); err != nil {
		return nil, err
	}
	if err := repos.Transactions().Save(ctx, original); err != nil {
		return nil, err
	}

	originalID := original.ID
	reversal := &ledger.FinanceTransaction{
		OwnedAggregateRoot:    shared.NewOwnedAggregateRoot(original.UserID, original.EntityID),
		Kind:                  original.Kind,
		PostedAt:              time.Now(),
		Amount:                original.Amount,
		WalletAccountID:       original.WalletAccountID,
		TargetWalletAccountID: original.TargetWalletAccountID,
		BudgetEnvelopeID:      original.BudgetEnvelopeID,
		OverflowEnvelopeID:    original.OverflowEnvelopeID,
		OverflowAmount:        original.OverflowAmount,
		CreditAccountID:       original.CreditAccountID,
		LoanRecordID:          original.LoanRecordID,
		IncomeStreamID:        original.IncomeStreamID,
		AdjustmentDirection:   original.AdjustmentDirection,
		AdjustmentReasonCode:  original.AdjustmentReasonCode,
		Remarks:               req.Remarks,
		IsReversal:            true,
		ReversesTransactionID: &originalID,
		CreatedBy:             req.ActorUserID,
	}
	if err := repos.Transactions().Save(ctx, reversal); err != nil {
		return nil, err
	}
	return reversal, nil
}

// resolveReversalTargets reloads the aggregates a stored transaction
// references using its own recorded IDs. Archived resources are
// reachable here so an undo always lands where the posting did.
func resolveReversalTargets(ctx context.Context, repos TransactionalRepositories, tx *ledger.FinanceTransaction) (ledger.EffectTargets, error) {
	targets := ledger.EffectTargets{}

	resolved, err := resolveTargets(ctx, repos, tx.UserID, tx.EntityID,
		tx.WalletAccountID, tx.TargetWalletAccountID, nil, tx.LoanRecordID, tx.IncomeStreamID, true)
	if err != nil {
		return targets, err
	}
	targets.Wallet = resolved.wallet
	targets.TargetWallet = resolved.targetWallet
	targets.Loan = resolved.loan

	if tx.BudgetEnvelopeID != nil {
		env, err := repos.Envelopes().FindByIDForOwner(ctx, tx.UserID, tx.EntityID, *tx.BudgetEnvelopeID)
		if err != nil {
			return targets, err
		}
		if tx.Kind == ledger.KindCreditCardPayment {
			targets.ReserveEnvelope = env
		} else {
			targets.Envelope = env
		}
	}
	if tx.OverflowEnvelopeID != nil {
		overflow, err := repos.Envelopes().FindByIDForOwner(ctx, tx.UserID, tx.EntityID, *tx.OverflowEnvelopeID)
		if err != nil {
			return targets, err
		}
		targets.OverflowEnvelope = overflow
	}
	if tx.CreditAccountID != nil {
		credit, err := repos.CreditAccounts().FindByIDForOwner(ctx, tx.UserID, tx.EntityID, *tx.CreditAccountID)
		if err != nil {
			return targets, err
		}
		targets.CreditAccount = credit
	}
	return targets, nil
}
