package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
	"github.com/pesobook/backend/internal/domain/shared/valueobject"
)

// PostingService posts ledger transactions. Every posting runs inside a
// single transaction scope: precondition checks, balance effects, and
// the audit row commit together or not at all.
type PostingService struct {
	scope TransactionScope
}

// NewPostingService creates a posting service
func NewPostingService(scope TransactionScope) *PostingService {
	return &PostingService{scope: scope}
}

// Post validates and applies one transaction
func (s *PostingService) Post(ctx context.Context, req *PostTransactionRequest) (*TransactionResponse, error) {
	var posted *ledger.FinanceTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := postWithinScope(ctx, repos, req)
		if err != nil {
			return err
		}
		posted = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToTransactionResponse(posted), nil
}

// PostBatch applies several transactions in one scope. Any failure rolls
// back the whole batch.
func (s *PostingService) PostBatch(ctx context.Context, reqs []*PostTransactionRequest) ([]*TransactionResponse, error) {
	if len(reqs) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Batch cannot be empty")
	}
	posted := make([]*ledger.FinanceTransaction, 0, len(reqs))
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, req := range reqs {
			tx, err := postWithinScope(ctx, repos, req)
			if err != nil {
				return err
			}
			posted = append(posted, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	responses := make([]*TransactionResponse, len(posted))
	for i, tx := range posted {
		responses[i] = ToTransactionResponse(tx)
	}
	return responses, nil
}

func validatePostRequest(req *PostTransactionRequest) error {
	if req.UserID == uuid.Nil || req.EntityID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "User and entity are required")
	}
	if !req.Kind.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid transaction kind: "+req.Kind.String())
	}
	if req.WalletAccountID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Wallet account is required")
	}
	amount := valueobject.NewMoney(req.Amount)
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Amount must be positive")
	}

	switch req.Kind {
	case ledger.KindIncome, ledger.KindExpense, ledger.KindCreditCardCharge:
		if req.BudgetEnvelopeID == nil && !req.RecordOnly {
			return shared.NewDomainError(shared.CodeInvalidInput, req.Kind.String()+" requires a budget envelope")
		}
	case ledger.KindTransfer:
		if req.TargetWalletAccountID == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Transfer requires a target wallet")
		}
		if *req.TargetWalletAccountID == req.WalletAccountID {
			return shared.NewDomainError(shared.CodeInvalidInput, "Transfer source and target must differ")
		}
	case ledger.KindCreditCardPayment:
		if req.TargetWalletAccountID == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Credit card payment requires the card wallet as target")
		}
		if *req.TargetWalletAccountID == req.WalletAccountID {
			return shared.NewDomainError(shared.CodeInvalidInput, "Payment cannot fund a card from itself")
		}
	case ledger.KindBudgetAllocation:
		if req.BudgetEnvelopeID == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Budget allocation requires an envelope")
		}
	case ledger.KindLoanBorrow, ledger.KindLoanRepay:
		if req.LoanRecordID == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Loan transactions require a loan record")
		}
	case ledger.KindAdjustment:
		if req.AdjustmentDirection == nil || !req.AdjustmentDirection.IsValid() {
			return shared.NewDomainError(shared.CodeInvalidInput, "Adjustment requires a direction")
		}
		if req.AdjustmentReasonCode == "" {
			return shared.NewDomainError(shared.CodeInvalidInput, "Adjustment requires a reason code")
		}
	}
	return nil
}

// postWithinScope does the actual posting work against transaction-bound
// repositories. Reused by the batch path and by reversal compensation.
func postWithinScope(ctx context.Context, repos TransactionalRepositories, req *PostTransactionRequest) (*ledger.FinanceTransaction, error) {
	if err := validatePostRequest(req); err != nil {
		return nil, err
	}
	amount := valueobject.NewMoney(req.Amount).Amount()
	postedAt := req.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now()
	}

	targets, err := resolveTargets(ctx, repos, req.UserID, req.EntityID,
		req.WalletAccountID, req.TargetWalletAccountID, req.BudgetEnvelopeID,
		req.LoanRecordID, req.IncomeStreamID, false)
	if err != nil {
		return nil, err
	}

	tx := &ledger.FinanceTransaction{
		OwnedAggregateRoot:    shared.NewOwnedAggregateRoot(req.UserID, req.EntityID),
		Kind:                  req.Kind,
		PostedAt:              postedAt,
		Amount:                amount,
		WalletAccountID:       req.WalletAccountID,
		TargetWalletAccountID: req.TargetWalletAccountID,
		BudgetEnvelopeID:      req.BudgetEnvelopeID,
		LoanRecordID:          req.LoanRecordID,
		IncomeStreamID:        req.IncomeStreamID,
		AdjustmentDirection:   req.AdjustmentDirection,
		AdjustmentReasonCode:  req.AdjustmentReasonCode,
		Remarks:               req.Remarks,
		RecordOnly:            req.RecordOnly,
		CountsTowardBudget:    req.Kind.CountsTowardBudget() && !req.RecordOnly,
		CreatedBy:             req.ActorUserID,
	}

	effectTargets := ledger.EffectTargets{
		Wallet:       targets.wallet,
		TargetWallet: targets.targetWallet,
		Envelope:     targets.envelope,
		Loan:         targets.loan,
	}

	switch req.Kind {
	case ledger.KindTransfer:
		env, err := ensureSystemEnvelope(ctx, repos, req.UserID, req.EntityID,
			ledger.SystemEnvelopeTransfer, ledger.SystemEnvelopeNameTransfer, nil, nil)
		if err != nil {
			return nil, err
		}
		envID := env.ID
		tx.BudgetEnvelopeID = &envID

	case ledger.KindCreditCardCharge:
		credit, err := resolveCreditAccount(ctx, repos, req.UserID, req.EntityID, targets.wallet)
		if err != nil {
			return nil, err
		}
		if !req.RecordOnly && credit.WouldExceedCreditLimit(amount) {
			return nil, shared.NewDomainError(shared.CodeCreditLimitExceeded, "Charge would exceed the credit limit")
		}
		creditID := credit.ID
		tx.CreditAccountID = &creditID
		effectTargets.CreditAccount = credit

	case ledger.KindCreditCardPayment:
		credit, err := resolveCreditAccount(ctx, repos, req.UserID, req.EntityID, targets.targetWallet)
		if err != nil {
			return nil, err
		}
		if !req.RecordOnly && amount.GreaterThan(credit.OutstandingDebt) {
			return nil, shared.NewDomainError(shared.CodeExceedsOutstandingDebt, "Payment exceeds the outstanding debt")
		}
		creditID := credit.ID
		reserve, err := ensureReserveEnvelope(ctx, repos, req.UserID, req.EntityID, targets.targetWallet, &creditID)
		if err != nil {
			return nil, err
		}
		if !req.RecordOnly && reserve.Available.LessThan(amount) {
			return nil, shared.NewDomainError(shared.CodeInsufficientReserve, "Payment reserve does not cover the amount")
		}
		reserveID := reserve.ID
		tx.CreditAccountID = &creditID
		tx.BudgetEnvelopeID = &reserveID
		effectTargets.CreditAccount = credit
		effectTargets.ReserveEnvelope = reserve

	case ledger.KindLoanBorrow:
		env, err := ensureSystemEnvelope(ctx, repos, req.UserID, req.EntityID,
			ledger.SystemEnvelopeLoanInflow, ledger.SystemEnvelopeNameLoanInflow, nil, nil)
		if err != nil {
			return nil, err
		}
		envID := env.ID
		tx.BudgetEnvelopeID = &envID

	case ledger.KindLoanRepay:
		if !req.RecordOnly && amount.GreaterThan(targets.loan.RemainingPrincipal) {
			return nil, shared.NewDomainError(shared.CodeExceedsRemainingPrincipal, "Repayment exceeds the remaining principal")
		}
		env, err := ensureSystemEnvelope(ctx, repos, req.UserID, req.EntityID,
			ledger.SystemEnvelopeLoanPayment, ledger.SystemEnvelopeNameLoanPayment, nil, nil)
		if err != nil {
			return nil, err
		}
		envID := env.ID
		tx.BudgetEnvelopeID = &envID

	case ledger.KindAdjustment:
		// Adjustments move the wallet balance only
		tx.BudgetEnvelopeID = nil
		effectTargets.Envelope = nil

	case ledger.KindBudgetAllocation:
		if !req.RecordOnly {
			split, err := resolveAllocationSplit(ctx, repos, req.UserID, req.EntityID, targets.envelope, amount)
			if err != nil {
				return nil, err
			}
			if split.overflowEnvelope != nil {
				overflowID := split.overflowEnvelope.ID
				overflowAmt := split.overflow
				tx.OverflowEnvelopeID = &overflowID
				tx.OverflowAmount = &overflowAmt
				effectTargets.OverflowEnvelope = split.overflowEnvelope
			}
		}
	}

	if !tx.RecordOnly {
		if err := ledger.ApplyEffects(tx, effectTargets, 1); err != nil {
			return nil, err
		}
		if err := persistEffectTargets(ctx, repos, effectTargets); err != nil {
			return nil, err
		}
	}
	if err := repos.Transactions().Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// persistEffectTargets saves every aggregate a posting touched, with
// optimistic locking on each
func persistEffectTargets(ctx context.Context, repos TransactionalRepositories, targets ledger.EffectTargets) error {
	if targets.Wallet != nil {
		targets.Wallet.Version++
		if err := repos.Wallets().SaveWithLock(ctx, targets.Wallet); err != nil {
			return err
		}
	}
	if targets.TargetWallet != nil {
		targets.TargetWallet.Version++
		if err := repos.Wallets().SaveWithLock(ctx, targets.TargetWallet); err != nil {
			return err
		}
	}
	for _, env := range []*ledger.BudgetEnvelope{targets.Envelope, targets.OverflowEnvelope, targets.ReserveEnvelope} {
		if env == nil {
			continue
		}
		env.Version++
		if err := repos.Envelopes().SaveWithLock(ctx, env); err != nil {
			return err
		}
	}
	if targets.CreditAccount != nil {
		targets.CreditAccount.Version++
		if err := repos.CreditAccounts().SaveWithLock(ctx, targets.CreditAccount); err != nil {
			return err
		}
	}
	if targets.Loan != nil {
		targets.Loan.Version++
		if err := repos.Loans().SaveWithLock(ctx, targets.Loan); err != nil {
			return err
		}
	}
	return nil
}
