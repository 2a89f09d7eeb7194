package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// resolvedTargets holds the owner-verified aggregates a posting references
type resolvedTargets struct {
	wallet        *ledger.WalletAccount
	targetWallet  *ledger.WalletAccount
	envelope      *ledger.BudgetEnvelope
	creditAccount *ledger.CreditAccount
	loan          *ledger.LoanRecord
	stream        *ledger.IncomeStream
}

// resolveTargets loads every aggregate the request references, scoped to
// the requesting (user, entity). A reference owned by another entity is
// indistinguishable from a missing one. allowArchived is set when
// replaying a reversal, which must reach archived resources.
func resolveTargets(
	ctx context.Context,
	repos TransactionalRepositories,
	userID, entityID uuid.UUID,
	walletID uuid.UUID,
	targetWalletID, envelopeID, loanID, streamID *uuid.UUID,
	allowArchived bool,
) (*resolvedTargets, error) {
	out := &resolvedTargets{}

	wallet, err := repos.Wallets().FindByIDForOwner(ctx, userID, entityID, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.IsArchived && !allowArchived {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Wallet account is archived")
	}
	out.wallet = wallet

	if targetWalletID != nil {
		target, err := repos.Wallets().FindByIDForOwner(ctx, userID, entityID, *targetWalletID)
		if err != nil {
			return nil, err
		}
		if target.IsArchived && !allowArchived {
			return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Target wallet account is archived")
		}
		out.targetWallet = target
	}

	if envelopeID != nil {
		env, err := repos.Envelopes().FindByIDForOwner(ctx, userID, entityID, *envelopeID)
		if err != nil {
			return nil, err
		}
		if env.IsArchived && !allowArchived {
			return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Budget envelope is archived")
		}
		out.envelope = env
	}

	if loanID != nil {
		loan, err := repos.Loans().FindByIDForOwner(ctx, userID, entityID, *loanID)
		if err != nil {
			return nil, err
		}
		if loan.IsArchived && !allowArchived {
			return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Loan record is archived")
		}
		out.loan = loan
	}

	if streamID != nil {
		stream, err := repos.IncomeStreams().FindByIDForOwner(ctx, userID, entityID, *streamID)
		if err != nil {
			return nil, err
		}
		if stream.IsArchived && !allowArchived {
			return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Income stream is archived")
		}
		out.stream = stream
	}

	return out, nil
}

// resolveCreditAccount loads the credit account linked to a credit-card
// wallet, following the link in either direction
func resolveCreditAccount(
	ctx context.Context,
	repos TransactionalRepositories,
	userID, entityID uuid.UUID,
	cardWallet *ledger.WalletAccount,
) (*ledger.CreditAccount, error) {
	if !cardWallet.IsCreditCard() {
		return nil, shared.NewDomainError(shared.CodeTypeMismatch, "Wallet account is not a credit card")
	}
	if cardWallet.LinkedCreditAccountID == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Credit card wallet has no linked credit account")
	}
	return repos.CreditAccounts().FindByIDForOwner(ctx, userID, entityID, *cardWallet.LinkedCreditAccountID)
}
