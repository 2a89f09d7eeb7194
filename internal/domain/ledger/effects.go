package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/shared"
)

// EffectTargets holds the aggregates a posting touches. Only the fields
// the transaction kind needs are set; ApplyEffects errors if a required
// one is missing.
type EffectTargets struct {
	Wallet           *WalletAccount
	TargetWallet     *WalletAccount
	Envelope         *BudgetEnvelope
	OverflowEnvelope *BudgetEnvelope
	ReserveEnvelope  *BudgetEnvelope
	CreditAccount    *CreditAccount
	Loan             *LoanRecord
}

func signed(amount decimal.Decimal, sign int) decimal.Decimal {
	if sign < 0 {
		return amount.Neg()
	}
	return amount
}

// ApplyEffects applies the balance effects of one transaction to its
// target aggregates. sign is +1 when posting and -1 when reversing, so
// every kind reverses through the same table it posts through.
// Record-only transactions never move balances.
func ApplyEffects(tx *FinanceTransaction, targets EffectTargets, sign int) error {
	if tx.RecordOnly {
		return nil
	}
	if targets.Wallet == nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Transaction has no wallet account")
	}
	amt := signed(tx.Amount, sign)

	switch tx.Kind {
	case KindIncome:
		if targets.Envelope == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Income requires an envelope")
		}
		targets.Wallet.ApplyDelta(amt)
		targets.Envelope.ApplyDelta(amt)

	case KindExpense:
		if targets.Envelope == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Expense requires an envelope")
		}
		targets.Wallet.ApplyDelta(amt.Neg())
		targets.Envelope.ApplyDelta(amt.Neg())

	case KindBudgetAllocation:
		if targets.Envelope == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Budget allocation requires an envelope")
		}
		targets.Wallet.ApplyDelta(amt.Neg())
		primary := amt
		if tx.OverflowAmount != nil && !tx.OverflowAmount.IsZero() {
			if targets.OverflowEnvelope == nil {
				return shared.NewDomainError(shared.CodeInvalidInput, "Allocation overflow recorded without an overflow envelope")
			}
			primary = amt.Sub(signed(*tx.OverflowAmount, sign))
			targets.OverflowEnvelope.ApplyDelta(signed(*tx.OverflowAmount, sign))
		}
		targets.Envelope.ApplyDelta(primary)

	case KindTransfer:
		if targets.TargetWallet == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Transfer requires a target wallet")
		}
		targets.Wallet.ApplyDelta(amt.Neg())
		targets.TargetWallet.ApplyDelta(amt)

	case KindCreditCardCharge:
		if targets.CreditAccount == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Credit card charge requires a credit account")
		}
		if targets.Envelope == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Credit card charge requires an envelope")
		}
		targets.Wallet.ApplyDelta(amt)
		targets.CreditAccount.ApplyDelta(amt)
		targets.Envelope.ApplyDelta(amt.Neg())

	case KindCreditCardPayment:
		if targets.TargetWallet == nil || targets.CreditAccount == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Credit card payment requires a card wallet and credit account")
		}
		targets.Wallet.ApplyDelta(amt.Neg())
		targets.TargetWallet.ApplyDelta(amt.Neg())
		targets.CreditAccount.ApplyDelta(amt.Neg())
		if targets.ReserveEnvelope != nil {
			targets.ReserveEnvelope.ApplyDelta(amt.Neg())
		}

	case KindLoanBorrow:
		if targets.Loan == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Loan borrow requires a loan record")
		}
		targets.Wallet.ApplyDelta(amt)
		targets.Loan.ApplyBorrow(tx.Amount, sign)

	case KindLoanRepay:
		if targets.Loan == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Loan repayment requires a loan record")
		}
		targets.Wallet.ApplyDelta(amt.Neg())
		targets.Loan.ApplyRepay(tx.Amount, sign)

	case KindAdjustment:
		if tx.AdjustmentDirection == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Adjustment requires a direction")
		}
		delta := amt
		if *tx.AdjustmentDirection == AdjustmentDecrease {
			delta = amt.Neg()
		}
		targets.Wallet.ApplyDelta(delta)

	default:
		return shared.NewDomainError(shared.CodeInvalidInput, "Unknown transaction kind: "+tx.Kind.String())
	}
	return nil
}
