package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

func (f *ledgerFixture) reverse(txID uuid.UUID) (*TransactionResponse, error) {
	return f.reversal.Reverse(context.Background(), &ReverseTransactionRequest{
		UserID:        f.userID,
		EntityID:      f.entityID,
		ActorUserID:   f.actor,
		TransactionID: txID,
	})
}

func TestReversalServiceReverse(t *testing.T) {
	t.Run("voids the original and restores the balances", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)
		envelope := f.envelope("Groceries", 300)

		req := f.request(ledger.KindExpense, 120, wallet.ID)
		req.BudgetEnvelopeID = &envelope.ID
		posted, err := f.posting.Post(context.Background(), req)
		require.NoError(t, err)

		reversal, err := f.reverse(posted.ID)
		require.NoError(t, err)

		assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(500)))
		assert.True(t, envelope.Available.Equal(decimal.NewFromInt(300)))

		assert.True(t, reversal.IsReversal)
		require.NotNil(t, reversal.ReversesTransactionID)
		assert.Equal(t, posted.ID, *reversal.ReversesTransactionID)
		assert.False(t, reversal.CountsTowardBudget)
		assert.Equal(t, posted.Kind, reversal.Kind)
		assert.True(t, reversal.Amount.Equal(posted.Amount))

		original := f.store.transactions[posted.ID]
		require.NotNil(t, original)
		assert.True(t, original.IsVoided)
		assert.NotNil(t, original.VoidedAt)
	})

	t.Run("a voided transaction cannot be reversed again", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)

		posted, err := f.posting.Post(context.Background(), f.expenseRequest(50, wallet.ID))
		require.NoError(t, err)
		_, err = f.reverse(posted.ID)
		require.NoError(t, err)

		_, err = f.reverse(posted.ID)
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
		assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(500)))
	})

	t.Run("a reversal cannot itself be reversed", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)

		posted, err := f.posting.Post(context.Background(), f.expenseRequest(50, wallet.ID))
		require.NoError(t, err)
		reversal, err := f.reverse(posted.ID)
		require.NoError(t, err)

		_, err = f.reverse(reversal.ID)
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})

	t.Run("only the owning entity can reverse", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)

		posted, err := f.posting.Post(context.Background(), f.expenseRequest(50, wallet.ID))
		require.NoError(t, err)

		_, err = f.reversal.Reverse(context.Background(), &ReverseTransactionRequest{
			UserID:        f.userID,
			EntityID:      uuid.New(),
			ActorUserID:   f.actor,
			TransactionID: posted.ID,
		})
		assert.Equal(t, shared.CodeNotFound, domainCode(t, err))
	})

	t.Run("reaches archived wallets", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)

		posted, err := f.posting.Post(context.Background(), f.expenseRequest(50, wallet.ID))
		require.NoError(t, err)
		wallet.Archive()

		_, err = f.reverse(posted.ID)
		require.NoError(t, err)
		assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(500)))
	})

	t.Run("record only undo deletes the row outright", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)

		req := f.request(ledger.KindExpense, 50, wallet.ID)
		req.RecordOnly = true
		posted, err := f.posting.Post(context.Background(), req)
		require.NoError(t, err)

		reversal, err := f.reverse(posted.ID)
		require.NoError(t, err)
		assert.Nil(t, reversal)
		assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(500)))
		assert.NotContains(t, f.store.transactions, posted.ID)
		assert.Empty(t, f.store.transactions)
	})
}

func TestReversalServiceRoundTrips(t *testing.T) {
	t.Run("transfer", func(t *testing.T) {
		f := newLedgerFixture(t)
		source := f.wallet("BPI Checking", ledger.WalletKindBank, 1000)
		target := f.wallet("GCash", ledger.WalletKindEWallet, 50)

		req := f.request(ledger.KindTransfer, 300, source.ID)
		req.TargetWalletAccountID = &target.ID
		posted, err := f.posting.Post(context.Background(), req)
		require.NoError(t, err)

		_, err = f.reverse(posted.ID)
		require.NoError(t, err)
		assert.True(t, source.CurrentBalance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, target.CurrentBalance.Equal(decimal.NewFromInt(50)))
	})

	t.Run("allocation with overflow", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("BPI Checking", ledger.WalletKindBank, 2000)
		envelope := f.envelope("Groceries", 50)
		max := decimal.NewFromInt(500)
		require.NoError(t, envelope.SetMaxAllocation(&max))
		overflow := f.envelope("Needs/Wants", 0)
		overflow.MarkOverflowTarget(true)

		req := f.request(ledger.KindBudgetAllocation, 900, wallet.ID)
		req.BudgetEnvelopeID = &envelope.ID
		posted, err := f.posting.Post(context.Background(), req)
		require.NoError(t, err)

		_, err = f.reverse(posted.ID)
		require.NoError(t, err)
		assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(2000)))
		assert.True(t, envelope.Available.Equal(decimal.NewFromInt(50)))
		assert.True(t, overflow.Available.Equal(decimal.Zero))
	})

	t.Run("credit card payment", func(t *testing.T) {
		f := newLedgerFixture(t)
		payer := f.wallet("BPI Checking", ledger.WalletKindBank, 1000)
		card, credit := f.creditCard("BPI Gold", 400)
		reserve := f.reserve(card, 400)

		req := f.request(ledger.KindCreditCardPayment, 250, payer.ID)
		req.TargetWalletAccountID = &card.ID
		posted, err := f.posting.Post(context.Background(), req)
		require.NoError(t, err)

		_, err = f.reverse(posted.ID)
		require.NoError(t, err)
		assert.True(t, payer.CurrentBalance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, card.CurrentBalance.Equal(decimal.NewFromInt(400)))
		assert.True(t, credit.OutstandingDebt.Equal(decimal.NewFromInt(400)))
		assert.True(t, reserve.Available.Equal(decimal.NewFromInt(400)))
	})

	t.Run("loan borrow reactivates nothing", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("BPI Checking", ledger.WalletKindBank, 100)
		loan := f.loan("Car Loan")

		req := f.request(ledger.KindLoanBorrow, 5000, wallet.ID)
		req.LoanRecordID = &loan.ID
		posted, err := f.posting.Post(context.Background(), req)
		require.NoError(t, err)

		_, err = f.reverse(posted.ID)
		require.NoError(t, err)
		assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, ledger.LoanStatusInactive, loan.Status)
		assert.True(t, loan.TotalBorrowed.Equal(decimal.Zero))
	})
}

func TestReversalServiceFullFlow(t *testing.T) {
	f := newLedgerFixture(t)
	wallet := f.wallet("BPI Checking", ledger.WalletKindBank, 1000)
	envelope := f.envelope("Groceries", 500)
	stream, err := ledger.NewIncomeStream(f.userID, f.entityID, "Salary")
	require.NoError(t, err)
	f.store.streams[stream.ID] = stream

	income := f.request(ledger.KindIncome, 200, wallet.ID)
	income.BudgetEnvelopeID = &envelope.ID
	income.IncomeStreamID = &stream.ID
	postedIncome, err := f.posting.Post(context.Background(), income)
	require.NoError(t, err)
	assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(1200)))

	expense := f.request(ledger.KindExpense, 50, wallet.ID)
	expense.BudgetEnvelopeID = &envelope.ID
	_, err = f.posting.Post(context.Background(), expense)
	require.NoError(t, err)
	assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(1150)))

	_, err = f.reverse(postedIncome.ID)
	require.NoError(t, err)
	assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(950)))

	live := 0
	for _, tx := range f.store.transactions {
		if !tx.IsVoided && !tx.IsReversal {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestReversalServiceUpdate(t *testing.T) {
	t.Run("replaces the original", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)

		posted, err := f.posting.Post(context.Background(), f.expenseRequest(50, wallet.ID))
		require.NoError(t, err)

		replacement, err := f.reversal.Update(context.Background(), &UpdateTransactionRequest{
			TransactionID: posted.ID,
			Replacement:   f.expenseRequest(75, wallet.ID),
		})
		require.NoError(t, err)
		assert.True(t, replacement.Amount.Equal(decimal.NewFromInt(75)))
		assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(425)))
		assert.True(t, f.store.transactions[posted.ID].IsVoided)
		assert.False(t, f.store.transactions[replacement.ID].IsVoided)
	})

	t.Run("requires a replacement", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.reversal.Update(context.Background(), &UpdateTransactionRequest{TransactionID: uuid.New()})
		assert.Equal(t, shared.CodeInvalidInput, domainCode(t, err))
	})

	t.Run("compensates the replacement when the original cannot be reversed", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)

		posted, err := f.posting.Post(context.Background(), f.expenseRequest(50, wallet.ID))
		require.NoError(t, err)
		_, err = f.reverse(posted.ID)
		require.NoError(t, err)

		_, err = f.reversal.Update(context.Background(), &UpdateTransactionRequest{
			TransactionID: posted.ID,
			Replacement:   f.expenseRequest(75, wallet.ID),
		})
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
		assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(500)))

		for _, tx := range f.store.transactions {
			if tx.Amount.Equal(decimal.NewFromInt(75)) && !tx.IsReversal {
				assert.True(t, tx.IsVoided)
			}
		}
	})

	t.Run("reports when the compensation itself fails", func(t *testing.T) {
		f := newLedgerFixture(t)
		wallet := f.wallet("Cash", ledger.WalletKindCash, 500)

		posted, err := f.posting.Post(context.Background(), f.expenseRequest(50, wallet.ID))
		require.NoError(t, err)

		f.store.txSaveHook = func(tx *ledger.FinanceTransaction) error {
			if tx.IsVoided {
				return assert.AnError
			}
			return nil
		}

		_, err = f.reversal.Update(context.Background(), &UpdateTransactionRequest{
			TransactionID: posted.ID,
			Replacement:   f.expenseRequest(75, wallet.ID),
		})
		assert.Equal(t, shared.CodeUpdateRollbackFailed, domainCode(t, err))
	})
}
