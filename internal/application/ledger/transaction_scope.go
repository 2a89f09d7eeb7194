package ledger

import (
	"context"

	"github.com/pesobook/backend/internal/domain/ledger"
)

// TransactionalRepositories bundles the repositories a posting needs,
// all bound to the same database transaction
type TransactionalRepositories interface {
	Entities() ledger.EntityRepository
	Wallets() ledger.WalletAccountRepository
	Envelopes() ledger.BudgetEnvelopeRepository
	CreditAccounts() ledger.CreditAccountRepository
	Loans() ledger.LoanRecordRepository
	IncomeStreams() ledger.IncomeStreamRepository
	Transactions() ledger.FinanceTransactionRepository
}

// TransactionScope executes a function within a database transaction.
// Every balance mutation of a posting happens inside one scope so the
// ledger either moves completely or not at all.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope executes without transaction semantics, for tests
type NoOpTransactionScope struct {
	Repos TransactionalRepositories
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}
