package persistence

import (
	"context"

	"gorm.io/gorm"

	appledger "github.com/pesobook/backend/internal/application/ledger"
	"github.com/pesobook/backend/internal/domain/ledger"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Entities returns the entity repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Entities() ledger.EntityRepository {
	return NewGormEntityRepository(r.tx)
}

// Wallets returns the wallet account repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Wallets() ledger.WalletAccountRepository {
	return NewGormWalletAccountRepository(r.tx)
}

// Envelopes returns the budget envelope repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Envelopes() ledger.BudgetEnvelopeRepository {
	return NewGormBudgetEnvelopeRepository(r.tx)
}

// CreditAccounts returns the credit account repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CreditAccounts() ledger.CreditAccountRepository {
	return NewGormCreditAccountRepository(r.tx)
}

// Loans returns the loan record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Loans() ledger.LoanRecordRepository {
	return NewGormLoanRecordRepository(r.tx)
}

// IncomeStreams returns the income stream repository scoped to the current transaction.
func (r *gormTransactionalRepositories) IncomeStreams() ledger.IncomeStreamRepository {
	return NewGormIncomeStreamRepository(r.tx)
}

// Transactions returns the finance transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Transactions() ledger.FinanceTransactionRepository {
	return NewGormFinanceTransactionRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
