package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/shared"
)

// EntityRepository persists ledger entities
type EntityRepository interface {
	Save(ctx context.Context, entity *Entity) error
	SaveWithLock(ctx context.Context, entity *Entity) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Entity, error)
	FindByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*Entity, error)
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// WalletAccountRepository persists wallet accounts. Finders are scoped to
// (user, entity); cross-entity lookups come back not found.
type WalletAccountRepository interface {
	Save(ctx context.Context, wallet *WalletAccount) error
	SaveWithLock(ctx context.Context, wallet *WalletAccount) error
	FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*WalletAccount, error)
	FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[WalletAccount], error)
	FindByCreditAccount(ctx context.Context, userID, entityID, creditAccountID uuid.UUID) (*WalletAccount, error)
}

// BudgetEnvelopeRepository persists budget envelopes, including the
// engine-owned system envelopes
type BudgetEnvelopeRepository interface {
	Save(ctx context.Context, envelope *BudgetEnvelope) error
	SaveWithLock(ctx context.Context, envelope *BudgetEnvelope) error
	FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*BudgetEnvelope, error)
	FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[BudgetEnvelope], error)
	FindSystemByTypeAndWallet(ctx context.Context, userID, entityID uuid.UUID, systemType SystemEnvelopeType, walletID *uuid.UUID) (*BudgetEnvelope, error)
	FindByName(ctx context.Context, userID, entityID uuid.UUID, name string) (*BudgetEnvelope, error)
	FindOverflowTarget(ctx context.Context, userID, entityID uuid.UUID) (*BudgetEnvelope, error)
}

// CreditAccountRepository persists credit accounts
type CreditAccountRepository interface {
	Save(ctx context.Context, account *CreditAccount) error
	SaveWithLock(ctx context.Context, account *CreditAccount) error
	FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*CreditAccount, error)
	FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[CreditAccount], error)
}

// LoanRecordRepository persists loan records
type LoanRecordRepository interface {
	Save(ctx context.Context, loan *LoanRecord) error
	SaveWithLock(ctx context.Context, loan *LoanRecord) error
	FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*LoanRecord, error)
	FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[LoanRecord], error)
}

// IncomeStreamRepository persists income streams
type IncomeStreamRepository interface {
	Save(ctx context.Context, stream *IncomeStream) error
	SaveWithLock(ctx context.Context, stream *IncomeStream) error
	FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*IncomeStream, error)
	FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[IncomeStream], error)
}

// TransactionFilter narrows transaction history queries
type TransactionFilter struct {
	Page             int
	PageSize         int
	Kind             *TransactionKind
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

// FinanceTransactionRepository persists the posting audit trail
type FinanceTransactionRepository interface {
	Save(ctx context.Context, tx *FinanceTransaction) error
	Delete(ctx context.Context, userID, entityID, id uuid.UUID) error
	FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*FinanceTransaction, error)
	FindByOwner(ctx context.Context, userID, entityID uuid.UUID, filter TransactionFilter) (*shared.Paginated[FinanceTransaction], error)
	SumByEnvelope(ctx context.Context, userID, entityID, envelopeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error)
	SumByIncomeStream(ctx context.Context, userID, entityID, streamID uuid.UUID, from, to *time.Time) (decimal.Decimal, error)
	CountByWallet(ctx context.Context, userID, entityID, walletID uuid.UUID) (int64, error)
}
