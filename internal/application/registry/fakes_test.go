package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/pesobook/backend/internal/application/ledger"
	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// regStore is an in-memory repository set for registry service tests.
// Aggregates are stored by pointer, so service mutations are visible to
// assertions without reloading.
type regStore struct {
	entities       map[uuid.UUID]*ledger.Entity
	wallets        map[uuid.UUID]*ledger.WalletAccount
	envelopes      map[uuid.UUID]*ledger.BudgetEnvelope
	creditAccounts map[uuid.UUID]*ledger.CreditAccount
	loans          map[uuid.UUID]*ledger.LoanRecord
	streams        map[uuid.UUID]*ledger.IncomeStream
	transactions   map[uuid.UUID]*ledger.FinanceTransaction
}

func newRegStore() *regStore {
	return &regStore{
		entities:       make(map[uuid.UUID]*ledger.Entity),
		wallets:        make(map[uuid.UUID]*ledger.WalletAccount),
		envelopes:      make(map[uuid.UUID]*ledger.BudgetEnvelope),
		creditAccounts: make(map[uuid.UUID]*ledger.CreditAccount),
		loans:          make(map[uuid.UUID]*ledger.LoanRecord),
		streams:        make(map[uuid.UUID]*ledger.IncomeStream),
		transactions:   make(map[uuid.UUID]*ledger.FinanceTransaction),
	}
}

func (s *regStore) scope() *ledgerapp.NoOpTransactionScope {
	return &ledgerapp.NoOpTransactionScope{Repos: s}
}

func (s *regStore) Entities() ledger.EntityRepository              { return &regEntityRepo{s} }
func (s *regStore) Wallets() ledger.WalletAccountRepository        { return &regWalletRepo{s} }
func (s *regStore) Envelopes() ledger.BudgetEnvelopeRepository     { return &regEnvelopeRepo{s} }
func (s *regStore) CreditAccounts() ledger.CreditAccountRepository { return &regCreditRepo{s} }
func (s *regStore) Loans() ledger.LoanRecordRepository             { return &regLoanRepo{s} }
func (s *regStore) IncomeStreams() ledger.IncomeStreamRepository   { return &regStreamRepo{s} }
func (s *regStore) Transactions() ledger.FinanceTransactionRepository {
	return &regTransactionRepo{s}
}

type regEntityRepo struct{ s *regStore }

func (r *regEntityRepo) Save(_ context.Context, entity *ledger.Entity) error {
	r.s.entities[entity.ID] = entity
	return nil
}

func (r *regEntityRepo) SaveWithLock(ctx context.Context, entity *ledger.Entity) error {
	return r.Save(ctx, entity)
}

func (r *regEntityRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*ledger.Entity, error) {
	e, ok := r.s.entities[id]
	if !ok || e.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *regEntityRepo) FindByUser(_ context.Context, userID uuid.UUID, includeArchived bool) ([]*ledger.Entity, error) {
	var out []*ledger.Entity
	for _, e := range r.s.entities {
		if e.UserID != userID {
			continue
		}
		if e.IsArchived && !includeArchived {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *regEntityRepo) CountActiveByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range r.s.entities {
		if e.UserID == userID && !e.IsArchived {
			n++
		}
	}
	return n, nil
}

type regWalletRepo struct{ s *regStore }

func (r *regWalletRepo) Save(_ context.Context, wallet *ledger.WalletAccount) error {
	r.s.wallets[wallet.ID] = wallet
	return nil
}

func (r *regWalletRepo) SaveWithLock(ctx context.Context, wallet *ledger.WalletAccount) error {
	return r.Save(ctx, wallet)
}

func (r *regWalletRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.WalletAccount, error) {
	w, ok := r.s.wallets[id]
	if !ok || !w.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return w, nil
}

func (r *regWalletRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.WalletAccount], error) {
	var items []ledger.WalletAccount
	for _, w := range r.s.wallets {
		if !w.OwnedBy(userID, entityID) {
			continue
		}
		if w.IsArchived && !includeArchived {
			continue
		}
		items = append(items, *w)
	}
	result := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &result, nil
}

func (r *regWalletRepo) FindByCreditAccount(_ context.Context, userID, entityID, creditAccountID uuid.UUID) (*ledger.WalletAccount, error) {
	for _, w := range r.s.wallets {
		if w.OwnedBy(userID, entityID) && w.LinkedCreditAccountID != nil && *w.LinkedCreditAccountID == creditAccountID {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

type regEnvelopeRepo struct{ s *regStore }

func (r *regEnvelopeRepo) Save(_ context.Context, envelope *ledger.BudgetEnvelope) error {
	r.s.envelopes[envelope.ID] = envelope
	return nil
}

func (r *regEnvelopeRepo) SaveWithLock(ctx context.Context, envelope *ledger.BudgetEnvelope) error {
	return r.Save(ctx, envelope)
}

func (r *regEnvelopeRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.BudgetEnvelope, error) {
	e, ok := r.s.envelopes[id]
	if !ok || !e.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *regEnvelopeRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.BudgetEnvelope], error) {
	var items []ledger.BudgetEnvelope
	for _, e := range r.s.envelopes {
		if !e.OwnedBy(userID, entityID) {
			continue
		}
		if e.IsArchived && !includeArchived {
			continue
		}
		items = append(items, *e)
	}
	result := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &result, nil
}

func (r *regEnvelopeRepo) FindSystemByTypeAndWallet(_ context.Context, userID, entityID uuid.UUID, systemType ledger.SystemEnvelopeType, walletID *uuid.UUID) (*ledger.BudgetEnvelope, error) {
	for _, e := range r.s.envelopes {
		if !e.OwnedBy(userID, entityID) || !e.IsSystem || e.SystemType == nil || *e.SystemType != systemType {
			continue
		}
		if walletID == nil {
			if e.LinkedWalletAccountID == nil {
				return e, nil
			}
			continue
		}
		if e.LinkedWalletAccountID != nil && *e.LinkedWalletAccountID == *walletID {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *regEnvelopeRepo) FindByName(_ context.Context, userID, entityID uuid.UUID, name string) (*ledger.BudgetEnvelope, error) {
	for _, e := range r.s.envelopes {
		if e.OwnedBy(userID, entityID) && e.Name == name {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *regEnvelopeRepo) FindOverflowTarget(_ context.Context, userID, entityID uuid.UUID) (*ledger.BudgetEnvelope, error) {
	for _, e := range r.s.envelopes {
		if e.OwnedBy(userID, entityID) && e.IsOverflowTarget && !e.IsArchived {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

type regCreditRepo struct{ s *regStore }

func (r *regCreditRepo) Save(_ context.Context, account *ledger.CreditAccount) error {
	r.s.creditAccounts[account.ID] = account
	return nil
}

func (r *regCreditRepo) SaveWithLock(ctx context.Context, account *ledger.CreditAccount) error {
	return r.Save(ctx, account)
}

func (r *regCreditRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.CreditAccount, error) {
	c, ok := r.s.creditAccounts[id]
	if !ok || !c.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *regCreditRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.CreditAccount], error) {
	var items []ledger.CreditAccount
	for _, c := range r.s.creditAccounts {
		if !c.OwnedBy(userID, entityID) {
			continue
		}
		if c.IsArchived && !includeArchived {
			continue
		}
		items = append(items, *c)
	}
	result := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &result, nil
}

type regLoanRepo struct{ s *regStore }

func (r *regLoanRepo) Save(_ context.Context, loan *ledger.LoanRecord) error {
	r.s.loans[loan.ID] = loan
	return nil
}

func (r *regLoanRepo) SaveWithLock(ctx context.Context, loan *ledger.LoanRecord) error {
	return r.Save(ctx, loan)
}

func (r *regLoanRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.LoanRecord, error) {
	l, ok := r.s.loans[id]
	if !ok || !l.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r *regLoanRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.LoanRecord], error) {
	var items []ledger.LoanRecord
	for _, l := range r.s.loans {
		if !l.OwnedBy(userID, entityID) {
			continue
		}
		if l.IsArchived && !includeArchived {
			continue
		}
		items = append(items, *l)
	}
	result := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &result, nil
}

type regStreamRepo struct{ s *regStore }

func (r *regStreamRepo) Save(_ context.Context, stream *ledger.IncomeStream) error {
	r.s.streams[stream.ID] = stream
	return nil
}

func (r *regStreamRepo) SaveWithLock(ctx context.Context, stream *ledger.IncomeStream) error {
	return r.Save(ctx, stream)
}

func (r *regStreamRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.IncomeStream, error) {
	st, ok := r.s.streams[id]
	if !ok || !st.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return st, nil
}

func (r *regStreamRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.IncomeStream], error) {
	var items []ledger.IncomeStream
	for _, st := range r.s.streams {
		if !st.OwnedBy(userID, entityID) {
			continue
		}
		if st.IsArchived && !includeArchived {
			continue
		}
		items = append(items, *st)
	}
	result := shared.NewPaginated(items, int64(len(items)), 1, filter.PageSize)
	return &result, nil
}

type regTransactionRepo struct{ s *regStore }

func (r *regTransactionRepo) Save(_ context.Context, tx *ledger.FinanceTransaction) error {
	r.s.transactions[tx.ID] = tx
	return nil
}

func (r *regTransactionRepo) Delete(_ context.Context, userID, entityID, id uuid.UUID) error {
	tx, ok := r.s.transactions[id]
	if !ok || !tx.OwnedBy(userID, entityID) {
		return shared.ErrNotFound
	}
	delete(r.s.transactions, id)
	return nil
}

func (r *regTransactionRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.FinanceTransaction, error) {
	tx, ok := r.s.transactions[id]
	if !ok || !tx.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return tx, nil
}

func (r *regTransactionRepo) FindByOwner(_ context.Context, _, _ uuid.UUID, filter ledger.TransactionFilter) (*shared.Paginated[ledger.FinanceTransaction], error) {
	result := shared.NewPaginated([]ledger.FinanceTransaction{}, 0, 1, filter.PageSize)
	return &result, nil
}

func (r *regTransactionRepo) SumByEnvelope(_ context.Context, _, _, _ uuid.UUID, _, _ *time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *regTransactionRepo) SumByIncomeStream(_ context.Context, _, _, _ uuid.UUID, _, _ *time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *regTransactionRepo) CountByWallet(_ context.Context, _, _, _ uuid.UUID) (int64, error) {
	return 0, nil
}
