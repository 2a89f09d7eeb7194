package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// memStore is an in-memory TransactionalRepositories implementation.
// Aggregates are stored by pointer, so effects applied by the services
// are visible to assertions without reloading.
type memStore struct {
	entities       map[uuid.UUID]*ledger.Entity
	wallets        map[uuid.UUID]*ledger.WalletAccount
	envelopes      map[uuid.UUID]*ledger.BudgetEnvelope
	creditAccounts map[uuid.UUID]*ledger.CreditAccount
	loans          map[uuid.UUID]*ledger.LoanRecord
	streams        map[uuid.UUID]*ledger.IncomeStream
	transactions   map[uuid.UUID]*ledger.FinanceTransaction
	txOrder        []uuid.UUID

	// txSaveHook, when set, intercepts transaction saves to inject failures
	txSaveHook func(tx *ledger.FinanceTransaction) error
}

func newMemStore() *memStore {
	return &memStore{
		entities:       make(map[uuid.UUID]*ledger.Entity),
		wallets:        make(map[uuid.UUID]*ledger.WalletAccount),
		envelopes:      make(map[uuid.UUID]*ledger.BudgetEnvelope),
		creditAccounts: make(map[uuid.UUID]*ledger.CreditAccount),
		loans:          make(map[uuid.UUID]*ledger.LoanRecord),
		streams:        make(map[uuid.UUID]*ledger.IncomeStream),
		transactions:   make(map[uuid.UUID]*ledger.FinanceTransaction),
	}
}

func newMemScope() (*memStore, *NoOpTransactionScope) {
	store := newMemStore()
	return store, &NoOpTransactionScope{Repos: store}
}

func (s *memStore) Entities() ledger.EntityRepository              { return &memEntityRepo{s} }
func (s *memStore) Wallets() ledger.WalletAccountRepository        { return &memWalletRepo{s} }
func (s *memStore) Envelopes() ledger.BudgetEnvelopeRepository     { return &memEnvelopeRepo{s} }
func (s *memStore) CreditAccounts() ledger.CreditAccountRepository { return &memCreditRepo{s} }
func (s *memStore) Loans() ledger.LoanRecordRepository             { return &memLoanRepo{s} }
func (s *memStore) IncomeStreams() ledger.IncomeStreamRepository   { return &memStreamRepo{s} }
func (s *memStore) Transactions() ledger.FinanceTransactionRepository {
	return &memTransactionRepo{s}
}

type memEntityRepo struct{ s *memStore }

func (r *memEntityRepo) Save(_ context.Context, entity *ledger.Entity) error {
	r.s.entities[entity.ID] = entity
	return nil
}

func (r *memEntityRepo) SaveWithLock(ctx context.Context, entity *ledger.Entity) error {
	return r.Save(ctx, entity)
}

func (r *memEntityRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*ledger.Entity, error) {
	e, ok := r.s.entities[id]
	if !ok || e.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *memEntityRepo) FindByUser(_ context.Context, userID uuid.UUID, includeArchived bool) ([]*ledger.Entity, error) {
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

func (r *memEntityRepo) CountActiveByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, e := range r.s.entities {
		if e.UserID == userID && !e.IsArchived {
			count++
		}
	}
	return count, nil
}

type memWalletRepo struct{ s *memStore }

func (r *memWalletRepo) Save(_ context.Context, wallet *ledger.WalletAccount) error {
	r.s.wallets[wallet.ID] = wallet
	return nil
}

func (r *memWalletRepo) SaveWithLock(ctx context.Context, wallet *ledger.WalletAccount) error {
	return r.Save(ctx, wallet)
}

func (r *memWalletRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.WalletAccount, error) {
	w, ok := r.s.wallets[id]
	if !ok || !w.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return w, nil
}

func (r *memWalletRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.WalletAccount], error) {
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

func (r *memWalletRepo) FindByCreditAccount(_ context.Context, userID, entityID, creditAccountID uuid.UUID) (*ledger.WalletAccount, error) {
	for _, w := range r.s.wallets {
		if w.OwnedBy(userID, entityID) && w.LinkedCreditAccountID != nil && *w.LinkedCreditAccountID == creditAccountID {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

type memEnvelopeRepo struct{ s *memStore }

func (r *memEnvelopeRepo) Save(_ context.Context, envelope *ledger.BudgetEnvelope) error {
	r.s.envelopes[envelope.ID] = envelope
	return nil
}

func (r *memEnvelopeRepo) SaveWithLock(ctx context.Context, envelope *ledger.BudgetEnvelope) error {
	return r.Save(ctx, envelope)
}

func (r *memEnvelopeRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.BudgetEnvelope, error) {
	e, ok := r.s.envelopes[id]
	if !ok || !e.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *memEnvelopeRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.BudgetEnvelope], error) {
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

func (r *memEnvelopeRepo) FindSystemByTypeAndWallet(_ context.Context, userID, entityID uuid.UUID, systemType ledger.SystemEnvelopeType, walletID *uuid.UUID) (*ledger.BudgetEnvelope, error) {
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

func (r *memEnvelopeRepo) FindByName(_ context.Context, userID, entityID uuid.UUID, name string) (*ledger.BudgetEnvelope, error) {
	for _, e := range r.s.envelopes {
		if e.OwnedBy(userID, entityID) && e.Name == name {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memEnvelopeRepo) FindOverflowTarget(_ context.Context, userID, entityID uuid.UUID) (*ledger.BudgetEnvelope, error) {
	for _, e := range r.s.envelopes {
		if e.OwnedBy(userID, entityID) && e.IsOverflowTarget && !e.IsArchived {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

type memCreditRepo struct{ s *memStore }

func (r *memCreditRepo) Save(_ context.Context, account *ledger.CreditAccount) error {
	r.s.creditAccounts[account.ID] = account
	return nil
}

func (r *memCreditRepo) SaveWithLock(ctx context.Context, account *ledger.CreditAccount) error {
	return r.Save(ctx, account)
}

func (r *memCreditRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.CreditAccount, error) {
	c, ok := r.s.creditAccounts[id]
	if !ok || !c.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *memCreditRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.CreditAccount], error) {
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

type memLoanRepo struct{ s *memStore }

func (r *memLoanRepo) Save(_ context.Context, loan *ledger.LoanRecord) error {
	r.s.loans[loan.ID] = loan
	return nil
}

func (r *memLoanRepo) SaveWithLock(ctx context.Context, loan *ledger.LoanRecord) error {
	return r.Save(ctx, loan)
}

func (r *memLoanRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.LoanRecord, error) {
	l, ok := r.s.loans[id]
	if !ok || !l.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r *memLoanRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.LoanRecord], error) {
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

type memStreamRepo struct{ s *memStore }

func (r *memStreamRepo) Save(_ context.Context, stream *ledger.IncomeStream) error {
	r.s.streams[stream.ID] = stream
	return nil
}

func (r *memStreamRepo) SaveWithLock(ctx context.Context, stream *ledger.IncomeStream) error {
	return r.Save(ctx, stream)
}

func (r *memStreamRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.IncomeStream, error) {
	st, ok := r.s.streams[id]
	if !ok || !st.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return st, nil
}

func (r *memStreamRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.IncomeStream], error) {
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

type memTransactionRepo struct{ s *memStore }

func (r *memTransactionRepo) Save(_ context.Context, tx *ledger.FinanceTransaction) error {
	if r.s.txSaveHook != nil {
		if err := r.s.txSaveHook(tx); err != nil {
			return err
		}
	}
	if _, exists := r.s.transactions[tx.ID]; !exists {
		r.s.txOrder = append(r.s.txOrder, tx.ID)
	}
	r.s.transactions[tx.ID] = tx
	return nil
}

func (r *memTransactionRepo) Delete(_ context.Context, userID, entityID, id uuid.UUID) error {
	tx, ok := r.s.transactions[id]
	if !ok || !tx.OwnedBy(userID, entityID) {
		return shared.ErrNotFound
	}
	delete(r.s.transactions, id)
	for i, txID := range r.s.txOrder {
		if txID == id {
			r.s.txOrder = append(r.s.txOrder[:i], r.s.txOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memTransactionRepo) FindByIDForOwner(_ context.Context, userID, entityID, id uuid.UUID) (*ledger.FinanceTransaction, error) {
	tx, ok := r.s.transactions[id]
	if !ok || !tx.OwnedBy(userID, entityID) {
		return nil, shared.ErrNotFound
	}
	return tx, nil
}

func (r *memTransactionRepo) FindByOwner(_ context.Context, userID, entityID uuid.UUID, filter ledger.TransactionFilter) (*shared.Paginated[ledger.FinanceTransaction], error) {
	var items []ledger.FinanceTransaction
	for _, id := range r.s.txOrder {
		tx := r.s.transactions[id]
		if !tx.OwnedBy(userID, entityID) {
			continue
		}
		if !matchesFilter(tx, filter) {
			continue
		}
		items = append(items, *tx)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PostedAt.After(items[j].PostedAt)
	})

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	total := int64(len(items))
	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	result := shared.NewPaginated(items[start:end], total, page, pageSize)
	return &result, nil
}

func matchesFilter(tx *ledger.FinanceTransaction, filter ledger.TransactionFilter) bool {
	if filter.Kind != nil && tx.Kind != *filter.Kind {
		return false
	}
	if filter.WalletAccountID != nil {
		if tx.WalletAccountID != *filter.WalletAccountID &&
			(tx.TargetWalletAccountID == nil || *tx.TargetWalletAccountID != *filter.WalletAccountID) {
			return false
		}
	}
	if filter.BudgetEnvelopeID != nil {
		if (tx.BudgetEnvelopeID == nil || *tx.BudgetEnvelopeID != *filter.BudgetEnvelopeID) &&
			(tx.OverflowEnvelopeID == nil || *tx.OverflowEnvelopeID != *filter.BudgetEnvelopeID) {
			return false
		}
	}
	if filter.CreditAccountID != nil && (tx.CreditAccountID == nil || *tx.CreditAccountID != *filter.CreditAccountID) {
		return false
	}
	if filter.LoanRecordID != nil && (tx.LoanRecordID == nil || *tx.LoanRecordID != *filter.LoanRecordID) {
		return false
	}
	if filter.IncomeStreamID != nil && (tx.IncomeStreamID == nil || *tx.IncomeStreamID != *filter.IncomeStreamID) {
		return false
	}
	if filter.PostedFrom != nil && tx.PostedAt.Before(*filter.PostedFrom) {
		return false
	}
	if filter.PostedTo != nil && tx.PostedAt.After(*filter.PostedTo) {
		return false
	}
	if !filter.IncludeVoided && tx.IsVoided {
		return false
	}
	if filter.BudgetOnly && !tx.CountsTowardBudget {
		return false
	}
	return true
}

func (r *memTransactionRepo) SumByEnvelope(_ context.Context, userID, entityID, envelopeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range r.s.transactions {
		if !tx.OwnedBy(userID, entityID) || tx.IsVoided {
			continue
		}
		if tx.BudgetEnvelopeID == nil || *tx.BudgetEnvelopeID != envelopeID {
			continue
		}
		if from != nil && tx.PostedAt.Before(*from) {
			continue
		}
		if to != nil && tx.PostedAt.After(*to) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}

func (r *memTransactionRepo) SumByIncomeStream(_ context.Context, userID, entityID, streamID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range r.s.transactions {
		if !tx.OwnedBy(userID, entityID) || tx.IsVoided || tx.Kind != ledger.KindIncome {
			continue
		}
		if tx.IncomeStreamID == nil || *tx.IncomeStreamID != streamID {
			continue
		}
		if from != nil && tx.PostedAt.Before(*from) {
			continue
		}
		if to != nil && tx.PostedAt.After(*to) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}

func (r *memTransactionRepo) CountByWallet(_ context.Context, userID, entityID, walletID uuid.UUID) (int64, error) {
	var count int64
	for _, tx := range r.s.transactions {
		if !tx.OwnedBy(userID, entityID) || tx.IsVoided {
			continue
		}
		if tx.WalletAccountID == walletID || (tx.TargetWalletAccountID != nil && *tx.TargetWalletAccountID == walletID) {
			count++
		}
	}
	return count, nil
}
