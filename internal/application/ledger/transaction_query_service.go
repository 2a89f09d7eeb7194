package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// TransactionQueryService serves read-only views of the posting history
type TransactionQueryService struct {
	transactions ledger.FinanceTransactionRepository
}

// NewTransactionQueryService creates a transaction query service
func NewTransactionQueryService(transactions ledger.FinanceTransactionRepository) *TransactionQueryService {
	return &TransactionQueryService{transactions: transactions}
}

// GetTransaction returns one transaction by ID
func (s *TransactionQueryService) GetTransaction(ctx context.Context, userID, entityID, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactions.FindByIDForOwner(ctx, userID, entityID, id)
	if err != nil {
		return nil, err
	}
	return ToTransactionResponse(tx), nil
}

// ListTransactions returns a filtered, paginated history slice
func (s *TransactionQueryService) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*shared.Paginated[TransactionResponse], error) {
	filter := ledger.TransactionFilter{
		Page:             req.Page,
		PageSize:         req.PageSize,
		Kind:             req.Kind,
		WalletAccountID:  req.WalletAccountID,
		BudgetEnvelopeID: req.BudgetEnvelopeID,
		CreditAccountID:  req.CreditAccountID,
		LoanRecordID:     req.LoanRecordID,
		IncomeStreamID:   req.IncomeStreamID,
		PostedFrom:       req.PostedFrom,
		PostedTo:         req.PostedTo,
		IncludeVoided:    req.IncludeVoided,
		BudgetOnly:       req.BudgetOnly,
		OrderBy:          req.OrderBy,
		OrderDir:         req.OrderDir,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}

	page, err := s.transactions.FindByOwner(ctx, req.UserID, req.EntityID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]TransactionResponse, len(page.Items))
	for i := range page.Items {
		items[i] = *ToTransactionResponse(&page.Items[i])
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// EnvelopeActivity returns the net posted amount of an envelope over a
// period, voided rows excluded
func (s *TransactionQueryService) EnvelopeActivity(ctx context.Context, userID, entityID, envelopeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	return s.transactions.SumByEnvelope(ctx, userID, entityID, envelopeID, from, to)
}

// IncomeStreamTotal returns the total income tagged with a stream over a
// period, voided rows excluded
func (s *TransactionQueryService) IncomeStreamTotal(ctx context.Context, userID, entityID, streamID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	return s.transactions.SumByIncomeStream(ctx, userID, entityID, streamID, from, to)
}
