package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
	"github.com/pesobook/backend/internal/infrastructure/persistence/models"
)

// GormFinanceTransactionRepository implements FinanceTransactionRepository using GORM
type GormFinanceTransactionRepository struct {
	db *gorm.DB
}

// NewGormFinanceTransactionRepository creates a new GormFinanceTransactionRepository
func NewGormFinanceTransactionRepository(db *gorm.DB) *GormFinanceTransactionRepository {
	return &GormFinanceTransactionRepository{db: db}
}

// Save creates or updates a finance transaction
func (r *GormFinanceTransactionRepository) Save(ctx context.Context, tx *ledger.FinanceTransaction) error {
	model := models.FinanceTransactionModelFromDomain(tx)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a transaction row scoped to (user, entity)
func (r *GormFinanceTransactionRepository) Delete(ctx context.Context, userID, entityID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND entity_id = ? AND id = ?", userID, entityID, id).
		Delete(&models.FinanceTransactionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByIDForOwner finds a transaction by ID scoped to (user, entity)
func (r *GormFinanceTransactionRepository) FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.FinanceTransaction, error) {
	var model models.FinanceTransactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND entity_id = ? AND id = ?", userID, entityID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner finds transactions for (user, entity) with filtering and paging
func (r *GormFinanceTransactionRepository) FindByOwner(ctx context.Context, userID, entityID uuid.UUID, filter ledger.TransactionFilter) (*shared.Paginated[ledger.FinanceTransaction], error) {
	query := r.db.WithContext(ctx).Model(&models.FinanceTransactionModel{}).
		Where("user_id = ? AND entity_id = ?", userID, entityID)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, TransactionSortFields, "posted_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	page, pageSize := normalizePaging(filter.Page, filter.PageSize)
	query = query.Limit(pageSize).Offset((page - 1) * pageSize)

	var txModels []models.FinanceTransactionModel
	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	transactions := make([]ledger.FinanceTransaction, len(txModels))
	for i := range txModels {
		transactions[i] = *txModels[i].ToDomain()
	}
	result := shared.NewPaginated(transactions, total, page, pageSize)
	return &result, nil
}

// applyFilter applies filter conditions to the query
func (r *GormFinanceTransactionRepository) applyFilter(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	if filter.Kind != nil {
		query = query.Where("kind = ?", filter.Kind.String())
	}
	if filter.WalletAccountID != nil {
		query = query.Where("(wallet_account_id = ? OR target_wallet_account_id = ?)", *filter.WalletAccountID, *filter.WalletAccountID)
	}
	if filter.BudgetEnvelopeID != nil {
		query = query.Where("(budget_envelope_id = ? OR overflow_envelope_id = ?)", *filter.BudgetEnvelopeID, *filter.BudgetEnvelopeID)
	}
	if filter.CreditAccountID != nil {
		query = query.Where("credit_account_id = ?", *filter.CreditAccountID)
	}
	if filter.LoanRecordID != nil {
		query = query.Where("loan_record_id = ?", *filter.LoanRecordID)
	}
	if filter.IncomeStreamID != nil {
		query = query.Where("income_stream_id = ?", *filter.IncomeStreamID)
	}
	if filter.PostedFrom != nil {
		query = query.Where("posted_at >= ?", *filter.PostedFrom)
	}
	if filter.PostedTo != nil {
		query = query.Where("posted_at <= ?", *filter.PostedTo)
	}
	if !filter.IncludeVoided {
		query = query.Where("is_voided = ?", false)
	}
	if filter.BudgetOnly {
		query = query.Where("counts_toward_budget = ?", true)
	}
	return query
}

// SumByEnvelope returns the net posted amount against an envelope over a
// period, voided rows excluded
func (r *GormFinanceTransactionRepository) SumByEnvelope(ctx context.Context, userID, entityID, envelopeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.FinanceTransactionModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("user_id = ? AND entity_id = ? AND budget_envelope_id = ? AND is_voided = ?", userID, entityID, envelopeID, false)
	if from != nil {
		query = query.Where("posted_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("posted_at <= ?", *to)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByIncomeStream returns the total income tagged with a stream over a
// period, voided rows excluded
func (r *GormFinanceTransactionRepository) SumByIncomeStream(ctx context.Context, userID, entityID, streamID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.FinanceTransactionModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("user_id = ? AND entity_id = ? AND income_stream_id = ? AND kind = ? AND is_voided = ?",
			userID, entityID, streamID, ledger.KindIncome.String(), false)
	if from != nil {
		query = query.Where("posted_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("posted_at <= ?", *to)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountByWallet counts non-voided transactions touching a wallet
func (r *GormFinanceTransactionRepository) CountByWallet(ctx context.Context, userID, entityID, walletID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FinanceTransactionModel{}).
		Where("user_id = ? AND entity_id = ? AND (wallet_account_id = ? OR target_wallet_account_id = ?) AND is_voided = ?",
			userID, entityID, walletID, walletID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
