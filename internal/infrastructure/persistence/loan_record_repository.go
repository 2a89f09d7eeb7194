package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
	"github.com/pesobook/backend/internal/infrastructure/persistence/models"
)

// GormLoanRecordRepository implements LoanRecordRepository using GORM
type GormLoanRecordRepository struct {
	db *gorm.DB
}

// NewGormLoanRecordRepository creates a new GormLoanRecordRepository
func NewGormLoanRecordRepository(db *gorm.DB) *GormLoanRecordRepository {
	return &GormLoanRecordRepository{db: db}
}

// Save creates or updates a loan record
func (r *GormLoanRecordRepository) Save(ctx context.Context, loan *ledger.LoanRecord) error {
	model := models.LoanRecordModelFromDomain(loan)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the loan record with optimistic locking
func (r *GormLoanRecordRepository) SaveWithLock(ctx context.Context, loan *ledger.LoanRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.LoanRecordModel
		if err := tx.Select("version").Where("id = ?", loan.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				model := models.LoanRecordModelFromDomain(loan)
				return tx.Create(model).Error
			}
			return err
		}

		expectedVersion := loan.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.NewDomainError(shared.CodeVersionConflict, "Loan record has been modified by another process")
		}

		model := models.LoanRecordModelFromDomain(loan)
		result := tx.Model(model).
			Where("id = ? AND version = ?", loan.GetID(), expectedVersion).
			Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeVersionConflict, "Loan record has been modified by another process")
		}
		return nil
	})
}

// FindByIDForOwner finds a loan record by ID scoped to (user, entity)
func (r *GormLoanRecordRepository) FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.LoanRecord, error) {
	var model models.LoanRecordModel
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

// FindByOwner finds all loan records for (user, entity) with paging
func (r *GormLoanRecordRepository) FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.LoanRecord], error) {
	query := r.db.WithContext(ctx).Model(&models.LoanRecordModel{}).
		Where("user_id = ? AND entity_id = ?", userID, entityID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if filter.Search != "" {
		query = query.Where("(name ILIKE ? OR counterparty ILIKE ?)", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, LoanSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	page, pageSize := normalizePaging(filter.Page, filter.PageSize)
	query = query.Limit(pageSize).Offset((page - 1) * pageSize)

	var loanModels []models.LoanRecordModel
	if err := query.Find(&loanModels).Error; err != nil {
		return nil, err
	}
	loans := make([]ledger.LoanRecord, len(loanModels))
	for i := range loanModels {
		loans[i] = *loanModels[i].ToDomain()
	}
	result := shared.NewPaginated(loans, total, page, pageSize)
	return &result, nil
}
