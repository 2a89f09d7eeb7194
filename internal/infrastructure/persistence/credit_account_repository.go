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

// GormCreditAccountRepository implements CreditAccountRepository using GORM
type GormCreditAccountRepository struct {
	db *gorm.DB
}

// NewGormCreditAccountRepository creates a new GormCreditAccountRepository
func NewGormCreditAccountRepository(db *gorm.DB) *GormCreditAccountRepository {
	return &GormCreditAccountRepository{db: db}
}

// Save creates or updates a credit account
func (r *GormCreditAccountRepository) Save(ctx context.Context, account *ledger.CreditAccount) error {
	model := models.CreditAccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the credit account with optimistic locking
func (r *GormCreditAccountRepository) SaveWithLock(ctx context.Context, account *ledger.CreditAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.CreditAccountModel
		if err := tx.Select("version").Where("id = ?", account.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				model := models.CreditAccountModelFromDomain(account)
				return tx.Create(model).Error
			}
			return err
		}

		expectedVersion := account.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.NewDomainError(shared.CodeVersionConflict, "Credit account has been modified by another process")
		}

		model := models.CreditAccountModelFromDomain(account)
		result := tx.Model(model).
			Where("id = ? AND version = ?", account.GetID(), expectedVersion).
			Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeVersionConflict, "Credit account has been modified by another process")
		}
		return nil
	})
}

// FindByIDForOwner finds a credit account by ID scoped to (user, entity)
func (r *GormCreditAccountRepository) FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.CreditAccount, error) {
	var model models.CreditAccountModel
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

// FindByOwner finds all credit accounts for (user, entity) with paging
func (r *GormCreditAccountRepository) FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.CreditAccount], error) {
	query := r.db.WithContext(ctx).Model(&models.CreditAccountModel{}).
		Where("user_id = ? AND entity_id = ?", userID, entityID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, CreditAccountSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	page, pageSize := normalizePaging(filter.Page, filter.PageSize)
	query = query.Limit(pageSize).Offset((page - 1) * pageSize)

	var accountModels []models.CreditAccountModel
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.CreditAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	result := shared.NewPaginated(accounts, total, page, pageSize)
	return &result, nil
}
