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

// GormWalletAccountRepository implements WalletAccountRepository using GORM
type GormWalletAccountRepository struct {
	db *gorm.DB
}

// NewGormWalletAccountRepository creates a new GormWalletAccountRepository
func NewGormWalletAccountRepository(db *gorm.DB) *GormWalletAccountRepository {
	return &GormWalletAccountRepository{db: db}
}

// Save creates or updates a wallet account
func (r *GormWalletAccountRepository) Save(ctx context.Context, wallet *ledger.WalletAccount) error {
	model := models.WalletAccountModelFromDomain(wallet)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the wallet account with optimistic locking
func (r *GormWalletAccountRepository) SaveWithLock(ctx context.Context, wallet *ledger.WalletAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.WalletAccountModel
		if err := tx.Select("version").Where("id = ?", wallet.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				model := models.WalletAccountModelFromDomain(wallet)
				return tx.Create(model).Error
			}
			return err
		}

		expectedVersion := wallet.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.NewDomainError(shared.CodeVersionConflict, "Wallet account has been modified by another process")
		}

		model := models.WalletAccountModelFromDomain(wallet)
		result := tx.Model(model).
			Where("id = ? AND version = ?", wallet.GetID(), expectedVersion).
			Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeVersionConflict, "Wallet account has been modified by another process")
		}
		return nil
	})
}

// FindByIDForOwner finds a wallet account by ID scoped to (user, entity)
func (r *GormWalletAccountRepository) FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.WalletAccount, error) {
	var model models.WalletAccountModel
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

// FindByOwner finds all wallet accounts for (user, entity) with paging
func (r *GormWalletAccountRepository) FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.WalletAccount], error) {
	query := r.db.WithContext(ctx).Model(&models.WalletAccountModel{}).
		Where("user_id = ? AND entity_id = ?", userID, entityID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, WalletSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	page, pageSize := normalizePaging(filter.Page, filter.PageSize)
	query = query.Limit(pageSize).Offset((page - 1) * pageSize)

	var walletModels []models.WalletAccountModel
	if err := query.Find(&walletModels).Error; err != nil {
		return nil, err
	}
	wallets := make([]ledger.WalletAccount, len(walletModels))
	for i := range walletModels {
		wallets[i] = *walletModels[i].ToDomain()
	}
	result := shared.NewPaginated(wallets, total, page, pageSize)
	return &result, nil
}

// FindByCreditAccount finds the wallet linked to a credit account
func (r *GormWalletAccountRepository) FindByCreditAccount(ctx context.Context, userID, entityID, creditAccountID uuid.UUID) (*ledger.WalletAccount, error) {
	var model models.WalletAccountModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND entity_id = ? AND linked_credit_account_id = ?", userID, entityID, creditAccountID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// normalizePaging clamps page and page size to sane bounds
func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return page, pageSize
}
