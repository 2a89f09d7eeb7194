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

// GormBudgetEnvelopeRepository implements BudgetEnvelopeRepository using GORM
type GormBudgetEnvelopeRepository struct {
	db *gorm.DB
}

// NewGormBudgetEnvelopeRepository creates a new GormBudgetEnvelopeRepository
func NewGormBudgetEnvelopeRepository(db *gorm.DB) *GormBudgetEnvelopeRepository {
	return &GormBudgetEnvelopeRepository{db: db}
}

// Save creates or updates a budget envelope
func (r *GormBudgetEnvelopeRepository) Save(ctx context.Context, envelope *ledger.BudgetEnvelope) error {
	model := models.BudgetEnvelopeModelFromDomain(envelope)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the budget envelope with optimistic locking
func (r *GormBudgetEnvelopeRepository) SaveWithLock(ctx context.Context, envelope *ledger.BudgetEnvelope) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.BudgetEnvelopeModel
		if err := tx.Select("version").Where("id = ?", envelope.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				model := models.BudgetEnvelopeModelFromDomain(envelope)
				return tx.Create(model).Error
			}
			return err
		}

		expectedVersion := envelope.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.NewDomainError(shared.CodeVersionConflict, "Budget envelope has been modified by another process")
		}

		model := models.BudgetEnvelopeModelFromDomain(envelope)
		result := tx.Model(model).
			Where("id = ? AND version = ?", envelope.GetID(), expectedVersion).
			Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeVersionConflict, "Budget envelope has been modified by another process")
		}
		return nil
	})
}

// FindByIDForOwner finds a budget envelope by ID scoped to (user, entity)
func (r *GormBudgetEnvelopeRepository) FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.BudgetEnvelope, error) {
	var model models.BudgetEnvelopeModel
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

// FindByOwner finds all budget envelopes for (user, entity) with paging
func (r *GormBudgetEnvelopeRepository) FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.BudgetEnvelope], error) {
	query := r.db.WithContext(ctx).Model(&models.BudgetEnvelopeModel{}).
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

	sortField := ValidateSortField(filter.OrderBy, EnvelopeSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	page, pageSize := normalizePaging(filter.Page, filter.PageSize)
	query = query.Limit(pageSize).Offset((page - 1) * pageSize)

	var envelopeModels []models.BudgetEnvelopeModel
	if err := query.Find(&envelopeModels).Error; err != nil {
		return nil, err
	}
	envelopes := make([]ledger.BudgetEnvelope, len(envelopeModels))
	for i := range envelopeModels {
		envelopes[i] = *envelopeModels[i].ToDomain()
	}
	result := shared.NewPaginated(envelopes, total, page, pageSize)
	return &result, nil
}

// FindSystemByTypeAndWallet finds the system envelope of a given role.
// walletID narrows per-wallet roles like the card payment reserve; nil
// matches the entity-wide roles.
func (r *GormBudgetEnvelopeRepository) FindSystemByTypeAndWallet(ctx context.Context, userID, entityID uuid.UUID, systemType ledger.SystemEnvelopeType, walletID *uuid.UUID) (*ledger.BudgetEnvelope, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND entity_id = ? AND is_system = ? AND system_type = ?", userID, entityID, true, systemType.String())
	if walletID != nil {
		query = query.Where("linked_wallet_account_id = ?", *walletID)
	} else {
		query = query.Where("linked_wallet_account_id IS NULL")
	}

	var model models.BudgetEnvelopeModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds an envelope by its exact name
func (r *GormBudgetEnvelopeRepository) FindByName(ctx context.Context, userID, entityID uuid.UUID, name string) (*ledger.BudgetEnvelope, error) {
	var model models.BudgetEnvelopeModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND entity_id = ? AND name = ?", userID, entityID, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOverflowTarget finds the entity's designated overflow envelope
func (r *GormBudgetEnvelopeRepository) FindOverflowTarget(ctx context.Context, userID, entityID uuid.UUID) (*ledger.BudgetEnvelope, error) {
	var model models.BudgetEnvelopeModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND entity_id = ? AND is_overflow_target = ? AND is_archived = ?", userID, entityID, true, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
