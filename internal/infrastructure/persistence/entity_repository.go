package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
	"github.com/pesobook/backend/internal/infrastructure/persistence/models"
)

// GormEntityRepository implements EntityRepository using GORM
type GormEntityRepository struct {
	db *gorm.DB
}

// NewGormEntityRepository creates a new GormEntityRepository
func NewGormEntityRepository(db *gorm.DB) *GormEntityRepository {
	return &GormEntityRepository{db: db}
}

// Save creates or updates an entity
func (r *GormEntityRepository) Save(ctx context.Context, entity *ledger.Entity) error {
	model := models.EntityModelFromDomain(entity)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the entity with optimistic locking
func (r *GormEntityRepository) SaveWithLock(ctx context.Context, entity *ledger.Entity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.EntityModel
		if err := tx.Select("version").Where("id = ?", entity.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				model := models.EntityModelFromDomain(entity)
				return tx.Create(model).Error
			}
			return err
		}

		expectedVersion := entity.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.NewDomainError(shared.CodeVersionConflict, "Entity has been modified by another process")
		}

		model := models.EntityModelFromDomain(entity)
		result := tx.Model(model).
			Where("id = ? AND version = ?", entity.GetID(), expectedVersion).
			Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeVersionConflict, "Entity has been modified by another process")
		}
		return nil
	})
}

// FindByID finds an entity by ID for a user
func (r *GormEntityRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*ledger.Entity, error) {
	var model models.EntityModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds all entities of a user
func (r *GormEntityRepository) FindByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*ledger.Entity, error) {
	var entityModels []models.EntityModel
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC")
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if err := query.Find(&entityModels).Error; err != nil {
		return nil, err
	}
	entities := make([]*ledger.Entity, len(entityModels))
	for i := range entityModels {
		entities[i] = entityModels[i].ToDomain()
	}
	return entities, nil
}

// CountActiveByUser counts the user's non-archived entities
func (r *GormEntityRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.EntityModel{}).
		Where("user_id = ? AND is_archived = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
