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

// GormIncomeStreamRepository implements IncomeStreamRepository using GORM
type GormIncomeStreamRepository struct {
	db *gorm.DB
}

// NewGormIncomeStreamRepository creates a new GormIncomeStreamRepository
func NewGormIncomeStreamRepository(db *gorm.DB) *GormIncomeStreamRepository {
	return &GormIncomeStreamRepository{db: db}
}

// Save creates or updates an income stream
func (r *GormIncomeStreamRepository) Save(ctx context.Context, stream *ledger.IncomeStream) error {
	model := models.IncomeStreamModelFromDomain(stream)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the income stream with optimistic locking
func (r *GormIncomeStreamRepository) SaveWithLock(ctx context.Context, stream *ledger.IncomeStream) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.IncomeStreamModel
		if err := tx.Select("version").Where("id = ?", stream.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				model := models.IncomeStreamModelFromDomain(stream)
				return tx.Create(model).Error
			}
			return err
		}

		expectedVersion := stream.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.NewDomainError(shared.CodeVersionConflict, "Income stream has been modified by another process")
		}

		model := models.IncomeStreamModelFromDomain(stream)
		result := tx.Model(model).
			Where("id = ? AND version = ?", stream.GetID(), expectedVersion).
			Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeVersionConflict, "Income stream has been modified by another process")
		}
		return nil
	})
}

// FindByIDForOwner finds an income stream by ID scoped to (user, entity)
func (r *GormIncomeStreamRepository) FindByIDForOwner(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.IncomeStream, error) {
	var model models.IncomeStreamModel
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

// FindByOwner finds all income streams for (user, entity) with paging
func (r *GormIncomeStreamRepository) FindByOwner(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.IncomeStream], error) {
	query := r.db.WithContext(ctx).Model(&models.IncomeStreamModel{}).
		Where("user_id = ? AND entity_id = ?", userID, entityID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, IncomeStreamSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	page, pageSize := normalizePaging(filter.Page, filter.PageSize)
	query = query.Limit(pageSize).Offset((page - 1) * pageSize)

	var streamModels []models.IncomeStreamModel
	if err := query.Find(&streamModels).Error; err != nil {
		return nil, err
	}
	streams := make([]ledger.IncomeStream, len(streamModels))
	for i := range streamModels {
		streams[i] = *streamModels[i].ToDomain()
	}
	result := shared.NewPaginated(streams, total, page, pageSize)
	return &result, nil
}
