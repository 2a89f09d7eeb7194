package registry

import (
	"context"

	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// EntityService manages the ledger entities a user keeps books for
type EntityService struct {
	entities ledger.EntityRepository
}

// NewEntityService creates an entity service
func NewEntityService(entities ledger.EntityRepository) *EntityService {
	return &EntityService{entities: entities}
}

// CreateEntity creates a new entity for the user
func (s *EntityService) CreateEntity(ctx context.Context, userID uuid.UUID, name string) (*ledger.Entity, error) {
	entity, err := ledger.NewEntity(userID, name)
	if err != nil {
		return nil, err
	}
	if err := s.entities.Save(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// RenameEntity renames an entity
func (s *EntityService) RenameEntity(ctx context.Context, userID, entityID uuid.UUID, name string) (*ledger.Entity, error) {
	entity, err := s.entities.FindByID(ctx, userID, entityID)
	if err != nil {
		return nil, err
	}
	if err := entity.Rename(name); err != nil {
		return nil, err
	}
	entity.Version++
	if err := s.entities.SaveWithLock(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// ArchiveEntity archives an entity. The user's last active entity cannot
// be archived.
func (s *EntityService) ArchiveEntity(ctx context.Context, userID, entityID uuid.UUID) error {
	entity, err := s.entities.FindByID(ctx, userID, entityID)
	if err != nil {
		return err
	}
	active, err := s.entities.CountActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	if active <= 1 {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Cannot archive the last active entity")
	}
	if err := entity.Archive(); err != nil {
		return err
	}
	entity.Version++
	return s.entities.SaveWithLock(ctx, entity)
}

// UnarchiveEntity restores an archived entity
func (s *EntityService) UnarchiveEntity(ctx context.Context, userID, entityID uuid.UUID) error {
	entity, err := s.entities.FindByID(ctx, userID, entityID)
	if err != nil {
		return err
	}
	entity.Unarchive()
	entity.Version++
	return s.entities.SaveWithLock(ctx, entity)
}

// ListEntities returns the user's entities
func (s *EntityService) ListEntities(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*ledger.Entity, error) {
	return s.entities.FindByUser(ctx, userID, includeArchived)
}
