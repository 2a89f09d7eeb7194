package ledger

import (
	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/domain/shared"
)

// Entity represents a named finance scope (e.g. "Personal", "Business")
// owned by exactly one user. All other ledger records are scoped to a
// (user, entity) pair. Archiving an entity hides it but does not delete
// its records.
type Entity struct {
	shared.BaseAggregateRoot
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	IsArchived bool      `json:"is_archived"`
}

// NewEntity creates a new finance entity for a user
func NewEntity(userID uuid.UUID, name string) (*Entity, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "User ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Entity name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Entity name cannot exceed 100 characters")
	}
	return &Entity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Name:              name,
	}, nil
}

// Rename changes the entity name
func (e *Entity) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Entity name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Entity name cannot exceed 100 characters")
	}
	e.Name = name
	e.Touch()
	return nil
}

// Archive hides the entity. The caller must ensure the user keeps at
// least one active entity.
func (e *Entity) Archive() error {
	if e.IsArchived {
		return shared.NewDomainError("INVALID_STATE", "Entity is already archived")
	}
	e.IsArchived = true
	e.Touch()
	return nil
}

// Unarchive restores a hidden entity
func (e *Entity) Unarchive() {
	e.IsArchived = false
	e.Touch()
}
