package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// OwnedAggregateRoot extends BaseAggregateRoot with (user, entity) ownership.
// Every ledger record belongs to exactly one user and one of that user's
// finance entities; cross-entity references are a hard error everywhere.
type OwnedAggregateRoot struct {
	BaseAggregateRoot
	UserID   uuid.UUID
	EntityID uuid.UUID
}

// NewOwnedAggregateRoot creates a new aggregate root scoped to a (user, entity) pair
func NewOwnedAggregateRoot(userID, entityID uuid.UUID) OwnedAggregateRoot {
	return OwnedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		UserID:            userID,
		EntityID:          entityID,
	}
}

// OwnedBy reports whether the aggregate belongs to the given (user, entity) pair
func (o *OwnedAggregateRoot) OwnedBy(userID, entityID uuid.UUID) bool {
	return o.UserID == userID && o.EntityID == entityID
}
