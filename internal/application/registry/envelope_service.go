package registry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// EnvelopeService manages user budget envelopes. System envelopes are
// engine-owned; users can neither rename nor archive them.
type EnvelopeService struct {
	envelopes ledger.BudgetEnvelopeRepository
}

// NewEnvelopeService creates an envelope service
func NewEnvelopeService(envelopes ledger.BudgetEnvelopeRepository) *EnvelopeService {
	return &EnvelopeService{envelopes: envelopes}
}

// CreateEnvelope creates a user envelope
func (s *EnvelopeService) CreateEnvelope(ctx context.Context, userID, entityID uuid.UUID, name string) (*ledger.BudgetEnvelope, error) {
	env, err := ledger.NewBudgetEnvelope(userID, entityID, name)
	if err != nil {
		return nil, err
	}
	if err := s.envelopes.Save(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// GetEnvelope returns one envelope by ID
func (s *EnvelopeService) GetEnvelope(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.BudgetEnvelope, error) {
	return s.envelopes.FindByIDForOwner(ctx, userID, entityID, id)
}

// ListEnvelopes returns the entity's envelopes
func (s *EnvelopeService) ListEnvelopes(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.BudgetEnvelope], error) {
	return s.envelopes.FindByOwner(ctx, userID, entityID, includeArchived, filter)
}

// UpdateEnvelopeRequest carries the editable envelope settings
type UpdateEnvelopeRequest struct {
	UserID        uuid.UUID
	EntityID      uuid.UUID
	EnvelopeID    uuid.UUID
	Name          *string
	MonthlyTarget *decimal.Decimal
	MaxAllocation *decimal.Decimal
	ClearMax      bool
}

// UpdateEnvelope applies envelope setting changes
func (s *EnvelopeService) UpdateEnvelope(ctx context.Context, req *UpdateEnvelopeRequest) (*ledger.BudgetEnvelope, error) {
	env, err := s.envelopes.FindByIDForOwner(ctx, req.UserID, req.EntityID, req.EnvelopeID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := env.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.MonthlyTarget != nil {
		if req.MonthlyTarget.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Monthly target cannot be negative")
		}
		env.MonthlyTarget = req.MonthlyTarget.Round(2)
		env.Touch()
	}
	if req.ClearMax {
		if err := env.SetMaxAllocation(nil); err != nil {
			return nil, err
		}
	} else if req.MaxAllocation != nil {
		if err := env.SetMaxAllocation(req.MaxAllocation); err != nil {
			return nil, err
		}
	}
	env.Version++
	if err := s.envelopes.SaveWithLock(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// SetOverflowTarget marks one envelope as the entity's overflow target,
// clearing the flag from any previous holder
func (s *EnvelopeService) SetOverflowTarget(ctx context.Context, userID, entityID, envelopeID uuid.UUID) error {
	env, err := s.envelopes.FindByIDForOwner(ctx, userID, entityID, envelopeID)
	if err != nil {
		return err
	}
	if env.IsSystem {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "System envelopes cannot be the overflow target")
	}

	current, err := s.envelopes.FindOverflowTarget(ctx, userID, entityID)
	if err == nil && current.ID != env.ID {
		current.MarkOverflowTarget(false)
		current.Version++
		if err := s.envelopes.SaveWithLock(ctx, current); err != nil {
			return err
		}
	}

	env.MarkOverflowTarget(true)
	env.Version++
	return s.envelopes.SaveWithLock(ctx, env)
}

// ArchiveEnvelope archives a user envelope
func (s *EnvelopeService) ArchiveEnvelope(ctx context.Context, userID, entityID, id uuid.UUID) error {
	env, err := s.envelopes.FindByIDForOwner(ctx, userID, entityID, id)
	if err != nil {
		return err
	}
	if err := env.Archive(); err != nil {
		return err
	}
	env.Version++
	return s.envelopes.SaveWithLock(ctx, env)
}
