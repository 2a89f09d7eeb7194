package registry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// IncomeStreamService manages income streams
type IncomeStreamService struct {
	streams ledger.IncomeStreamRepository
}

// NewIncomeStreamService creates an income stream service
func NewIncomeStreamService(streams ledger.IncomeStreamRepository) *IncomeStreamService {
	return &IncomeStreamService{streams: streams}
}

// CreateIncomeStream creates an income stream
func (s *IncomeStreamService) CreateIncomeStream(ctx context.Context, userID, entityID uuid.UUID, name string) (*ledger.IncomeStream, error) {
	stream, err := ledger.NewIncomeStream(userID, entityID, name)
	if err != nil {
		return nil, err
	}
	if err := s.streams.Save(ctx, stream); err != nil {
		return nil, err
	}
	return stream, nil
}

// GetIncomeStream returns one income stream by ID
func (s *IncomeStreamService) GetIncomeStream(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.IncomeStream, error) {
	return s.streams.FindByIDForOwner(ctx, userID, entityID, id)
}

// ListIncomeStreams returns the entity's income streams
func (s *IncomeStreamService) ListIncomeStreams(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.IncomeStream], error) {
	return s.streams.FindByOwner(ctx, userID, entityID, includeArchived, filter)
}

// UpdateIncomeStreamRequest carries the editable stream fields
type UpdateIncomeStreamRequest struct {
	UserID         uuid.UUID
	EntityID       uuid.UUID
	StreamID       uuid.UUID
	Name           *string
	ExpectedAmount *decimal.Decimal
	Cadence        *string
}

// UpdateIncomeStream applies stream changes
func (s *IncomeStreamService) UpdateIncomeStream(ctx context.Context, req *UpdateIncomeStreamRequest) (*ledger.IncomeStream, error) {
	stream, err := s.streams.FindByIDForOwner(ctx, req.UserID, req.EntityID, req.StreamID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := stream.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ExpectedAmount != nil || req.Cadence != nil {
		amount := stream.ExpectedAmount
		cadence := stream.Cadence
		if req.ExpectedAmount != nil {
			amount = *req.ExpectedAmount
		}
		if req.Cadence != nil {
			cadence = *req.Cadence
		}
		if err := stream.SetExpectation(amount, cadence); err != nil {
			return nil, err
		}
	}
	stream.Version++
	if err := s.streams.SaveWithLock(ctx, stream); err != nil {
		return nil, err
	}
	return stream, nil
}

// ArchiveIncomeStream archives an income stream
func (s *IncomeStreamService) ArchiveIncomeStream(ctx context.Context, userID, entityID, id uuid.UUID) error {
	stream, err := s.streams.FindByIDForOwner(ctx, userID, entityID, id)
	if err != nil {
		return err
	}
	stream.Archive()
	stream.Version++
	return s.streams.SaveWithLock(ctx, stream)
}
