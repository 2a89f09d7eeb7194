package registry

import (
	"context"

	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// LoanService manages loan records. Principal figures only move through
// posted transactions; edits here are limited to status and notes.
type LoanService struct {
	loans ledger.LoanRecordRepository
}

// NewLoanService creates a loan service
func NewLoanService(loans ledger.LoanRecordRepository) *LoanService {
	return &LoanService{loans: loans}
}

// CreateLoanRequest describes a new loan record
type CreateLoanRequest struct {
	UserID       uuid.UUID
	EntityID     uuid.UUID
	Name         string
	Direction    ledger.LoanDirection
	Counterparty string
	Remarks      string
}

// CreateLoan creates a loan record
func (s *LoanService) CreateLoan(ctx context.Context, req *CreateLoanRequest) (*ledger.LoanRecord, error) {
	loan, err := ledger.NewLoanRecord(req.UserID, req.EntityID, req.Name, req.Direction)
	if err != nil {
		return nil, err
	}
	loan.Counterparty = req.Counterparty
	loan.Remarks = req.Remarks
	if err := s.loans.Save(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// GetLoan returns one loan by ID
func (s *LoanService) GetLoan(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.LoanRecord, error) {
	return s.loans.FindByIDForOwner(ctx, userID, entityID, id)
}

// ListLoans returns the entity's loan records
func (s *LoanService) ListLoans(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.LoanRecord], error) {
	return s.loans.FindByOwner(ctx, userID, entityID, includeArchived, filter)
}

// UpdateLoanRequest carries the editable loan fields
type UpdateLoanRequest struct {
	UserID   uuid.UUID
	EntityID uuid.UUID
	LoanID   uuid.UUID
	Status   *ledger.LoanStatus
	Remarks  *string
}

// UpdateLoan applies status or remark changes
func (s *LoanService) UpdateLoan(ctx context.Context, req *UpdateLoanRequest) (*ledger.LoanRecord, error) {
	loan, err := s.loans.FindByIDForOwner(ctx, req.UserID, req.EntityID, req.LoanID)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := loan.SetStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if req.Remarks != nil {
		loan.SetRemarks(*req.Remarks)
	}
	loan.Version++
	if err := s.loans.SaveWithLock(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// ArchiveLoan archives a loan record with no remaining principal
func (s *LoanService) ArchiveLoan(ctx context.Context, userID, entityID, id uuid.UUID) error {
	loan, err := s.loans.FindByIDForOwner(ctx, userID, entityID, id)
	if err != nil {
		return err
	}
	if loan.Status == ledger.LoanStatusActive {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Active loans cannot be archived")
	}
	loan.Archive()
	loan.Version++
	return s.loans.SaveWithLock(ctx, loan)
}
