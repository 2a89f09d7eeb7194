package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/shared"
)

// IncomeStream tags income transactions with their source, e.g. a salary
// or a side business. Streams have no balance of their own; totals are
// derived from tagged transactions.
type IncomeStream struct {
	shared.OwnedAggregateRoot
	Name           string          `json:"name"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	Cadence        string          `json:"cadence"`
	IsArchived     bool            `json:"is_archived"`
}

// NewIncomeStream creates an income stream
func NewIncomeStream(userID, entityID uuid.UUID, name string) (*IncomeStream, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Income stream name cannot be empty")
	}
	return &IncomeStream{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, entityID),
		Name:               name,
		ExpectedAmount:     decimal.Zero,
	}, nil
}

// SetExpectation records the expected amount and cadence for planning
func (s *IncomeStream) SetExpectation(amount decimal.Decimal, cadence string) error {
	if amount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Expected amount cannot be negative")
	}
	s.ExpectedAmount = amount.Round(2)
	s.Cadence = cadence
	s.Touch()
	return nil
}

// Rename changes the stream name
func (s *IncomeStream) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Income stream name cannot be empty")
	}
	s.Name = name
	s.Touch()
	return nil
}

// Archive hides the income stream
func (s *IncomeStream) Archive() {
	s.IsArchived = true
	s.Touch()
}
