package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/shared"
)

// CreditAccount tracks the outstanding debt side of a credit-card wallet.
// The wallet's CurrentBalance mirrors the same debt figure; both move
// together inside posting transactions.
type CreditAccount struct {
	shared.OwnedAggregateRoot
	Name            string           `json:"name"`
	OutstandingDebt decimal.Decimal  `json:"outstanding_debt"`
	CreditLimit     *decimal.Decimal `json:"credit_limit,omitempty"`
	StatementDay    *int             `json:"statement_day,omitempty"`
	DueDay          *int             `json:"due_day,omitempty"`
	WalletAccountID *uuid.UUID       `json:"wallet_account_id,omitempty"`
	IsArchived      bool             `json:"is_archived"`
}

// NewCreditAccount creates a credit account with zero outstanding debt
func NewCreditAccount(userID, entityID uuid.UUID, name string) (*CreditAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Credit account name cannot be empty")
	}
	return &CreditAccount{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, entityID),
		Name:               name,
		OutstandingDebt:    decimal.Zero,
	}, nil
}

// LinkWallet ties the credit account to its credit-card wallet
func (c *CreditAccount) LinkWallet(walletID uuid.UUID) {
	c.WalletAccountID = &walletID
	c.Touch()
}

// ApplyDelta moves the outstanding debt by the given delta. Charges are
// positive, payments negative.
func (c *CreditAccount) ApplyDelta(delta decimal.Decimal) {
	c.OutstandingDebt = c.OutstandingDebt.Add(delta).Round(2)
	c.Touch()
}

// WouldExceedCreditLimit reports whether charging the given amount would
// push debt past the configured limit. Accounts without a limit are
// unconstrained.
func (c *CreditAccount) WouldExceedCreditLimit(amount decimal.Decimal) bool {
	if c.CreditLimit == nil {
		return false
	}
	return c.OutstandingDebt.Add(amount).GreaterThan(*c.CreditLimit)
}

// SetCreditLimit updates the credit limit
func (c *CreditAccount) SetCreditLimit(limit *decimal.Decimal) error {
	if limit != nil && limit.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Credit limit cannot be negative")
	}
	if limit != nil {
		rounded := limit.Round(2)
		c.CreditLimit = &rounded
	} else {
		c.CreditLimit = nil
	}
	c.Touch()
	return nil
}

// SetCycleDays updates the statement and due days of the billing cycle
func (c *CreditAccount) SetCycleDays(statementDay, dueDay *int) error {
	for _, d := range []*int{statementDay, dueDay} {
		if d != nil && (*d < 1 || *d > 31) {
			return shared.NewDomainError(shared.CodeInvalidInput, "Cycle day must be between 1 and 31")
		}
	}
	c.StatementDay = statementDay
	c.DueDay = dueDay
	c.Touch()
	return nil
}

// Archive hides the credit account
func (c *CreditAccount) Archive() {
	c.IsArchived = true
	c.Touch()
}
