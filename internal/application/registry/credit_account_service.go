package registry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// CreditAccountService manages the debt side of credit-card wallets
type CreditAccountService struct {
	accounts ledger.CreditAccountRepository
	wallets  ledger.WalletAccountRepository
}

// NewCreditAccountService creates a credit account service
func NewCreditAccountService(accounts ledger.CreditAccountRepository, wallets ledger.WalletAccountRepository) *CreditAccountService {
	return &CreditAccountService{accounts: accounts, wallets: wallets}
}

// GetCreditAccount returns one credit account by ID
func (s *CreditAccountService) GetCreditAccount(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.CreditAccount, error) {
	return s.accounts.FindByIDForOwner(ctx, userID, entityID, id)
}

// ListCreditAccounts returns the entity's credit accounts
func (s *CreditAccountService) ListCreditAccounts(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.CreditAccount], error) {
	return s.accounts.FindByOwner(ctx, userID, entityID, includeArchived, filter)
}

// UpdateCreditAccountRequest carries the editable credit account settings
type UpdateCreditAccountRequest struct {
	UserID          uuid.UUID
	EntityID        uuid.UUID
	CreditAccountID uuid.UUID
	CreditLimit     *decimal.Decimal
	ClearLimit      bool
	StatementDay    *int
	DueDay          *int
}

// UpdateCreditAccount applies setting changes. The limit change also
// lands on the linked wallet so both sides stay in step.
func (s *CreditAccountService) UpdateCreditAccount(ctx context.Context, req *UpdateCreditAccountRequest) (*ledger.CreditAccount, error) {
	account, err := s.accounts.FindByIDForOwner(ctx, req.UserID, req.EntityID, req.CreditAccountID)
	if err != nil {
		return nil, err
	}

	if req.ClearLimit {
		if err := account.SetCreditLimit(nil); err != nil {
			return nil, err
		}
	} else if req.CreditLimit != nil {
		if err := account.SetCreditLimit(req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if req.StatementDay != nil || req.DueDay != nil {
		if err := account.SetCycleDays(req.StatementDay, req.DueDay); err != nil {
			return nil, err
		}
	}
	account.Version++
	if err := s.accounts.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}

	if req.CreditLimit != nil && account.WalletAccountID != nil {
		wallet, err := s.wallets.FindByIDForOwner(ctx, req.UserID, req.EntityID, *account.WalletAccountID)
		if err == nil {
			if err := wallet.SetCreditLimit(*req.CreditLimit, wallet.BillingCycleDay); err == nil {
				wallet.Version++
				if err := s.wallets.SaveWithLock(ctx, wallet); err != nil {
					return nil, err
				}
			}
		}
	}
	return account, nil
}
