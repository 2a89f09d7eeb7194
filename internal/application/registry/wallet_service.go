package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/pesobook/backend/internal/application/ledger"
	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

// CreateWalletRequest describes a new wallet account
type CreateWalletRequest struct {
	UserID         uuid.UUID
	EntityID       uuid.UUID
	Name           string
	Kind           ledger.WalletKind
	OpeningBalance decimal.Decimal
	CreditLimit    *decimal.Decimal
	BillingCycleDay *int
}

// OverrideBalanceRequest sets a wallet balance directly. The engine
// records the difference as an adjustment so history stays complete.
type OverrideBalanceRequest struct {
	UserID      uuid.UUID
	EntityID    uuid.UUID
	ActorUserID uuid.UUID
	WalletID    uuid.UUID
	NewBalance  decimal.Decimal
	ReasonCode  string
	Remarks     string
}

// WalletService manages wallet accounts. Creating a credit-card wallet
// also creates and links its credit account in the same transaction.
type WalletService struct {
	scope   ledgerapp.TransactionScope
	wallets ledger.WalletAccountRepository
	posting *ledgerapp.PostingService
}

// NewWalletService creates a wallet service
func NewWalletService(scope ledgerapp.TransactionScope, wallets ledger.WalletAccountRepository, posting *ledgerapp.PostingService) *WalletService {
	return &WalletService{scope: scope, wallets: wallets, posting: posting}
}

// CreateWallet creates a wallet account
func (s *WalletService) CreateWallet(ctx context.Context, req *CreateWalletRequest) (*ledger.WalletAccount, error) {
	wallet, err := ledger.NewWalletAccount(req.UserID, req.EntityID, req.Name, req.Kind, req.OpeningBalance)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		if wallet.IsCreditCard() {
			credit, err := ledger.NewCreditAccount(req.UserID, req.EntityID, req.Name)
			if err != nil {
				return err
			}
			if req.CreditLimit != nil {
				if err := credit.SetCreditLimit(req.CreditLimit); err != nil {
					return err
				}
				if err := wallet.SetCreditLimit(*req.CreditLimit, req.BillingCycleDay); err != nil {
					return err
				}
			}
			credit.LinkWallet(wallet.ID)
			if err := repos.CreditAccounts().Save(ctx, credit); err != nil {
				return err
			}
			wallet.LinkCreditAccount(credit.ID)
		}
		return repos.Wallets().Save(ctx, wallet)
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// GetWallet returns one wallet by ID
func (s *WalletService) GetWallet(ctx context.Context, userID, entityID, id uuid.UUID) (*ledger.WalletAccount, error) {
	return s.wallets.FindByIDForOwner(ctx, userID, entityID, id)
}

// ListWallets returns the entity's wallets
func (s *WalletService) ListWallets(ctx context.Context, userID, entityID uuid.UUID, includeArchived bool, filter shared.Filter) (*shared.Paginated[ledger.WalletAccount], error) {
	return s.wallets.FindByOwner(ctx, userID, entityID, includeArchived, filter)
}

// RenameWallet renames a wallet account
func (s *WalletService) RenameWallet(ctx context.Context, userID, entityID, id uuid.UUID, name string) (*ledger.WalletAccount, error) {
	wallet, err := s.wallets.FindByIDForOwner(ctx, userID, entityID, id)
	if err != nil {
		return nil, err
	}
	if err := wallet.Rename(name); err != nil {
		return nil, err
	}
	wallet.Version++
	if err := s.wallets.SaveWithLock(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// ArchiveWallet archives a wallet account
func (s *WalletService) ArchiveWallet(ctx context.Context, userID, entityID, id uuid.UUID) error {
	wallet, err := s.wallets.FindByIDForOwner(ctx, userID, entityID, id)
	if err != nil {
		return err
	}
	wallet.Archive()
	wallet.Version++
	return s.wallets.SaveWithLock(ctx, wallet)
}

// OverrideBalance sets the wallet balance to an exact figure by posting
// the difference as an adjustment. An override to the current balance is
// a no-op.
func (s *WalletService) OverrideBalance(ctx context.Context, req *OverrideBalanceRequest) (*ledgerapp.TransactionResponse, error) {
	wallet, err := s.wallets.FindByIDForOwner(ctx, req.UserID, req.EntityID, req.WalletID)
	if err != nil {
		return nil, err
	}
	target := req.NewBalance.Round(2)
	diff := target.Sub(wallet.CurrentBalance)
	if diff.IsZero() {
		return nil, nil
	}

	direction := ledger.AdjustmentIncrease
	if diff.IsNegative() {
		direction = ledger.AdjustmentDecrease
	}
	reason := req.ReasonCode
	if reason == "" {
		reason = "BALANCE_OVERRIDE"
	}
	return s.posting.Post(ctx, &ledgerapp.PostTransactionRequest{
		UserID:               req.UserID,
		EntityID:             req.EntityID,
		ActorUserID:          req.ActorUserID,
		Kind:                 ledger.KindAdjustment,
		PostedAt:             time.Now(),
		Amount:               diff.Abs(),
		WalletAccountID:      req.WalletID,
		AdjustmentDirection:  &direction,
		AdjustmentReasonCode: reason,
		Remarks:              req.Remarks,
	})
}
