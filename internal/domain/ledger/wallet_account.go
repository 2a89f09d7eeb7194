package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/shared"
)

// WalletKind represents the kind of a wallet account
type WalletKind string

const (
	WalletKindCash       WalletKind = "CASH"
	WalletKindBank       WalletKind = "BANK"
	WalletKindEWallet    WalletKind = "E_WALLET"
	WalletKindCreditCard WalletKind = "CREDIT_CARD"
	WalletKindAsset      WalletKind = "ASSET"
)

// IsValid checks if the kind is a valid WalletKind
func (k WalletKind) IsValid() bool {
	switch k {
	case WalletKindCash, WalletKindBank, WalletKindEWallet, WalletKindCreditCard, WalletKindAsset:
		return true
	}
	return false
}

// String returns the string representation of WalletKind
func (k WalletKind) String() string {
	return string(k)
}

// WalletAccount represents a balance-bearing account owned by a
// (user, entity) pair. For CREDIT_CARD wallets the balance represents
// debt owed, not spendable funds; ASSET wallets hold unit quantities,
// not currency.
type WalletAccount struct {
	shared.OwnedAggregateRoot
	Name                  string           `json:"name"`
	Kind                  WalletKind       `json:"kind"`
	CurrentBalance        decimal.Decimal  `json:"current_balance"`
	CreditLimit           *decimal.Decimal `json:"credit_limit,omitempty"`
	BillingCycleDay       *int             `json:"billing_cycle_day,omitempty"`
	LinkedCreditAccountID *uuid.UUID       `json:"linked_credit_account_id,omitempty"`
	IsArchived            bool             `json:"is_archived"`
}

// NewWalletAccount creates a new wallet account with an opening balance
func NewWalletAccount(userID, entityID uuid.UUID, name string, kind WalletKind, openingBalance decimal.Decimal) (*WalletAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Wallet name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Wallet name cannot exceed 100 characters")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid wallet kind: %s", kind))
	}
	return &WalletAccount{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, entityID),
		Name:               name,
		Kind:               kind,
		CurrentBalance:     openingBalance.Round(2),
	}, nil
}

// IsCreditCard returns true for CREDIT_CARD wallets
func (w *WalletAccount) IsCreditCard() bool {
	return w.Kind == WalletKindCreditCard
}

// SetCreditLimit sets the billing metadata of a credit-card wallet
func (w *WalletAccount) SetCreditLimit(limit decimal.Decimal, billingCycleDay *int) error {
	if !w.IsCreditCard() {
		return shared.NewDomainError(shared.CodeTypeMismatch, "Credit limit applies only to credit card wallets")
	}
	if limit.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Credit limit cannot be negative")
	}
	rounded := limit.Round(2)
	w.CreditLimit = &rounded
	w.BillingCycleDay = billingCycleDay
	w.Touch()
	return nil
}

// LinkCreditAccount associates the wallet with a credit-account identity
func (w *WalletAccount) LinkCreditAccount(creditAccountID uuid.UUID) {
	w.LinkedCreditAccountID = &creditAccountID
	w.Touch()
}

// ApplyDelta applies a balance delta. Deltas are the only mutation path
// for balances; wholesale overwrites go through a synthesized adjustment.
func (w *WalletAccount) ApplyDelta(delta decimal.Decimal) {
	w.CurrentBalance = w.CurrentBalance.Add(delta).Round(2)
	w.Touch()
}

// WouldExceedCreditLimit reports whether raising the debt by amount
// would push the wallet past its configured credit limit. Wallets with
// no configured limit are unconstrained.
func (w *WalletAccount) WouldExceedCreditLimit(amount decimal.Decimal) bool {
	if w.CreditLimit == nil {
		return false
	}
	return w.CurrentBalance.Add(amount).GreaterThan(*w.CreditLimit)
}

// Rename changes the wallet name
func (w *WalletAccount) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Wallet name cannot be empty")
	}
	w.Name = name
	w.Touch()
	return nil
}

// Archive hides the wallet from active use
func (w *WalletAccount) Archive() {
	w.IsArchived = true
	w.Touch()
}
