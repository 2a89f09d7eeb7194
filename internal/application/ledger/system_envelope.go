package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == shared.CodeNotFound
	}
	return false
}

// ensureSystemEnvelope resolves the engine-owned envelope for the given
// role, creating it if needed. Resolution is layered so the same logical
// envelope survives renames and data from before system envelopes were
// linked to wallets:
//  1. by (type, linked wallet), repairing a drifted name in place
//  2. by derived name, backfilling the system metadata
//  3. create fresh
//
// Safe to call on every posting; it only writes when something changed.
func ensureSystemEnvelope(
	ctx context.Context,
	repos TransactionalRepositories,
	userID, entityID uuid.UUID,
	systemType ledger.SystemEnvelopeType,
	name string,
	walletID *uuid.UUID,
	creditAccountID *uuid.UUID,
) (*ledger.BudgetEnvelope, error) {
	env, err := repos.Envelopes().FindSystemByTypeAndWallet(ctx, userID, entityID, systemType, walletID)
	if err == nil {
		if env.Name != name {
			env.Name = name
			env.Touch()
			if err := repos.Envelopes().Save(ctx, env); err != nil {
				return nil, err
			}
		}
		return env, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	env, err = repos.Envelopes().FindByName(ctx, userID, entityID, name)
	if err == nil {
		changed := false
		if !env.IsSystem || env.SystemType == nil || *env.SystemType != systemType {
			st := systemType
			env.IsSystem = true
			env.SystemType = &st
			changed = true
		}
		if walletID != nil && (env.LinkedWalletAccountID == nil || *env.LinkedWalletAccountID != *walletID) {
			env.LinkedWalletAccountID = walletID
			changed = true
		}
		if creditAccountID != nil && env.LinkedCreditAccountID == nil {
			env.LinkedCreditAccountID = creditAccountID
			changed = true
		}
		if changed {
			env.Touch()
			if err := repos.Envelopes().Save(ctx, env); err != nil {
				return nil, err
			}
		}
		return env, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	env = ledger.NewSystemEnvelope(userID, entityID, name, systemType)
	env.LinkedWalletAccountID = walletID
	env.LinkedCreditAccountID = creditAccountID
	if err := repos.Envelopes().Save(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// ensureReserveEnvelope resolves the per-card payment reserve for a
// credit-card wallet. Data written before reserves were one-per-card
// used a single shared envelope; when found, it is retagged into this
// card's reserve. One-time compatibility path.
func ensureReserveEnvelope(
	ctx context.Context,
	repos TransactionalRepositories,
	userID, entityID uuid.UUID,
	cardWallet *ledger.WalletAccount,
	creditAccountID *uuid.UUID,
) (*ledger.BudgetEnvelope, error) {
	name := ledger.ReserveEnvelopeName(cardWallet.Name)
	walletID := cardWallet.ID

	env, err := repos.Envelopes().FindSystemByTypeAndWallet(ctx, userID, entityID, ledger.SystemEnvelopeCreditCardPayment, &walletID)
	if err == nil {
		changed := false
		if env.Name != name {
			env.Name = name
			changed = true
		}
		if creditAccountID != nil && (env.LinkedCreditAccountID == nil || *env.LinkedCreditAccountID != *creditAccountID) {
			env.LinkedCreditAccountID = creditAccountID
			changed = true
		}
		if changed {
			env.Touch()
			if err := repos.Envelopes().Save(ctx, env); err != nil {
				return nil, err
			}
		}
		return env, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	env, err = repos.Envelopes().FindByName(ctx, userID, entityID, name)
	if err == nil {
		if !env.IsSystem || env.LinkedWalletAccountID == nil {
			env.RetagAsReserve(name, walletID, creditAccountID)
			if err := repos.Envelopes().Save(ctx, env); err != nil {
				return nil, err
			}
		} else if creditAccountID != nil && env.LinkedCreditAccountID == nil {
			env.LinkedCreditAccountID = creditAccountID
			env.Touch()
			if err := repos.Envelopes().Save(ctx, env); err != nil {
				return nil, err
			}
		}
		return env, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	legacy, err := repos.Envelopes().FindByName(ctx, userID, entityID, ledger.LegacySharedReserveEnvelopeName)
	if err == nil {
		legacy.RetagAsReserve(name, walletID, creditAccountID)
		if err := repos.Envelopes().Save(ctx, legacy); err != nil {
			return nil, err
		}
		return legacy, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	return ensureSystemEnvelope(ctx, repos, userID, entityID, ledger.SystemEnvelopeCreditCardPayment, name, &walletID, creditAccountID)
}
