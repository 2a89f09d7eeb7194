package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/domain/shared"
)

func TestEnvelopeService(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	entityID := uuid.New()

	newService := func() (*regStore, *EnvelopeService) {
		store := newRegStore()
		return store, NewEnvelopeService(store.Envelopes())
	}

	t.Run("create and get", func(t *testing.T) {
		_, svc := newService()
		env, err := svc.CreateEnvelope(ctx, userID, entityID, "Groceries")
		require.NoError(t, err)
		assert.False(t, env.IsSystem)

		got, err := svc.GetEnvelope(ctx, userID, entityID, env.ID)
		require.NoError(t, err)
		assert.Equal(t, env.ID, got.ID)

		_, err = svc.GetEnvelope(ctx, userID, uuid.New(), env.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update settings", func(t *testing.T) {
		_, svc := newService()
		env, err := svc.CreateEnvelope(ctx, userID, entityID, "Groceries")
		require.NoError(t, err)

		name := "Food"
		target := decimal.NewFromInt(8000)
		max := decimal.NewFromInt(10000)
		updated, err := svc.UpdateEnvelope(ctx, &UpdateEnvelopeRequest{
			UserID:        userID,
			EntityID:      entityID,
			EnvelopeID:    env.ID,
			Name:          &name,
			MonthlyTarget: &target,
			MaxAllocation: &max,
		})
		require.NoError(t, err)
		assert.Equal(t, "Food", updated.Name)
		assert.True(t, updated.MonthlyTarget.Equal(target))
		require.NotNil(t, updated.MaxAllocation)
		assert.True(t, updated.MaxAllocation.Equal(max))
	})

	t.Run("clear the allocation cap", func(t *testing.T) {
		_, svc := newService()
		env, err := svc.CreateEnvelope(ctx, userID, entityID, "Groceries")
		require.NoError(t, err)
		max := decimal.NewFromInt(10000)
		require.NoError(t, env.SetMaxAllocation(&max))

		updated, err := svc.UpdateEnvelope(ctx, &UpdateEnvelopeRequest{
			UserID:     userID,
			EntityID:   entityID,
			EnvelopeID: env.ID,
			ClearMax:   true,
		})
		require.NoError(t, err)
		assert.Nil(t, updated.MaxAllocation)
	})

	t.Run("rejects a negative monthly target", func(t *testing.T) {
		_, svc := newService()
		env, err := svc.CreateEnvelope(ctx, userID, entityID, "Groceries")
		require.NoError(t, err)

		negative := decimal.NewFromInt(-1)
		_, err = svc.UpdateEnvelope(ctx, &UpdateEnvelopeRequest{
			UserID:        userID,
			EntityID:      entityID,
			EnvelopeID:    env.ID,
			MonthlyTarget: &negative,
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidAmount, domainErr.Code)
	})

	t.Run("overflow target moves between envelopes", func(t *testing.T) {
		_, svc := newService()
		first, err := svc.CreateEnvelope(ctx, userID, entityID, "Needs")
		require.NoError(t, err)
		second, err := svc.CreateEnvelope(ctx, userID, entityID, "Wants")
		require.NoError(t, err)

		require.NoError(t, svc.SetOverflowTarget(ctx, userID, entityID, first.ID))
		assert.True(t, first.IsOverflowTarget)

		require.NoError(t, svc.SetOverflowTarget(ctx, userID, entityID, second.ID))
		assert.False(t, first.IsOverflowTarget)
		assert.True(t, second.IsOverflowTarget)
	})

	t.Run("system envelopes cannot be the overflow target", func(t *testing.T) {
		store, svc := newService()
		system := ledger.NewSystemEnvelope(userID, entityID, ledger.SystemEnvelopeNameTransfer, ledger.SystemEnvelopeTransfer)
		store.envelopes[system.ID] = system

		err := svc.SetOverflowTarget(ctx, userID, entityID, system.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("system envelopes cannot be archived", func(t *testing.T) {
		store, svc := newService()
		system := ledger.NewSystemEnvelope(userID, entityID, ledger.SystemEnvelopeNameTransfer, ledger.SystemEnvelopeTransfer)
		store.envelopes[system.ID] = system

		err := svc.ArchiveEnvelope(ctx, userID, entityID, system.ID)
		require.Error(t, err)
		assert.False(t, system.IsArchived)
	})

	t.Run("archive a user envelope", func(t *testing.T) {
		_, svc := newService()
		env, err := svc.CreateEnvelope(ctx, userID, entityID, "Groceries")
		require.NoError(t, err)

		require.NoError(t, svc.ArchiveEnvelope(ctx, userID, entityID, env.ID))
		assert.True(t, env.IsArchived)

		page, err := svc.ListEnvelopes(ctx, userID, entityID, false, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})
}
