package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRateUpsertIsCaseInsensitive(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	rates := NewRateService(store)

	ctx := context.Background()
	first, err := rates.Upsert(ctx, actor, RoleRateInput{
		Role:              "Developer",
		CostRatePerDay:    dec("400"),
		BillingRatePerDay: dec("800"),
	})
	require.NoError(t, err)

	second, err := rates.Upsert(ctx, actor, RoleRateInput{
		Role:              "developer",
		CostRatePerDay:    dec("420"),
		BillingRatePerDay: dec("840"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := rates.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].CostRatePerDay.Equal(dec("420")))
}

func TestRoleRateRejectsNegativeRates(t *testing.T) {
	rates := NewRateService(newMemStore())
	_, err := rates.Upsert(context.Background(), testActor(), RoleRateInput{
		Role:           "QA Engineer",
		CostRatePerDay: dec("-1"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoleRateDeleteUnknown(t *testing.T) {
	rates := NewRateService(newMemStore())
	err := rates.Delete(context.Background(), testActor(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
