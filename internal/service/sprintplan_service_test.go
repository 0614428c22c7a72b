package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

func alloc(role, fte string) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{role: dec(fte)}
}

func TestSprintPlanGetSeedsFromTeamCapacity(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	ctx := context.Background()
	team := NewTeamService(store)
	_, err := team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "Developer",
		CostRatePerDay: decPtr("400"),
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)
	_, err = team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "developer",
		CostRatePerDay: decPtr("350"),
		UtilizationPct: dec("50"),
	})
	require.NoError(t, err)

	plans := NewSprintPlanService(store, engine.StandardDefaults())
	rows, err := plans.Get(ctx, projectID)
	require.NoError(t, err)

	// One sprint (no features yet) plus the three fixed phases.
	require.Len(t, rows, 4)
	assert.Equal(t, model.RowTypeSprint, rows[0].RowType)
	assert.True(t, rows[0].Allocations["Developer"].Equal(dec("1.5")))
	assert.Equal(t, model.PhasePreUAT, *rows[1].Phase)
	assert.Equal(t, model.PhaseUAT, *rows[2].Phase)
	assert.Equal(t, model.PhaseGoLive, *rows[3].Phase)
}

func TestSprintPlanPutNormalizesLegacyRows(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	ctx := context.Background()
	team := NewTeamService(store)
	_, err := team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "Developer",
		CostRatePerDay: decPtr("400"),
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)

	week1, week2 := 1, 2
	sprint1 := 1
	plans := NewSprintPlanService(store, engine.StandardDefaults())
	saved, err := plans.Put(ctx, actor, projectID, []model.SprintPlanRow{
		{RowType: model.RowTypeSprintWeek, SprintNum: &sprint1, WeekNum: &week2, Allocations: alloc("Developer", "0.5")},
		{RowType: model.RowTypeSprintWeek, SprintNum: &sprint1, WeekNum: &week1, Allocations: alloc("Developer", "2")},
	})
	require.NoError(t, err)

	require.Len(t, saved, 1)
	assert.Equal(t, model.RowTypeSprint, saved[0].RowType)
	assert.Nil(t, saved[0].WeekNum)
	assert.True(t, saved[0].Allocations["Developer"].Equal(dec("2")))
}

func TestSprintPlanPutRejectsNegativeCells(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	sprint1 := 1
	plans := NewSprintPlanService(store, engine.StandardDefaults())
	_, err := plans.Put(context.Background(), actor, projectID, []model.SprintPlanRow{
		{RowType: model.RowTypeSprint, SprintNum: &sprint1, Allocations: alloc("Developer", "-1")},
	})
	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "NEGATIVE_ALLOCATION", verr.Code)
}

func TestSprintPlanRemoveRoleDropsColumn(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	ctx := context.Background()
	team := NewTeamService(store)
	for _, role := range []string{"Developer", "Designer"} {
		_, err := team.Add(ctx, actor, projectID, TeamMemberInput{
			Role:           role,
			CostRatePerDay: decPtr("400"),
			UtilizationPct: dec("100"),
		})
		require.NoError(t, err)
	}

	plans := NewSprintPlanService(store, engine.StandardDefaults())
	seeded, err := plans.Get(ctx, projectID)
	require.NoError(t, err)
	_, err = plans.Put(ctx, actor, projectID, seeded)
	require.NoError(t, err)

	rows, err := plans.RemoveRole(ctx, actor, projectID, "designer")
	require.NoError(t, err)
	for _, row := range rows {
		_, ok := row.Allocations["Designer"]
		assert.False(t, ok)
		_, ok = row.Allocations["Developer"]
		assert.True(t, ok)
	}
}

func TestSprintPlanAddRoleFillsZero(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	ctx := context.Background()
	team := NewTeamService(store)
	_, err := team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "Developer",
		CostRatePerDay: decPtr("400"),
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)

	plans := NewSprintPlanService(store, engine.StandardDefaults())
	seeded, err := plans.Get(ctx, projectID)
	require.NoError(t, err)
	_, err = plans.Put(ctx, actor, projectID, seeded)
	require.NoError(t, err)

	rows, err := plans.AddRole(ctx, actor, projectID, "Scrum Master")
	require.NoError(t, err)
	for _, row := range rows {
		cell, ok := row.Allocations["Scrum Master"]
		require.True(t, ok)
		assert.True(t, cell.IsZero())
	}
}

func TestSprintPlanPutGuardedByLock(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)
	winVersion(t, store, actor, projectID, versionID)

	sprint1 := 1
	plans := NewSprintPlanService(store, engine.StandardDefaults())
	_, err := plans.Put(context.Background(), actor, projectID, []model.SprintPlanRow{
		{RowType: model.RowTypeSprint, SprintNum: &sprint1, Allocations: alloc("Developer", "1")},
	})
	assert.ErrorIs(t, err, ErrLocked)
}
