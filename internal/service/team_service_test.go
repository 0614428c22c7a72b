package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/estimation-engine/internal/engine"
)

func TestTeamAddAppliesCalendarDefaults(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)

	member, err := NewTeamService(store).Add(context.Background(), actor, projectID, TeamMemberInput{
		Role:           "Developer",
		CostRatePerDay: decPtr("400"),
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, versionID, member.VersionID)
	assert.Equal(t, 20, member.WorkingDaysPerMonth)
	assert.Equal(t, 8, member.HoursPerDay)

	audits, err := store.ListAudit(context.Background(), projectID)
	require.NoError(t, err)
	actions := make([]string, 0, len(audits))
	for _, a := range audits {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, "add_team_member")
}

func TestTeamAddRejectsOverAllocation(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	_, err := NewTeamService(store).Add(context.Background(), actor, projectID, TeamMemberInput{
		Role:           "Developer",
		UtilizationPct: dec("150"),
	})
	var validation *engine.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestTeamAddRequiresRole(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	_, err := NewTeamService(store).Add(context.Background(), actor, projectID, TeamMemberInput{
		Role:           "   ",
		UtilizationPct: dec("100"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTeamUpdatePatchesOnlyProvidedFields(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)
	team := NewTeamService(store)
	ctx := context.Background()

	member, err := team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "Developer",
		CostRatePerDay: decPtr("400"),
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)

	updated, err := team.Update(ctx, actor, projectID, member.ID, TeamMemberInput{
		UtilizationPct: dec("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Developer", updated.Role)
	require.NotNil(t, updated.CostRatePerDay)
	assert.True(t, updated.CostRatePerDay.Equal(dec("400")))
	assert.True(t, updated.UtilizationPct.Equal(dec("50")))
}

func TestTeamUpdateScopedToCurrentVersion(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)
	team := NewTeamService(store)
	ctx := context.Background()

	member, err := team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "Developer",
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)

	winVersion(t, store, actor, projectID, versionID)
	_, err = NewProjectService(store, engine.StandardDefaults()).NewVersion(ctx, actor, projectID)
	require.NoError(t, err)

	// The clone carries fresh member ids; the old id belongs to history.
	_, err = team.Update(ctx, actor, projectID, member.ID, TeamMemberInput{UtilizationPct: dec("50")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamDeleteRemovesMember(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)
	team := NewTeamService(store)
	ctx := context.Background()

	member, err := team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "Developer",
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)

	require.NoError(t, team.Delete(ctx, actor, projectID, member.ID))

	members, err := team.List(ctx, projectID)
	require.NoError(t, err)
	assert.Empty(t, members)

	assert.ErrorIs(t, team.Delete(ctx, actor, projectID, member.ID), ErrNotFound)
}
