package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

func TestCreateProjectSeedsVersionAndSnapshot(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projects := NewProjectService(store, engine.StandardDefaults())

	ctx := context.Background()
	p, err := projects.Create(ctx, actor, ProjectInput{
		Name:         "Warehouse Portal",
		RevenueModel: model.RevenueModelTM,
		Currency:     "eur",
		BaseCurrency: "usd",
		FXRate:       decPtr("0.92"),
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, 2, p.SprintDurationWeeks)

	v, err := store.CurrentVersion(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.VersionNumber)
	assert.Equal(t, model.StatusDraft, v.Status)
	assert.False(t, v.IsLocked)

	snap, err := store.LatestCurrencySnapshot(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "USD", snap.BaseCurrency)
	assert.Equal(t, "EUR", snap.TargetCurrency)
	assert.True(t, snap.Rate.Equal(dec("0.92")))
}

func TestCreateProjectRejectsUnknownRevenueModel(t *testing.T) {
	store := newMemStore()
	projects := NewProjectService(store, engine.StandardDefaults())

	_, err := projects.Create(context.Background(), testActor(), ProjectInput{
		Name:         "Bad",
		RevenueModel: model.RevenueModel("retainer"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewVersionClonesTeamFeaturesAndPlan(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)

	ctx := context.Background()
	team := NewTeamService(store)
	_, err := team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "Developer",
		CostRatePerDay: decPtr("400"),
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)

	features := NewFeatureService(store, engine.StandardDefaults())
	_, err = features.Add(ctx, actor, projectID, FeatureInput{Name: "Onboarding", EffortHours: decPtr("80")})
	require.NoError(t, err)

	plans := NewSprintPlanService(store, engine.StandardDefaults())
	seeded, err := plans.Get(ctx, projectID)
	require.NoError(t, err)
	_, err = plans.Put(ctx, actor, projectID, seeded)
	require.NoError(t, err)

	winVersion(t, store, actor, projectID, versionID)

	projects := NewProjectService(store, engine.StandardDefaults())
	clone, err := projects.NewVersion(ctx, actor, projectID)
	require.NoError(t, err)
	assert.Equal(t, 2, clone.VersionNumber)
	assert.Equal(t, model.StatusDraft, clone.Status)
	assert.False(t, clone.IsLocked)

	members, err := store.ListTeamMembers(ctx, clone.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Developer", members[0].Role)

	cloned, err := store.ListFeatures(ctx, clone.ID)
	require.NoError(t, err)
	require.Len(t, cloned, 1)

	rows, err := store.ListSprintPlanRows(ctx, clone.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)

	// The clone is the current version now and accepts edits.
	_, err = team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "QA Engineer",
		CostRatePerDay: decPtr("300"),
		UtilizationPct: dec("50"),
	})
	require.NoError(t, err)
}

func TestSummaryOmitsUndefinedRevenue(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projects := NewProjectService(store, engine.StandardDefaults())

	ctx := context.Background()
	p, err := projects.Create(ctx, actor, ProjectInput{
		Name:         "Unpriced Fixed Bid",
		RevenueModel: model.RevenueModelFixed,
	})
	require.NoError(t, err)

	summary, err := projects.Summary(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.Revenue)
	assert.Nil(t, summary.GrossMargin)
	assert.Equal(t, model.StatusDraft, summary.Status)
}

func TestSummaryComputesMarginAndWarning(t *testing.T) {
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

	features := NewFeatureService(store, engine.StandardDefaults())
	_, err = features.Add(ctx, actor, projectID, FeatureInput{
		Name: "Core build",
		Tasks: []model.FeatureTask{
			{Name: "Build", EffortHours: dec("80"), Role: "Developer"},
		},
	})
	require.NoError(t, err)

	summary, err := NewProjectService(store, engine.StandardDefaults()).Summary(ctx, projectID)
	require.NoError(t, err)
	require.NotNil(t, summary.Revenue)
	assert.True(t, summary.Revenue.Equal(dec("250000")))
	require.NotNil(t, summary.GrossMargin)
	assert.False(t, summary.MarginWarning)
}

func TestSetMilestonesGuardedByLock(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)
	winVersion(t, store, actor, projectID, versionID)

	projects := NewProjectService(store, engine.StandardDefaults())
	err := projects.SetMilestones(context.Background(), actor, projectID, []model.Milestone{
		{Name: "Kickoff", Amount: dec("50000")},
	})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestRefreshCurrencySnapshotIsAudited(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	ctx := context.Background()
	projects := NewProjectService(store, engine.StandardDefaults())
	snap, err := projects.RefreshCurrencySnapshot(ctx, actor, projectID, dec("1.08"))
	require.NoError(t, err)
	require.NotNil(t, snap.ApprovedByUserID)
	assert.Equal(t, actor.UserID, *snap.ApprovedByUserID)

	latest, err := store.LatestCurrencySnapshot(ctx, projectID)
	require.NoError(t, err)
	assert.True(t, latest.Rate.Equal(dec("1.08")))

	trail, err := store.ListAudit(ctx, projectID)
	require.NoError(t, err)
	found := false
	for _, entry := range trail {
		if entry.Action == "refresh_currency_snapshot" {
			found = true
		}
	}
	assert.True(t, found)
}
