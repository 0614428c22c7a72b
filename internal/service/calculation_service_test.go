package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

func TestCalculationCostAndReverseMargin(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	ctx := context.Background()
	team := NewTeamService(store)
	_, err := team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:              "Developer",
		CostRatePerDay:    decPtr("400"),
		BillingRatePerDay: decPtr("800"),
		UtilizationPct:    dec("100"),
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

	calcs := NewCalculationService(store, engine.StandardDefaults())

	cost, err := calcs.Cost(ctx, projectID)
	require.NoError(t, err)
	assert.True(t, cost.BaseCost.Equal(dec("4400")), "got %s", cost.BaseCost)
	assert.Empty(t, cost.UncoveredRoles)

	reverse, err := calcs.ReverseMargin(ctx, projectID, dec("20"))
	require.NoError(t, err)
	assert.True(t, reverse.RequiredRevenue.Equal(dec("5500")), "got %s", reverse.RequiredRevenue)
	require.NotNil(t, reverse.RequiredBillingRate)
	assert.True(t, engine.Round2(*reverse.RequiredBillingRate).Equal(dec("68.75")))
}

func TestCalculationProfitabilityOmitsUndefinedMargin(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projects := NewProjectService(store, engine.StandardDefaults())

	ctx := context.Background()
	p, err := projects.Create(ctx, actor, ProjectInput{
		Name:         "Unpriced",
		RevenueModel: model.RevenueModelFixed,
	})
	require.NoError(t, err)

	calcs := NewCalculationService(store, engine.StandardDefaults())
	result, err := calcs.Profitability(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, result.Revenue)
	assert.Nil(t, result.GrossMarginPct)
	assert.Nil(t, result.NetMarginPct)
}

func TestCalculationProfitabilityWithBuffers(t *testing.T) {
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
	_, err = features.Add(ctx, actor, projectID, FeatureInput{
		Name: "Core build",
		Tasks: []model.FeatureTask{
			{Name: "Build", EffortHours: dec("80"), Role: "Developer"},
		},
	})
	require.NoError(t, err)

	_, err = NewVersionService(store).Update(ctx, actor, projectID, versionID, VersionUpdateInput{
		ContingencyPct:       decPtr("10"),
		ManagementReservePct: decPtr("5"),
	})
	require.NoError(t, err)

	calcs := NewCalculationService(store, engine.StandardDefaults())
	result, err := calcs.Profitability(ctx, projectID)
	require.NoError(t, err)

	// 4400 × 1.10 × 1.05 = 5082.
	assert.True(t, result.Cost.TotalCost.Equal(dec("5082")), "got %s", result.Cost.TotalCost)
	require.NotNil(t, result.NetMarginPct)
	assert.False(t, result.MarginWarning)
}

func TestCalculationSprintSummary(t *testing.T) {
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
	_, err = features.Add(ctx, actor, projectID, FeatureInput{Name: "Backlog", EffortHours: decPtr("340")})
	require.NoError(t, err)

	calcs := NewCalculationService(store, engine.StandardDefaults())
	summary, err := calcs.SprintSummary(ctx, projectID)
	require.NoError(t, err)

	// Capacity 8 h × 20 d × 100 % = 160 h per two-week sprint; effort
	// 340 × 1.10 = 374 → 3 sprints.
	assert.True(t, summary.SprintCapacityHours.Equal(dec("160")))
	assert.Equal(t, 3, summary.SprintsRequired)
}

func TestCalculationSprintSummaryUndefinedWithoutTeam(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	calcs := NewCalculationService(store, engine.StandardDefaults())
	_, err := calcs.SprintSummary(context.Background(), projectID)
	var undefined *engine.UndefinedResultError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "SPRINT_CAPACITY_UNDEFINED", undefined.Code)
}

func TestCalculationSprintPlanCostUsesGrid(t *testing.T) {
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

	calcs := NewCalculationService(store, engine.StandardDefaults())
	cost, err := calcs.SprintPlanCost(ctx, projectID)
	require.NoError(t, err)

	// 4 rows × 1 FTE × 400/day × 20 days = 32000.
	assert.True(t, cost.BaseCost.Equal(dec("32000")), "got %s", cost.BaseCost)
}

func TestCalculationProfitabilityMarginsAgainstTotalCost(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projects := NewProjectService(store, engine.StandardDefaults())

	ctx := context.Background()
	p, err := projects.Create(ctx, actor, ProjectInput{
		Name:         "Buffered Fixed Bid",
		RevenueModel: model.RevenueModelFixed,
		FixedRevenue: decPtr("10000"),
	})
	require.NoError(t, err)
	version, err := store.CurrentVersion(ctx, p.ID)
	require.NoError(t, err)

	team := NewTeamService(store)
	_, err = team.Add(ctx, actor, p.ID, TeamMemberInput{
		Role:           "Developer",
		CostRatePerDay: decPtr("400"),
		UtilizationPct: dec("100"),
	})
	require.NoError(t, err)

	features := NewFeatureService(store, engine.StandardDefaults())
	_, err = features.Add(ctx, actor, p.ID, FeatureInput{
		Name: "Core build",
		Tasks: []model.FeatureTask{
			{Name: "Build", EffortHours: dec("80"), Role: "Developer"},
		},
	})
	require.NoError(t, err)

	_, err = NewVersionService(store).Update(ctx, actor, p.ID, version.ID, VersionUpdateInput{
		ContingencyPct:       decPtr("10"),
		ManagementReservePct: decPtr("10"),
	})
	require.NoError(t, err)

	calcs := NewCalculationService(store, engine.StandardDefaults())
	result, err := calcs.Profitability(ctx, p.ID)
	require.NoError(t, err)

	// 4400 × 1.10 × 1.10 = 5324; margin = (10000 − 5324) / 10000 = 46.76%.
	assert.True(t, result.Cost.TotalCost.Equal(dec("5324")), "got %s", result.Cost.TotalCost)
	require.NotNil(t, result.GrossMarginPct)
	require.NotNil(t, result.NetMarginPct)
	assert.True(t, result.GrossMarginPct.Equal(dec("46.76")), "got %s", result.GrossMarginPct)
	assert.True(t, result.NetMarginPct.Equal(*result.GrossMarginPct),
		"gross %s net %s", result.GrossMarginPct, result.NetMarginPct)

	// The margin the reverse solver hits must read back unchanged.
	reverse, err := calcs.ReverseMargin(ctx, p.ID, dec("46.76"))
	require.NoError(t, err)
	assert.True(t, reverse.RequiredRevenue.Round(2).Equal(dec("10000")), "got %s", reverse.RequiredRevenue)
}
