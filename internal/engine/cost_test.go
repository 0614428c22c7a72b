package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/estimation-engine/internal/model"
)

func featureWithTasks(name string, tasks ...model.FeatureTask) model.Feature {
	total := decimal.Zero
	for _, t := range tasks {
		total = total.Add(t.EffortHours)
	}
	return model.Feature{Name: name, EffortHours: total, Tasks: tasks}
}

func TestBaseCostFromTaskBreakdown(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))
	team := []model.TeamMember{member("Developer", "400", "100")}
	features := []model.Feature{
		featureWithTasks("Checkout",
			model.FeatureTask{Name: "API", EffortHours: dec("80"), Role: "Developer"},
		),
	}

	base, uncovered := calc.BaseCost(team, features)
	require.Empty(t, uncovered)
	// 80h × 1.10 default contingency × 50/h
	assert.True(t, base.Equal(dec("4400")), "got %s", base)
}

func TestBaseCostExcludesUnresolvableRoles(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))
	team := []model.TeamMember{member("Developer", "400", "100")}
	features := []model.Feature{
		featureWithTasks("Checkout",
			model.FeatureTask{Name: "API", EffortHours: dec("80"), Role: "Developer"},
			model.FeatureTask{Name: "Design", EffortHours: dec("40"), Role: "Designer"},
		),
	}

	base, uncovered := calc.BaseCost(team, features)
	assert.True(t, base.Equal(dec("4400")), "uncovered effort must not be zero-priced into the total, got %s", base)
	assert.Equal(t, []string{"Designer"}, uncovered)
}

func TestBaseCostNoTeamNoRates(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))
	features := []model.Feature{{Name: "X", EffortHours: dec("100")}}

	base, uncovered := calc.BaseCost(nil, features)
	assert.True(t, base.IsZero())
	assert.Equal(t, []string{"unassigned"}, uncovered)
}

func TestCostWithBuffersExactness(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))
	cases := []struct{ base, contingency, reserve string }{
		{"1000", "0", "0"},
		{"1000", "10", "5"},
		{"4400", "12.5", "7.25"},
		{"0.01", "99", "99"},
	}
	for _, tt := range cases {
		base := dec(tt.base)
		buffer, total := calc.CostWithBuffers(base, dec(tt.contingency), dec(tt.reserve))
		assert.True(t, total.Sub(base).Equal(buffer),
			"total-base must equal risk buffer exactly for c=%s mr=%s", tt.contingency, tt.reserve)
	}

	// Reserve compounds on the contingency-adjusted base, not additively.
	_, total := calc.CostWithBuffers(dec("1000"), dec("10"), dec("10"))
	assert.True(t, total.Equal(dec("1210")), "got %s", total)
}

func TestSprintPlanCostDivergesFromTaskCost(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))
	team := []model.TeamMember{member("Developer", "400", "100")}
	features := []model.Feature{
		featureWithTasks("Checkout",
			model.FeatureTask{Name: "API", EffortHours: dec("80"), Role: "Developer"},
		),
	}
	one := 1
	two := 2
	rows := []model.SprintPlanRow{
		{RowType: model.RowTypeSprint, SprintNum: &one, Allocations: map[string]decimal.Decimal{"Developer": dec("1")}},
		{RowType: model.RowTypeSprint, SprintNum: &two, Allocations: map[string]decimal.Decimal{"Developer": dec("0.5")}},
	}

	taskCost := calc.Cost(team, features, decimal.Zero, decimal.Zero)
	planCost := calc.SprintPlanCost(rows, team, 2, 20, decimal.Zero, decimal.Zero)

	// 1.0×400×20 + 0.5×400×20 = 12000 vs the bottom-up 4400. Both paths are
	// exposed; the engine never reconciles them.
	assert.True(t, planCost.BaseCost.Equal(dec("12000")), "got %s", planCost.BaseCost)
	assert.False(t, planCost.BaseCost.Equal(taskCost.BaseCost))
	assert.Empty(t, planCost.UncoveredRoles)
}

func TestSprintPlanCostFlagsUnknownRoles(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))
	one := 1
	rows := []model.SprintPlanRow{
		{RowType: model.RowTypeSprint, SprintNum: &one, Allocations: map[string]decimal.Decimal{"Mystic": dec("1")}},
	}

	breakdown := calc.SprintPlanCost(rows, nil, 2, 20, decimal.Zero, decimal.Zero)
	assert.True(t, breakdown.BaseCost.IsZero())
	assert.Equal(t, []string{"Mystic"}, breakdown.UncoveredRoles)
	assert.True(t, breakdown.PartialRateCoverage())
}
