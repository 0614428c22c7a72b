package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/estimation-engine/internal/model"
)

func TestProjectRoleFTESumsUtilization(t *testing.T) {
	team := []model.TeamMember{
		member("Developer", "400", "100"),
		member("Developer", "400", "50"),
		member("developer", "400", "25"),
		member("QA", "300", "80"),
	}

	fte := ProjectRoleFTE(team)
	require.Contains(t, fte, "Developer")
	// Sum, not average: 1.00 + 0.50 + 0.25.
	assert.Equal(t, "1.75", Round2(fte["Developer"]).StringFixed(2))
	assert.Equal(t, "0.80", Round2(fte["QA"]).StringFixed(2))
}

func TestTaskFTEUsesFixedPersonMonthDivisor(t *testing.T) {
	d := StandardDefaults()
	// 20 days × 8 h × 80 % = 128 h per person-month.
	assert.True(t, d.TaskFTE(dec("128")).Equal(dec("1")))
	assert.Equal(t, "0.50", Round2(d.TaskFTE(dec("64"))).StringFixed(2))
}

func TestRollupAllocations(t *testing.T) {
	d := StandardDefaults()
	f := featureWithTasks("Checkout",
		model.FeatureTask{Name: "API", EffortHours: dec("60"), Role: "Developer"},
		model.FeatureTask{Name: "UI", EffortHours: dec("20"), Role: "Developer"},
		model.FeatureTask{Name: "Test", EffortHours: dec("20"), Role: "QA"},
	)

	allocations := d.RollupAllocations(f)
	require.Len(t, allocations, 2)

	assert.Equal(t, "Developer", allocations[0].Role.Display())
	assert.True(t, allocations[0].EffortHours.Equal(dec("80")))
	assert.True(t, allocations[0].AllocationPct.Equal(dec("80")))

	assert.Equal(t, "QA", allocations[1].Role.Display())
	assert.True(t, allocations[1].AllocationPct.Equal(dec("20")))
}

func TestRollupAllocationsEmptyWithoutTasks(t *testing.T) {
	d := StandardDefaults()
	assert.Nil(t, d.RollupAllocations(model.Feature{EffortHours: dec("40")}))
}
