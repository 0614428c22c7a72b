package engine

import (
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

type SprintAllocation struct {
	SprintCapacityHours decimal.Decimal
	TotalEffortHours    decimal.Decimal
	SprintsRequired     int
	EffortPerSprint     decimal.Decimal
}

// TotalEffortHours is the raw feature effort sum, no buffers.
func (c *Calculator) TotalEffortHours(features []model.Feature) decimal.Decimal {
	total := decimal.Zero
	for _, f := range features {
		total = total.Add(f.EffortHours)
	}
	return total
}

// EffortWithTaskContingency applies the seniority multipliers at the task
// level. Features without a breakdown get the default multiplier.
func (c *Calculator) EffortWithTaskContingency(features []model.Feature) decimal.Decimal {
	total := decimal.Zero
	for _, f := range features {
		allocations := c.cfg.RollupAllocations(f)
		if len(allocations) == 0 {
			total = total.Add(f.EffortHours.Mul(c.cfg.TaskContingencyDefault))
			continue
		}
		for _, alloc := range allocations {
			total = total.Add(alloc.EffortHours.Mul(c.cfg.ContingencyMultiplier(alloc.Role)))
		}
	}
	return total
}

// PlannedEffortHours is the two-layer buffer: task contingency, then the
// version contingency applied once more over the aggregate. The compounding
// is intentional.
func (c *Calculator) PlannedEffortHours(features []model.Feature, contingencyPct decimal.Decimal) decimal.Decimal {
	return c.EffortWithTaskContingency(features).
		Mul(one.Add(contingencyPct.Div(hundred)))
}

// SprintCapacity is the team's person-hours per sprint. Monthly working days
// are scaled by sprint length against the 2-week baseline.
func (c *Calculator) SprintCapacity(members []model.TeamMember, sprintWeeks, workingDaysPerMonth int) decimal.Decimal {
	days := c.daysPerSprint(sprintWeeks, workingDaysPerMonth)
	total := decimal.Zero
	for _, m := range members {
		hoursPerDay := m.HoursPerDay
		if hoursPerDay <= 0 {
			hoursPerDay = c.cfg.HoursPerDay
		}
		total = total.Add(
			decimal.NewFromInt(int64(hoursPerDay)).
				Mul(days).
				Mul(m.UtilizationPct.Div(hundred)),
		)
	}
	return total
}

// SprintsRequired = ceil(effort / capacity), minimum one sprint. With no
// capacity the count is undefined, not zero or infinity.
func (c *Calculator) SprintsRequired(totalEffortHours, sprintCapacity decimal.Decimal) (int, error) {
	if !sprintCapacity.IsPositive() {
		return 0, undefinedErr(CodeSprintCapacityUndefined)
	}
	sprints := int(totalEffortHours.Div(sprintCapacity).Ceil().IntPart())
	if sprints < 1 {
		sprints = 1
	}
	return sprints, nil
}

// SprintAllocationSummary computes the headline sprint numbers for a version.
func (c *Calculator) SprintAllocationSummary(
	members []model.TeamMember,
	features []model.Feature,
	contingencyPct decimal.Decimal,
	sprintWeeks, workingDaysPerMonth int,
) (SprintAllocation, error) {
	effort := c.PlannedEffortHours(features, contingencyPct)
	capacity := c.SprintCapacity(members, sprintWeeks, workingDaysPerMonth)
	sprints, err := c.SprintsRequired(effort, capacity)
	if err != nil {
		return SprintAllocation{}, err
	}
	return SprintAllocation{
		SprintCapacityHours: capacity,
		TotalEffortHours:    effort,
		SprintsRequired:     sprints,
		EffortPerSprint:     effort.Div(decimal.NewFromInt(int64(sprints))),
	}, nil
}
