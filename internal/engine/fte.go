package engine

import (
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

// ProjectRoleFTE sums utilization over the members sharing a role. It is a
// sum, not an average: two half-time developers are one FTE. Keys are role
// display names as first seen.
func ProjectRoleFTE(members []model.TeamMember) map[string]decimal.Decimal {
	fte := make(map[string]decimal.Decimal)
	display := make(map[string]string)
	for _, m := range members {
		role := model.NewRole(m.Role)
		if role.IsZero() {
			continue
		}
		name, ok := display[role.Key()]
		if !ok {
			name = role.Display()
			display[role.Key()] = name
		}
		fte[name] = fte[name].Add(m.UtilizationPct.Div(hundred))
	}
	return fte
}

// TaskFTE converts effort hours into a planning FTE using the fixed
// person-month divisor (working days × hours × default utilization). It is
// deliberately independent of the assigned member's rate card.
func (d Defaults) TaskFTE(effortHours decimal.Decimal) decimal.Decimal {
	divisor := d.personMonthHours()
	if !divisor.IsPositive() {
		return decimal.Zero
	}
	return effortHours.Div(divisor)
}

// RollupAllocations derives the per-role effort rollup from a feature's task
// breakdown. Features without tasks yield no allocations; their total effort
// is handled by the fallback path in the cost and revenue computations.
func (d Defaults) RollupAllocations(f model.Feature) []model.EffortAllocation {
	if len(f.Tasks) == 0 {
		return nil
	}
	total := decimal.Zero
	order := make([]model.Role, 0, len(f.Tasks))
	hours := make(map[string]decimal.Decimal)
	for _, t := range f.Tasks {
		role := model.NewRole(t.Role)
		if _, seen := hours[role.Key()]; !seen {
			order = append(order, role)
		}
		hours[role.Key()] = hours[role.Key()].Add(t.EffortHours)
		total = total.Add(t.EffortHours)
	}

	allocations := make([]model.EffortAllocation, 0, len(order))
	for _, role := range order {
		h := hours[role.Key()]
		pct := decimal.Zero
		if total.IsPositive() {
			pct = h.Div(total).Mul(hundred)
		}
		allocations = append(allocations, model.EffortAllocation{
			FeatureID:     f.ID,
			Role:          role,
			EffortHours:   h,
			AllocationPct: pct,
			FTE:           d.TaskFTE(h),
		})
	}
	return allocations
}
