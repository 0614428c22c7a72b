package engine

import (
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

type RevenueBreakdown struct {
	Revenue        decimal.Decimal
	RevenueModel   model.RevenueModel
	UncoveredRoles []string
}

// Revenue dispatches on the project's revenue model. A fixed-price project
// without an agreed figure yields REVENUE_UNDEFINED rather than zero.
func (c *Calculator) Revenue(
	project model.Project,
	members []model.TeamMember,
	features []model.Feature,
	milestones []model.Milestone,
) (RevenueBreakdown, error) {
	switch project.RevenueModel {
	case model.RevenueModelFixed:
		if project.FixedRevenue == nil {
			return RevenueBreakdown{}, undefinedErr(CodeRevenueUndefined)
		}
		return RevenueBreakdown{Revenue: *project.FixedRevenue, RevenueModel: project.RevenueModel}, nil

	case model.RevenueModelMilestone:
		total := decimal.Zero
		for _, m := range milestones {
			total = total.Add(m.Amount)
		}
		return RevenueBreakdown{Revenue: total, RevenueModel: project.RevenueModel}, nil

	case model.RevenueModelTM:
		total, uncovered := c.timeAndMaterialsRevenue(members, features)
		return RevenueBreakdown{
			Revenue:        total,
			RevenueModel:   project.RevenueModel,
			UncoveredRoles: uncovered,
		}, nil
	}
	return RevenueBreakdown{}, undefinedErr(CodeRevenueUndefined)
}

// timeAndMaterialsRevenue prices every effort hour at the role's billing rate.
// Resolution follows the same rules as cost, with billing instead of cost
// rates; uncovered roles are excluded and flagged.
func (c *Calculator) timeAndMaterialsRevenue(
	members []model.TeamMember,
	features []model.Feature,
) (decimal.Decimal, []string) {
	total := decimal.Zero
	uncovered := newCoverage()

	for _, f := range features {
		allocations := c.cfg.RollupAllocations(f)
		if len(allocations) == 0 {
			role := model.Role{}
			if len(members) > 0 {
				role = model.NewRole(members[0].Role)
			}
			rate, ok := c.billingRatePerHour(role, members)
			if !ok {
				uncovered.miss(role)
				continue
			}
			total = total.Add(f.EffortHours.Mul(rate))
			continue
		}
		for _, alloc := range allocations {
			rate, ok := c.billingRatePerHour(alloc.Role, members)
			if !ok {
				uncovered.miss(alloc.Role)
				continue
			}
			total = total.Add(alloc.EffortHours.Mul(rate))
		}
	}
	return total, uncovered.roles()
}

func (c *Calculator) billingRatePerHour(role model.Role, members []model.TeamMember) (decimal.Decimal, bool) {
	if m, ok := memberForRole(role, members); ok {
		rate, resolved := c.rates.BillingRatePerDay(m)
		if !resolved {
			return decimal.Zero, false
		}
		hoursPerDay := m.HoursPerDay
		if hoursPerDay <= 0 {
			hoursPerDay = c.cfg.HoursPerDay
		}
		if hoursPerDay <= 0 {
			return decimal.Zero, false
		}
		return rate.Div(decimal.NewFromInt(int64(hoursPerDay))), true
	}

	r, ok := c.rates.Lookup(role)
	if !ok || c.cfg.HoursPerDay <= 0 {
		return decimal.Zero, false
	}
	return r.BillingRatePerDay.Div(decimal.NewFromInt(int64(c.cfg.HoursPerDay))), true
}
