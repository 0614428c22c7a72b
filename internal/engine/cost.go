package engine

import (
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

// Calculator is the deterministic calculation core. It is pure: same inputs,
// same outputs, no I/O and no shared state.
type Calculator struct {
	cfg   Defaults
	rates *RateBook
}

func New(cfg Defaults, rates *RateBook) *Calculator {
	return &Calculator{cfg: cfg, rates: rates}
}

func (c *Calculator) Config() Defaults {
	return c.cfg
}

// CostBreakdown is a pure function output, recomputed from current state on
// every request. UncoveredRoles is the PARTIAL_RATE_COVERAGE condition: effort
// whose role resolved to no rate, excluded from totals rather than priced at
// zero.
type CostBreakdown struct {
	BaseCost             decimal.Decimal
	RiskBuffer           decimal.Decimal
	TotalCost            decimal.Decimal
	ContingencyPct       decimal.Decimal
	ManagementReservePct decimal.Decimal
	UncoveredRoles       []string
}

func (b CostBreakdown) PartialRateCoverage() bool {
	return len(b.UncoveredRoles) > 0
}

// effectiveCostPerHour resolves the cost of one effort hour for a role:
// the first team member carrying the role, else the BU default with standard
// working assumptions. cost/hour = rate_per_day / hours_per_day / utilization.
func (c *Calculator) effectiveCostPerHour(role model.Role, members []model.TeamMember) (decimal.Decimal, bool) {
	if m, ok := memberForRole(role, members); ok {
		rate, resolved := c.rates.CostRatePerDay(m)
		if !resolved {
			return decimal.Zero, false
		}
		hoursPerDay := m.HoursPerDay
		if hoursPerDay <= 0 {
			hoursPerDay = c.cfg.HoursPerDay
		}
		util := m.UtilizationPct.Div(hundred)
		if hoursPerDay <= 0 || !util.IsPositive() {
			return decimal.Zero, false
		}
		return rate.Div(decimal.NewFromInt(int64(hoursPerDay))).Div(util), true
	}

	r, ok := c.rates.Lookup(role)
	if !ok {
		return decimal.Zero, false
	}
	util := c.cfg.UtilizationPct.Div(hundred)
	if c.cfg.HoursPerDay <= 0 || !util.IsPositive() {
		return decimal.Zero, false
	}
	return r.CostRatePerDay.Div(decimal.NewFromInt(int64(c.cfg.HoursPerDay))).Div(util), true
}

func memberForRole(role model.Role, members []model.TeamMember) (model.TeamMember, bool) {
	for _, m := range members {
		if model.NewRole(m.Role).Equal(role) {
			return m, true
		}
	}
	return model.TeamMember{}, false
}

// BaseCost is the bottom-up task estimate: Σ task hours × seniority
// contingency × effective cost/hour. Features without a task breakdown are
// attributed to the first team member's role.
func (c *Calculator) BaseCost(members []model.TeamMember, features []model.Feature) (decimal.Decimal, []string) {
	total := decimal.Zero
	uncovered := newCoverage()

	for _, f := range features {
		allocations := c.cfg.RollupAllocations(f)
		if len(allocations) == 0 {
			role := model.Role{}
			if len(members) > 0 {
				role = model.NewRole(members[0].Role)
			}
			hours := f.EffortHours.Mul(c.cfg.ContingencyMultiplier(role))
			rate, ok := c.effectiveCostPerHour(role, members)
			if !ok {
				uncovered.miss(role)
				continue
			}
			total = total.Add(hours.Mul(rate))
			continue
		}
		for _, alloc := range allocations {
			hours := alloc.EffortHours.Mul(c.cfg.ContingencyMultiplier(alloc.Role))
			rate, ok := c.effectiveCostPerHour(alloc.Role, members)
			if !ok {
				uncovered.miss(alloc.Role)
				continue
			}
			total = total.Add(hours.Mul(rate))
		}
	}
	return total, uncovered.roles()
}

// CostWithBuffers layers the version buffers on base cost. The reserve
// multiplies the contingency-adjusted cost, and the displayed risk buffer is
// always total − base, so the two stay exactly consistent.
func (c *Calculator) CostWithBuffers(base, contingencyPct, reservePct decimal.Decimal) (riskBuffer, total decimal.Decimal) {
	total = base.
		Mul(one.Add(contingencyPct.Div(hundred))).
		Mul(one.Add(reservePct.Div(hundred)))
	return total.Sub(base), total
}

// Cost runs the full task-effort cost path.
func (c *Calculator) Cost(
	members []model.TeamMember,
	features []model.Feature,
	contingencyPct, reservePct decimal.Decimal,
) CostBreakdown {
	base, uncovered := c.BaseCost(members, features)
	buffer, total := c.CostWithBuffers(base, contingencyPct, reservePct)
	return CostBreakdown{
		BaseCost:             base,
		RiskBuffer:           buffer,
		TotalCost:            total,
		ContingencyPct:       contingencyPct,
		ManagementReservePct: reservePct,
		UncoveredRoles:       uncovered,
	}
}

// SprintPlanCost is the capacity-commitment cost path: allocation grid FTE ×
// cost rate/day × days per row period. It deliberately diverges from the
// task-effort path and is never reconciled with it.
func (c *Calculator) SprintPlanCost(
	rows []model.SprintPlanRow,
	members []model.TeamMember,
	sprintWeeks, workingDaysPerMonth int,
	contingencyPct, reservePct decimal.Decimal,
) CostBreakdown {
	days := c.daysPerSprint(sprintWeeks, workingDaysPerMonth)
	uncovered := newCoverage()

	total := decimal.Zero
	for _, row := range rows {
		for name, fte := range row.Allocations {
			role := model.NewRole(name)
			rate, ok := c.costRatePerDayForRole(role, members)
			if !ok {
				if fte.IsPositive() {
					uncovered.miss(role)
				}
				continue
			}
			total = total.Add(fte.Mul(rate).Mul(days))
		}
	}
	buffer, withBuffers := c.CostWithBuffers(total, contingencyPct, reservePct)
	return CostBreakdown{
		BaseCost:             total,
		RiskBuffer:           buffer,
		TotalCost:            withBuffers,
		ContingencyPct:       contingencyPct,
		ManagementReservePct: reservePct,
		UncoveredRoles:       uncovered.roles(),
	}
}

func (c *Calculator) costRatePerDayForRole(role model.Role, members []model.TeamMember) (decimal.Decimal, bool) {
	if m, ok := memberForRole(role, members); ok {
		if rate, resolved := c.rates.CostRatePerDay(m); resolved {
			return rate, true
		}
	}
	if r, ok := c.rates.Lookup(role); ok {
		return r.CostRatePerDay, true
	}
	return decimal.Zero, false
}

// daysPerSprint scales monthly working days by sprint length against the
// 2-week baseline: a 1-week sprint gets half the monthly days, 4 weeks double.
func (c *Calculator) daysPerSprint(sprintWeeks, workingDaysPerMonth int) decimal.Decimal {
	if sprintWeeks <= 0 {
		sprintWeeks = c.cfg.SprintDurationWeeks
	}
	if workingDaysPerMonth <= 0 {
		workingDaysPerMonth = c.cfg.WorkingDaysPerMonth
	}
	return decimal.NewFromInt(int64(workingDaysPerMonth)).
		Mul(decimal.NewFromInt(int64(sprintWeeks))).
		Div(two)
}

// coverage collects distinct unresolvable roles in first-miss order.
type coverage struct {
	seen  map[string]struct{}
	names []string
}

func newCoverage() *coverage {
	return &coverage{seen: make(map[string]struct{})}
}

func (c *coverage) miss(role model.Role) {
	name := role.Display()
	if role.IsZero() {
		name = "unassigned"
	}
	key := role.Key()
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.names = append(c.names, name)
}

func (c *coverage) roles() []string {
	return c.names
}
