package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

// RateBook resolves per-day rates for roles, falling back from the member's
// own rate card to the BU defaults. It is an explicit dependency, never
// ambient state, so every computation is reproducible from its inputs.
type RateBook struct {
	byKey map[string]model.RoleDefaultRate
}

func NewRateBook(defaults []model.RoleDefaultRate) *RateBook {
	byKey := make(map[string]model.RoleDefaultRate, len(defaults))
	for _, r := range defaults {
		key := model.NewRole(r.Role).Key()
		if key == "" {
			continue
		}
		if _, exists := byKey[key]; exists {
			continue
		}
		byKey[key] = r
	}
	return &RateBook{byKey: byKey}
}

func (b *RateBook) Lookup(role model.Role) (model.RoleDefaultRate, bool) {
	if role.IsZero() {
		return model.RoleDefaultRate{}, false
	}
	r, ok := b.byKey[role.Key()]
	return r, ok
}

// CostRatePerDay resolves a member's cost rate: explicit per-day rate first,
// then monthly cost spread over working days, then the BU default. The second
// return is false when no rate source covers the member; an unresolvable rate
// is excluded from totals, never silently zero-priced.
func (b *RateBook) CostRatePerDay(m model.TeamMember) (decimal.Decimal, bool) {
	if m.CostRatePerDay != nil && m.CostRatePerDay.IsPositive() {
		return *m.CostRatePerDay, true
	}
	if m.MonthlyCostRate != nil && m.MonthlyCostRate.IsPositive() && m.WorkingDaysPerMonth > 0 {
		return m.MonthlyCostRate.Div(decimal.NewFromInt(int64(m.WorkingDaysPerMonth))), true
	}
	if r, ok := b.Lookup(model.NewRole(m.Role)); ok {
		return r.CostRatePerDay, true
	}
	return decimal.Zero, false
}

func (b *RateBook) BillingRatePerDay(m model.TeamMember) (decimal.Decimal, bool) {
	if m.BillingRatePerDay != nil && m.BillingRatePerDay.IsPositive() {
		return *m.BillingRatePerDay, true
	}
	if r, ok := b.Lookup(model.NewRole(m.Role)); ok {
		return r.BillingRatePerDay, true
	}
	return decimal.Zero, false
}

// ValidateTeamMember checks the write-time invariants on a member's numbers.
func ValidateTeamMember(m model.TeamMember) error {
	if !m.UtilizationPct.IsPositive() || m.UtilizationPct.GreaterThan(hundred) {
		return validationErr(CodeUtilizationOutOfRange,
			"utilization_pct must be in (0,100], got %s", m.UtilizationPct)
	}
	for name, rate := range map[string]*decimal.Decimal{
		"cost_rate_per_day":    m.CostRatePerDay,
		"billing_rate_per_day": m.BillingRatePerDay,
		"monthly_cost_rate":    m.MonthlyCostRate,
	} {
		if rate != nil && rate.IsNegative() {
			return validationErr(CodeNegativeRate, "%s must not be negative, got %s", name, rate)
		}
	}
	return nil
}

// ContingencyMultiplier returns the seniority-keyed task buffer. Junior
// estimates carry more risk than senior ones, so juniors get the larger
// multiplier.
func (d Defaults) ContingencyMultiplier(role model.Role) decimal.Decimal {
	if role.IsZero() {
		return d.TaskContingencyDefault
	}
	key := role.Key()
	switch {
	case strings.Contains(key, "junior") || strings.Contains(key, "jr "):
		return d.TaskContingencyJunior
	case strings.Contains(key, "senior") || strings.Contains(key, "sr ") || strings.Contains(key, "lead"):
		return d.TaskContingencySenior
	}
	return d.TaskContingencyDefault
}
