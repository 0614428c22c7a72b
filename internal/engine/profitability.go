package engine

import "github.com/shopspring/decimal"

// GrossMarginPct = (revenue − cost) / revenue × 100. Undefined, not zero,
// when revenue is not positive.
func (c *Calculator) GrossMarginPct(revenue, cost decimal.Decimal) (decimal.Decimal, error) {
	if !revenue.IsPositive() {
		return decimal.Zero, undefinedErr(CodeMarginUndefined)
	}
	return revenue.Sub(cost).Div(revenue).Mul(hundred), nil
}

// NetMarginPct is the margin against reserve-inflated total cost. Management
// reserve is modeled as cost inflation, never as a revenue deduction, so net
// margin is the gross formula applied to total cost.
func (c *Calculator) NetMarginPct(revenue, totalCost decimal.Decimal) (decimal.Decimal, error) {
	return c.GrossMarginPct(revenue, totalCost)
}

// MarginBelowThreshold flags margins under the warning threshold. The flag is
// informational only and never blocks a save or a transition.
func (c *Calculator) MarginBelowThreshold(marginPct decimal.Decimal) bool {
	return marginPct.LessThan(c.cfg.MarginWarningPct)
}

// EffortOverrideExceedsThreshold reports whether an effort change is large
// enough to demand a written justification.
func (c *Calculator) EffortOverrideExceedsThreshold(previous, next decimal.Decimal) bool {
	if previous.IsZero() {
		return !next.IsZero()
	}
	change := next.Sub(previous).Div(previous).Mul(hundred).Abs()
	return change.GreaterThan(c.cfg.EffortOverridePct)
}
