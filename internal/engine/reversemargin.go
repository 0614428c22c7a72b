package engine

import "github.com/shopspring/decimal"

type ReverseMarginResult struct {
	TargetMarginPct     decimal.Decimal
	RequiredRevenue     decimal.Decimal
	RequiredBillingRate *decimal.Decimal
}

// RequiredRevenue inverts the margin formula: revenue = cost / (1 − target).
// Targets at or above 100 % divide by zero or flip sign and are rejected.
func (c *Calculator) RequiredRevenue(cost, targetMarginPct decimal.Decimal) (decimal.Decimal, error) {
	if targetMarginPct.IsNegative() || targetMarginPct.GreaterThanOrEqual(hundred) {
		return decimal.Zero, validationErr(CodeTargetMarginInvalid,
			"target_margin_pct must be in [0,100), got %s", targetMarginPct)
	}
	factor := one.Sub(targetMarginPct.Div(hundred))
	return cost.Div(factor), nil
}

// ReverseMargin solves the full reverse problem. The required billing rate is
// revenue per effort hour; without hours the rate is meaningless and omitted.
func (c *Calculator) ReverseMargin(cost, targetMarginPct, totalEffortHours decimal.Decimal) (ReverseMarginResult, error) {
	revenue, err := c.RequiredRevenue(cost, targetMarginPct)
	if err != nil {
		return ReverseMarginResult{}, err
	}
	result := ReverseMarginResult{
		TargetMarginPct: targetMarginPct,
		RequiredRevenue: revenue,
	}
	if totalEffortHours.IsPositive() {
		rate := revenue.Div(totalEffortHours)
		result.RequiredBillingRate = &rate
	}
	return result, nil
}
