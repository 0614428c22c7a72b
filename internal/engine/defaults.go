package engine

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
)

// Defaults are the engine tunables. They come from config; the zero value is
// not usable, construct via StandardDefaults or config.
type Defaults struct {
	HoursPerDay         int
	WorkingDaysPerMonth int
	SprintDurationWeeks int
	UtilizationPct      decimal.Decimal

	TaskContingencyJunior  decimal.Decimal
	TaskContingencySenior  decimal.Decimal
	TaskContingencyDefault decimal.Decimal

	MarginWarningPct  decimal.Decimal
	EffortOverridePct decimal.Decimal
}

func StandardDefaults() Defaults {
	return Defaults{
		HoursPerDay:            8,
		WorkingDaysPerMonth:    20,
		SprintDurationWeeks:    2,
		UtilizationPct:         decimal.NewFromInt(80),
		TaskContingencyJunior:  decimal.RequireFromString("1.15"),
		TaskContingencySenior:  decimal.RequireFromString("1.05"),
		TaskContingencyDefault: decimal.RequireFromString("1.10"),
		MarginWarningPct:       decimal.NewFromInt(15),
		EffortOverridePct:      decimal.NewFromInt(15),
	}
}

// personMonthHours is the fixed task-FTE divisor: working days × hours ×
// default utilization. With standard defaults this is 128.
func (d Defaults) personMonthHours() decimal.Decimal {
	return decimal.NewFromInt(int64(d.WorkingDaysPerMonth * d.HoursPerDay)).
		Mul(d.UtilizationPct.Div(hundred))
}

// Round2 rounds to 2 decimals for display. Internal computation keeps full
// precision; only response assembly rounds.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
