package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/estimation-engine/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func member(role string, costPerDay, utilization string) model.TeamMember {
	return model.TeamMember{
		Role:                role,
		CostRatePerDay:      decPtr(costPerDay),
		UtilizationPct:      dec(utilization),
		WorkingDaysPerMonth: 20,
		HoursPerDay:         8,
	}
}

func TestRateBookLookupIsCaseInsensitive(t *testing.T) {
	book := NewRateBook([]model.RoleDefaultRate{
		{Role: "Developer", CostRatePerDay: dec("400"), BillingRatePerDay: dec("800")},
	})

	r, ok := book.Lookup(model.NewRole("  developer "))
	require.True(t, ok)
	assert.True(t, r.CostRatePerDay.Equal(dec("400")))

	_, ok = book.Lookup(model.NewRole("Designer"))
	assert.False(t, ok)
}

func TestCostRatePerDayFallbackChain(t *testing.T) {
	book := NewRateBook([]model.RoleDefaultRate{
		{Role: "QA", CostRatePerDay: dec("300"), BillingRatePerDay: dec("500")},
	})

	explicit := member("QA", "350", "100")
	rate, ok := book.CostRatePerDay(explicit)
	require.True(t, ok)
	assert.True(t, rate.Equal(dec("350")))

	monthly := model.TeamMember{
		Role:                "QA",
		MonthlyCostRate:     decPtr("6400"),
		UtilizationPct:      dec("100"),
		WorkingDaysPerMonth: 20,
		HoursPerDay:         8,
	}
	rate, ok = book.CostRatePerDay(monthly)
	require.True(t, ok)
	assert.True(t, rate.Equal(dec("320")))

	buFallback := model.TeamMember{Role: "qa", UtilizationPct: dec("100"), HoursPerDay: 8}
	rate, ok = book.CostRatePerDay(buFallback)
	require.True(t, ok)
	assert.True(t, rate.Equal(dec("300")))

	unknown := model.TeamMember{Role: "Astrologer", UtilizationPct: dec("100"), HoursPerDay: 8}
	_, ok = book.CostRatePerDay(unknown)
	assert.False(t, ok)
}

func TestEffectiveCostPerHourNonIncreasingInUtilization(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))
	previous := decimal.Decimal{}
	for _, utilization := range []string{"10", "25", "50", "75", "80", "99.5", "100"} {
		m := member("Developer", "400", utilization)
		rate, ok := calc.effectiveCostPerHour(model.NewRole("Developer"), []model.TeamMember{m})
		require.True(t, ok, "utilization %s", utilization)
		if !previous.IsZero() {
			assert.True(t, rate.LessThanOrEqual(previous),
				"rate must not increase with utilization: %s at %s%%", rate, utilization)
		}
		previous = rate
	}

	full := member("Developer", "400", "100")
	rate, ok := calc.effectiveCostPerHour(model.NewRole("Developer"), []model.TeamMember{full})
	require.True(t, ok)
	assert.True(t, rate.Equal(dec("50")), "400/day over 8h at 100%% = 50/h, got %s", rate)
}

func TestValidateTeamMember(t *testing.T) {
	tests := []struct {
		name     string
		member   model.TeamMember
		wantCode string
	}{
		{"valid", member("Dev", "100", "80"), ""},
		{"zero utilization", member("Dev", "100", "0"), CodeUtilizationOutOfRange},
		{"negative utilization", member("Dev", "100", "-5"), CodeUtilizationOutOfRange},
		{"over 100", member("Dev", "100", "101"), CodeUtilizationOutOfRange},
		{"boundary 100", member("Dev", "100", "100"), ""},
		{"negative rate", member("Dev", "-1", "80"), CodeNegativeRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTeamMember(tt.member)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantCode, verr.Code)
		})
	}
}

func TestContingencyMultiplierBySeniority(t *testing.T) {
	d := StandardDefaults()
	assert.True(t, d.ContingencyMultiplier(model.NewRole("Junior Developer")).Equal(dec("1.15")))
	assert.True(t, d.ContingencyMultiplier(model.NewRole("Senior QA")).Equal(dec("1.05")))
	assert.True(t, d.ContingencyMultiplier(model.NewRole("Tech Lead")).Equal(dec("1.05")))
	assert.True(t, d.ContingencyMultiplier(model.NewRole("Developer")).Equal(dec("1.10")))
	assert.True(t, d.ContingencyMultiplier(model.Role{}).Equal(dec("1.10")))
}
