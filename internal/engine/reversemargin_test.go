package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseMarginRoundTrip(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))
	cost := dec("73450.17")

	for _, target := range []string{"0", "5", "15", "33.33", "50", "80", "99"} {
		targetPct := dec(target)
		required, err := calc.RequiredRevenue(cost, targetPct)
		require.NoError(t, err, "target %s", target)

		// Feeding the required revenue back through the margin formula must
		// reproduce the target within display precision.
		margin, err := calc.GrossMarginPct(required, cost)
		require.NoError(t, err)
		assert.True(t, Round2(margin).Equal(Round2(targetPct)),
			"round-trip for target %s%% gave %s", target, Round2(margin))
	}
}

func TestReverseMarginRejectsInvalidTargets(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))

	for _, target := range []string{"100", "100.01", "250", "-1"} {
		_, err := calc.RequiredRevenue(dec("1000"), dec(target))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "target %s", target)
		assert.Equal(t, CodeTargetMarginInvalid, verr.Code)
	}
}

func TestReverseMarginBillingRate(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))

	result, err := calc.ReverseMargin(dec("80000"), dec("20"), dec("1000"))
	require.NoError(t, err)
	assert.True(t, result.RequiredRevenue.Equal(dec("100000")), "got %s", result.RequiredRevenue)
	require.NotNil(t, result.RequiredBillingRate)
	assert.True(t, result.RequiredBillingRate.Equal(dec("100")))
}

func TestReverseMarginOmitsRateWithoutHours(t *testing.T) {
	calc := New(StandardDefaults(), NewRateBook(nil))

	result, err := calc.ReverseMargin(dec("80000"), dec("20"), dec("0"))
	require.NoError(t, err)
	// A billing rate is meaningless without hours: omitted, not zero.
	assert.Nil(t, result.RequiredBillingRate)
}
