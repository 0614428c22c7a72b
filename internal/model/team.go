package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TeamMember is one role slot on a version's team. Rates are per day; nil
// rates fall back to the BU default for the role.
type TeamMember struct {
	ID                uuid.UUID
	VersionID         uuid.UUID
	Role              string
	MemberName        *string
	CostRatePerDay    *decimal.Decimal
	BillingRatePerDay *decimal.Decimal
	MonthlyCostRate   *decimal.Decimal
	UtilizationPct    decimal.Decimal

	WorkingDaysPerMonth int
	HoursPerDay         int
}

// RoleDefaultRate is the BU-wide default (cost, billing) rate per day for a
// role. The role key is unique case-insensitively.
type RoleDefaultRate struct {
	ID                uuid.UUID
	Role              string
	CostRatePerDay    decimal.Decimal
	BillingRatePerDay decimal.Decimal
}
