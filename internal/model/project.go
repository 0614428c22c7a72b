package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RevenueModel string

const (
	RevenueModelFixed     RevenueModel = "fixed"
	RevenueModelTM        RevenueModel = "t_m"
	RevenueModelMilestone RevenueModel = "milestone"
)

func (m RevenueModel) Valid() bool {
	switch m {
	case RevenueModelFixed, RevenueModelTM, RevenueModelMilestone:
		return true
	}
	return false
}

type Project struct {
	ID                  uuid.UUID
	Name                string
	ClientName          *string
	RevenueModel        RevenueModel
	Currency            string
	SprintDurationWeeks int
	FixedRevenue        *decimal.Decimal
	CreatedByUserID     uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Milestone is an externally agreed payment amount for milestone-based
// revenue. Amounts are inputs, never derived.
type Milestone struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Name      string
	Amount    decimal.Decimal
	SortOrder int
}

// CurrencySnapshot freezes an FX rate at project creation or on an explicitly
// approved refresh. All currency math after the snapshot uses the frozen rate.
type CurrencySnapshot struct {
	ID               uuid.UUID
	ProjectID        uuid.UUID
	BaseCurrency     string
	TargetCurrency   string
	Rate             decimal.Decimal
	SnapshotAt       time.Time
	ApprovedByUserID *uuid.UUID
}

// Convert applies the frozen rate to a base-currency amount. Display only;
// stored figures stay in the base currency.
func (s CurrencySnapshot) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(s.Rate)
}
