package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Drafts are untrusted suggestions produced by the external extraction
// service. They live outside the live plan until a human promotes them.

type FeatureDraft struct {
	ID          uuid.UUID
	VersionID   uuid.UUID
	Name        string
	Description *string
	Priority    int
	EffortHours decimal.Decimal
	Tasks       []FeatureTask
	RawSource   *string
	Promoted    bool
	CreatedAt   time.Time
}

type TeamMemberDraft struct {
	ID                uuid.UUID
	VersionID         uuid.UUID
	Role              string
	UtilizationPct    decimal.Decimal
	CostRatePerDay    *decimal.Decimal
	BillingRatePerDay *decimal.Decimal
	RawSource         *string
	Promoted          bool
	CreatedAt         time.Time
}
