package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeatureTask is one line of a feature's task breakdown, stored as JSONB on
// the feature row.
type FeatureTask struct {
	Name        string          `json:"name"`
	EffortHours decimal.Decimal `json:"effort_hours"`
	Role        string          `json:"role"`
}

type Feature struct {
	ID                uuid.UUID
	VersionID         uuid.UUID
	Name              string
	Description       *string
	Priority          int
	EffortHours       decimal.Decimal
	EffortStoryPoints *int
	Tasks             []FeatureTask
}

// EffortAllocation is the derived per-role rollup of a feature's task hours.
// It is recomputed from the task breakdown on every read, never persisted.
type EffortAllocation struct {
	FeatureID     uuid.UUID
	Role          Role
	EffortHours   decimal.Decimal
	AllocationPct decimal.Decimal
	FTE           decimal.Decimal
}

// EstimationHistory tracks every effort change on a feature.
type EstimationHistory struct {
	ID              uuid.UUID
	VersionID       uuid.UUID
	FeatureID       uuid.UUID
	PreviousEffort  decimal.Decimal
	NewEffort       decimal.Decimal
	ChangedByUserID uuid.UUID
	ChangedAt       time.Time
	Authority       string
}

// JustificationLog records the mandatory justification when an effort change
// exceeds the override threshold.
type JustificationLog struct {
	ID              uuid.UUID
	VersionID       uuid.UUID
	FeatureID       uuid.UUID
	PreviousEffort  decimal.Decimal
	NewEffort       decimal.Decimal
	Justification   string
	CreatedByUserID uuid.UUID
	CreatedAt       time.Time
}
