package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SprintRowType string

const (
	RowTypeSprint SprintRowType = "sprint"
	RowTypePhase  SprintRowType = "phase"

	// legacy format: one row per week within a sprint
	RowTypeSprintWeek SprintRowType = "sprint-week"
)

type SprintPhase string

const (
	PhasePreUAT SprintPhase = "pre_uat"
	PhaseUAT    SprintPhase = "uat"
	PhaseGoLive SprintPhase = "go_live"
)

// PhaseOrder fixes the trailing phase sequence regardless of insertion order.
var PhaseOrder = []SprintPhase{PhasePreUAT, PhaseUAT, PhaseGoLive}

func ParseSprintPhase(raw string) (SprintPhase, bool) {
	switch SprintPhase(raw) {
	case PhasePreUAT, PhaseUAT, PhaseGoLive:
		return SprintPhase(raw), true
	}
	return "", false
}

// SprintPlanRow is one row of the role-by-sprint allocation grid. Allocations
// map role display name to FTE for that period (1.0 = full capacity).
type SprintPlanRow struct {
	ID          uuid.UUID
	VersionID   uuid.UUID
	RowType     SprintRowType
	SprintNum   *int
	WeekNum     *int
	Phase       *SprintPhase
	Allocations map[string]decimal.Decimal
	SortOrder   int
}

func (r SprintPlanRow) IsPhase() bool {
	return r.RowType == RowTypePhase && r.Phase != nil
}
