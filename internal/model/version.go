package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VersionStatus string

const (
	StatusDraft     VersionStatus = "draft"
	StatusReview    VersionStatus = "review"
	StatusSubmitted VersionStatus = "submitted"
	StatusWon       VersionStatus = "won"
)

func ParseVersionStatus(raw string) (VersionStatus, bool) {
	switch VersionStatus(raw) {
	case StatusDraft, StatusReview, StatusSubmitted, StatusWon:
		return VersionStatus(raw), true
	}
	return "", false
}

// statusTransitions lists the allowed targets per current status. Won is
// terminal through the normal path; only unlock reopens a won version.
var statusTransitions = map[VersionStatus][]VersionStatus{
	StatusDraft:     {StatusReview},
	StatusReview:    {StatusDraft, StatusSubmitted},
	StatusSubmitted: {StatusReview, StatusWon},
	StatusWon:       {},
}

func CanTransition(from, to VersionStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ProjectVersion is one snapshot of a project plan. The highest version number
// per project is the current one; past versions are history and never mutate.
type ProjectVersion struct {
	ID                   uuid.UUID
	ProjectID            uuid.UUID
	VersionNumber        int
	Status               VersionStatus
	IsLocked             bool
	LockedByUserID       *uuid.UUID
	LockedAt             *time.Time
	ContingencyPct       decimal.Decimal
	ManagementReservePct decimal.Decimal
	EstimationAuthority  *string
	Notes                *string

	SprintDurationWeeks int
	WorkingDaysPerMonth int
	HoursPerDay         int

	CreatedByUserID uuid.UUID
	CreatedAt       time.Time
}

// Transition applies a status change, locking the version when it reaches won.
func (v *ProjectVersion) Transition(to VersionStatus, actor uuid.UUID, at time.Time) bool {
	if v.IsLocked || !CanTransition(v.Status, to) {
		return false
	}
	v.Status = to
	if to == StatusWon {
		v.IsLocked = true
		v.LockedByUserID = &actor
		v.LockedAt = &at
	}
	return true
}

// Unlock reopens a won version for editing. Status stays won; only the lock
// flag is cleared, so the deal outcome remains visible in history.
func (v *ProjectVersion) Unlock() {
	v.IsLocked = false
	v.LockedByUserID = nil
	v.LockedAt = nil
}
