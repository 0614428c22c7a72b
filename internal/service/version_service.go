package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

// VersionService owns the version lifecycle: draft → review → submitted →
// won, automatic locking on won, and the audited unlock escape hatch.
type VersionService struct {
	store Store
}

func NewVersionService(store Store) *VersionService {
	return &VersionService{store: store}
}

func (s *VersionService) Current(ctx context.Context, projectID uuid.UUID) (*model.ProjectVersion, error) {
	return s.store.CurrentVersion(ctx, projectID)
}

type VersionUpdateInput struct {
	ContingencyPct       *decimal.Decimal
	ManagementReservePct *decimal.Decimal
	EstimationAuthority  *string
	Notes                *string
}

func (s *VersionService) Update(
	ctx context.Context,
	actor model.Principal,
	projectID, versionID uuid.UUID,
	input VersionUpdateInput,
) (*model.ProjectVersion, error) {
	for _, pct := range []*decimal.Decimal{input.ContingencyPct, input.ManagementReservePct} {
		if pct != nil && pct.IsNegative() {
			return nil, fmt.Errorf("%w: buffer percentages must not be negative", ErrInvalidInput)
		}
	}

	var updated *model.ProjectVersion
	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		if v.ID != versionID {
			return ErrConcurrentModification
		}
		if input.ContingencyPct != nil {
			v.ContingencyPct = *input.ContingencyPct
		}
		if input.ManagementReservePct != nil {
			v.ManagementReservePct = *input.ManagementReservePct
		}
		if input.EstimationAuthority != nil {
			v.EstimationAuthority = input.EstimationAuthority
		}
		if input.Notes != nil {
			v.Notes = input.Notes
		}
		if err := tx.SaveVersion(ctx, v); err != nil {
			return err
		}
		updated = v
		return audit(ctx, tx, actor, projectID, v.ID, "update_version", "project_version", &v.ID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Transition moves the current version along the state machine. Reaching won
// locks the version in the same transaction as the status write.
func (s *VersionService) Transition(
	ctx context.Context,
	actor model.Principal,
	projectID, versionID uuid.UUID,
	target model.VersionStatus,
) (*model.ProjectVersion, error) {
	var updated *model.ProjectVersion
	err := s.store.Atomically(ctx, func(tx Store) error {
		v, err := tx.CurrentVersionForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if v.ID != versionID {
			return ErrConcurrentModification
		}
		if v.IsLocked {
			return ErrLocked
		}
		from := v.Status
		if !v.Transition(target, actor.UserID, time.Now().UTC()) {
			return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidInput, from, target)
		}
		if err := tx.SaveVersion(ctx, v); err != nil {
			return err
		}
		updated = v
		return tx.AppendAudit(ctx, &model.AuditLog{
			ID:         uuid.New(),
			ProjectID:  &projectID,
			VersionID:  &v.ID,
			UserID:     actor.UserID,
			Action:     "status_transition",
			EntityType: "project_version",
			EntityID:   &v.ID,
			OldValue:   strPtr(string(from)),
			NewValue:   strPtr(string(target)),
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Lock is the submitted → won shortcut used by finance.
func (s *VersionService) Lock(
	ctx context.Context,
	actor model.Principal,
	projectID, versionID uuid.UUID,
) (*model.ProjectVersion, error) {
	current, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if current.Status != model.StatusSubmitted {
		return nil, fmt.Errorf("%w: can only lock a submitted version, status is %s", ErrInvalidInput, current.Status)
	}
	return s.Transition(ctx, actor, projectID, versionID, model.StatusWon)
}

// Unlock reopens a won version. It requires a written reason, keeps the won
// status, and writes an audit entry distinct from a status transition.
func (s *VersionService) Unlock(
	ctx context.Context,
	actor model.Principal,
	projectID, versionID uuid.UUID,
	reason string,
) (*model.ProjectVersion, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: unlock reason is required", ErrInvalidInput)
	}

	var updated *model.ProjectVersion
	err := s.store.Atomically(ctx, func(tx Store) error {
		v, err := tx.CurrentVersionForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if v.ID != versionID {
			return ErrConcurrentModification
		}
		if !v.IsLocked {
			return fmt.Errorf("%w: version is not locked", ErrInvalidInput)
		}
		v.Unlock()
		if err := tx.SaveVersion(ctx, v); err != nil {
			return err
		}
		updated = v
		return tx.AppendAudit(ctx, &model.AuditLog{
			ID:         uuid.New(),
			ProjectID:  &projectID,
			VersionID:  &v.ID,
			UserID:     actor.UserID,
			Action:     "unlock",
			EntityType: "project_version",
			EntityID:   &v.ID,
			Reason:     strPtr(strings.TrimSpace(reason)),
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *VersionService) AuditTrail(ctx context.Context, projectID uuid.UUID) ([]model.AuditLog, error) {
	return s.store.ListAudit(ctx, projectID)
}
