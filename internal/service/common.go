package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/estimation-engine/internal/model"
)

// editableVersion runs fn against the project's current version inside one
// transaction with the version row locked. The lock-state check and the write
// it guards therefore commit atomically: an edit racing a won transition sees
// either the pre-won row (and wins the row lock first) or ErrLocked, never a
// silent write into a locked version.
func editableVersion(
	ctx context.Context,
	store Store,
	projectID uuid.UUID,
	fn func(tx Store, v *model.ProjectVersion) error,
) error {
	return store.Atomically(ctx, func(tx Store) error {
		version, err := tx.CurrentVersionForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if version.IsLocked {
			return ErrLocked
		}
		return fn(tx, version)
	})
}

func audit(
	ctx context.Context,
	store Store,
	actor model.Principal,
	projectID, versionID uuid.UUID,
	action, entityType string,
	entityID *uuid.UUID,
) error {
	return store.AppendAudit(ctx, &model.AuditLog{
		ID:         uuid.New(),
		ProjectID:  &projectID,
		VersionID:  &versionID,
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	})
}

func strPtr(s string) *string {
	return &s
}
