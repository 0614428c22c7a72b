package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only trail entry. Subjects are referenced by id only;
// deleting an entity never deletes its audit history.
type AuditLog struct {
	ID         uuid.UUID
	ProjectID  *uuid.UUID
	VersionID  *uuid.UUID
	UserID     uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	OldValue   *string
	NewValue   *string
	Reason     *string
	CreatedAt  time.Time
}
