package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

func (s *Store) ListRoleRates(ctx context.Context) ([]model.RoleDefaultRate, error) {
	var rows []model.RoleDefaultRate
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, role, cost_rate_per_day, billing_rate_per_day
		FROM role_default_rates
		ORDER BY role
	`).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return rows, nil
}

// UpsertRoleRate replaces the rate for the role, matching case-insensitively
// via the unique LOWER(role) index. The caller's ID is rewritten to the
// surviving row's id on conflict.
func (s *Store) UpsertRoleRate(ctx context.Context, r *model.RoleDefaultRate) error {
	var rows []model.RoleDefaultRate
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO role_default_rates (id, role, cost_rate_per_day, billing_rate_per_day)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (LOWER(role)) DO UPDATE SET
			role = EXCLUDED.role,
			cost_rate_per_day = EXCLUDED.cost_rate_per_day,
			billing_rate_per_day = EXCLUDED.billing_rate_per_day
		RETURNING id, role, cost_rate_per_day, billing_rate_per_day
	`, r.ID, r.Role, r.CostRatePerDay, r.BillingRatePerDay).Scan(&rows).Error
	if err != nil {
		return wrapErr(err)
	}
	if len(rows) > 0 {
		r.ID = rows[0].ID
	}
	return nil
}

func (s *Store) DeleteRoleRate(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Exec(`DELETE FROM role_default_rates WHERE id = ?`, id)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *Store) AppendAudit(ctx context.Context, entry *model.AuditLog) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO audit_logs (
			id, project_id, version_id, user_id, action, entity_type,
			entity_id, old_value, new_value, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ProjectID, entry.VersionID, entry.UserID,
		entry.Action, entry.EntityType, entry.EntityID,
		entry.OldValue, entry.NewValue, entry.Reason, entry.CreatedAt).Error
}

func (s *Store) ListAudit(ctx context.Context, projectID uuid.UUID) ([]model.AuditLog, error) {
	var rows []model.AuditLog
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, project_id, version_id, user_id, action, entity_type,
			entity_id, old_value, new_value, reason, created_at
		FROM audit_logs
		WHERE project_id = ?
		ORDER BY created_at DESC
	`, projectID).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return rows, nil
}
