package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

const versionColumns = `
	id, project_id, version_number, status, is_locked,
	locked_by_user_id, locked_at, contingency_pct, management_reserve_pct,
	estimation_authority, notes, sprint_duration_weeks,
	working_days_per_month, hours_per_day, created_by_user_id, created_at
`

func (s *Store) InsertVersion(ctx context.Context, v *model.ProjectVersion) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO project_versions (
			id, project_id, version_number, status, is_locked,
			locked_by_user_id, locked_at, contingency_pct, management_reserve_pct,
			estimation_authority, notes, sprint_duration_weeks,
			working_days_per_month, hours_per_day, created_by_user_id, created_at
		) VALUES (?, ?, ?, ?::version_status, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.ProjectID, v.VersionNumber, v.Status, v.IsLocked,
		v.LockedByUserID, v.LockedAt, v.ContingencyPct, v.ManagementReservePct,
		v.EstimationAuthority, v.Notes, v.SprintDurationWeeks,
		v.WorkingDaysPerMonth, v.HoursPerDay, v.CreatedByUserID, v.CreatedAt).Error
}

func (s *Store) currentVersion(ctx context.Context, projectID uuid.UUID, forUpdate bool) (*model.ProjectVersion, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM project_versions
		WHERE project_id = ?
		ORDER BY version_number DESC
		LIMIT 1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var rows []model.ProjectVersion
	if err := s.db.WithContext(ctx).Raw(query, projectID).Scan(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	if len(rows) == 0 {
		return nil, service.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) CurrentVersion(ctx context.Context, projectID uuid.UUID) (*model.ProjectVersion, error) {
	return s.currentVersion(ctx, projectID, false)
}

// CurrentVersionForUpdate locks the current version row for the rest of the
// transaction.
func (s *Store) CurrentVersionForUpdate(ctx context.Context, projectID uuid.UUID) (*model.ProjectVersion, error) {
	return s.currentVersion(ctx, projectID, true)
}

func (s *Store) GetVersion(ctx context.Context, id uuid.UUID) (*model.ProjectVersion, error) {
	var rows []model.ProjectVersion
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+versionColumns+`
		FROM project_versions
		WHERE id = ?
	`, id).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(rows) == 0 {
		return nil, service.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) SaveVersion(ctx context.Context, v *model.ProjectVersion) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE project_versions SET
			status = ?::version_status,
			is_locked = ?,
			locked_by_user_id = ?,
			locked_at = ?,
			contingency_pct = ?,
			management_reserve_pct = ?,
			estimation_authority = ?,
			notes = ?,
			sprint_duration_weeks = ?,
			working_days_per_month = ?,
			hours_per_day = ?
		WHERE id = ?
	`, v.Status, v.IsLocked, v.LockedByUserID, v.LockedAt,
		v.ContingencyPct, v.ManagementReservePct, v.EstimationAuthority,
		v.Notes, v.SprintDurationWeeks, v.WorkingDaysPerMonth, v.HoursPerDay, v.ID)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}
