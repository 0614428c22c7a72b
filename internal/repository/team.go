package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

const teamMemberColumns = `
	id, version_id, role, member_name, cost_rate_per_day,
	billing_rate_per_day, monthly_cost_rate, utilization_pct,
	working_days_per_month, hours_per_day
`

func (s *Store) ListTeamMembers(ctx context.Context, versionID uuid.UUID) ([]model.TeamMember, error) {
	var rows []model.TeamMember
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+teamMemberColumns+`
		FROM team_members
		WHERE version_id = ?
		ORDER BY role, id
	`, versionID).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return rows, nil
}

func (s *Store) GetTeamMember(ctx context.Context, id uuid.UUID) (*model.TeamMember, error) {
	var rows []model.TeamMember
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+teamMemberColumns+`
		FROM team_members
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

func (s *Store) InsertTeamMember(ctx context.Context, m *model.TeamMember) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO team_members (
			id, version_id, role, member_name, cost_rate_per_day,
			billing_rate_per_day, monthly_cost_rate, utilization_pct,
			working_days_per_month, hours_per_day
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.VersionID, m.Role, m.MemberName, m.CostRatePerDay,
		m.BillingRatePerDay, m.MonthlyCostRate, m.UtilizationPct,
		m.WorkingDaysPerMonth, m.HoursPerDay).Error
}

func (s *Store) UpdateTeamMember(ctx context.Context, m *model.TeamMember) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE team_members SET
			role = ?,
			member_name = ?,
			cost_rate_per_day = ?,
			billing_rate_per_day = ?,
			monthly_cost_rate = ?,
			utilization_pct = ?,
			working_days_per_month = ?,
			hours_per_day = ?
		WHERE id = ?
	`, m.Role, m.MemberName, m.CostRatePerDay, m.BillingRatePerDay,
		m.MonthlyCostRate, m.UtilizationPct, m.WorkingDaysPerMonth,
		m.HoursPerDay, m.ID)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTeamMember(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Exec(`DELETE FROM team_members WHERE id = ?`, id)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}
